package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piscinadeentropia/mrquizzer/internal/library"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

const testQuiz = `{
  "metadata": {"language": "en", "difficulty": "easy", "number_of_questions": 2},
  "questions": [
    {"id": 1, "type": "mcq", "question": "2 + 2?", "options": ["3", "4"], "correct_answers": [1], "explanation": "Sum."},
    {"id": 2, "type": "short_answer", "question": "Capital of Spain?", "correct_answers": ["Madrid"]}
  ]
}`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	srv   *Server
	http  *httptest.Server
	store *store.Store
	clock *fakeClock
}

func newTestEnv(t *testing.T, preload bool) *testEnv {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	lib := library.New(st.QuizRepo(), st.ProgressRepo())
	if preload {
		_, err := lib.Import(context.Background(), testQuiz)
		require.NoError(t, err)
	}

	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	srv, err := New(context.Background(), Deps{
		Library:  lib,
		Progress: st.ProgressRepo(),
		Events:   st.EventRepo(),
	}, Options{
		CORSOrigins: []string{"*"},
		Now:         clock.Now,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, http: ts, store: st, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (e *testEnv) state(t *testing.T) StateView {
	t.Helper()
	code, body := e.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, code)
	var v StateView
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)
	code, body := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestNoQuizLoaded(t *testing.T) {
	env := newTestEnv(t, false)

	v := env.state(t)
	assert.False(t, v.Loaded)
	assert.Equal(t, "00:00", v.Elapsed)

	for _, path := range []string{"/api/skip", "/api/next", "/api/reset"} {
		code, _ := env.do(t, http.MethodPost, path, "")
		assert.Equal(t, http.StatusNotFound, code, path)
	}
	code, _ := env.do(t, http.MethodGet, "/api/results", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = env.do(t, http.MethodGet, "/api/quiz", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStateHidesAnswerUntilAnswered(t *testing.T) {
	env := newTestEnv(t, true)

	v := env.state(t)
	require.True(t, v.Loaded)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, "question", v.Phase)
	require.NotNil(t, v.Question)
	assert.Equal(t, 1, v.Question.Number)
	assert.Equal(t, []string{"3", "4"}, v.Question.Options)
	assert.True(t, v.Question.Choice)
	assert.Nil(t, v.Feedback)

	code, body := env.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(body), "correct_answer")
}

func TestPlayThrough(t *testing.T) {
	env := newTestEnv(t, true)

	code, body := env.do(t, http.MethodPost, "/api/answer", `{"choice": 1}`)
	require.Equal(t, http.StatusOK, code, string(body))
	var v StateView
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "feedback", v.Phase)
	assert.Equal(t, 1, v.Score)
	require.NotNil(t, v.Feedback)
	assert.True(t, v.Feedback.Correct)
	assert.Equal(t, "4", v.Feedback.CorrectAnswer)
	assert.Equal(t, "Sum.", v.Feedback.Explanation)

	code, _ = env.do(t, http.MethodPost, "/api/answer", `{"choice": 0}`)
	assert.Equal(t, http.StatusConflict, code, "second answer to the same question")

	code, _ = env.do(t, http.MethodPost, "/api/next", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodPost, "/api/next", "")
	assert.Equal(t, http.StatusConflict, code, "advancing before answering")

	code, _ = env.do(t, http.MethodPost, "/api/answer", `{"choice": 0}`)
	assert.Equal(t, http.StatusBadRequest, code, "choice on a text question")

	code, _ = env.do(t, http.MethodPost, "/api/answer", `{"text": "  madrid "}`)
	require.Equal(t, http.StatusOK, code)
	code, body = env.do(t, http.MethodPost, "/api/next", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "finished", v.Phase)
	assert.Nil(t, v.Question)

	code, body = env.do(t, http.MethodGet, "/api/results", "")
	require.Equal(t, http.StatusOK, code)
	var res resultsResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Finished)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 100, res.Percent)
	assert.True(t, res.Perfect)
	require.Len(t, res.Review, 2)
	assert.Equal(t, "madrid", res.Review[1].UserAnswer)

	code, _ = env.do(t, http.MethodPost, "/api/skip", "")
	assert.Equal(t, http.StatusConflict, code, "skip after finish")
}

func TestAnswerValidation(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{`},
		{"neither", `{}`},
		{"both", `{"choice": 0, "text": "x"}`},
		{"out of range", `{"choice": 7}`},
		{"text on choice question", `{"text": "4"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.do(t, http.MethodPost, "/api/answer", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
	assert.Equal(t, "question", env.state(t).Phase)
}

func TestSkipAndReset(t *testing.T) {
	env := newTestEnv(t, true)
	first := env.state(t).SessionID

	code, body := env.do(t, http.MethodPost, "/api/skip", "")
	require.Equal(t, http.StatusOK, code)
	var v StateView
	require.NoError(t, json.Unmarshal(body, &v))
	require.NotNil(t, v.Feedback)
	assert.True(t, v.Feedback.Skipped)
	assert.False(t, v.Feedback.Correct)
	assert.Equal(t, 0, v.Score)

	code, body = env.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "question", v.Phase)
	assert.Equal(t, 0, v.Index)
	assert.NotEqual(t, first, v.SessionID)
}

func TestTimerAccrues(t *testing.T) {
	env := newTestEnv(t, true)

	env.clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, env.state(t).ElapsedSeconds)

	env.clock.Advance(600 * time.Millisecond)
	v := env.state(t)
	assert.Equal(t, 2, v.ElapsedSeconds, "fractions carry over between requests")
	assert.Equal(t, "00:02", v.Elapsed)

	env.clock.Advance(time.Hour)
	assert.Equal(t, 2+int(DefaultMaxIdle/time.Second), env.state(t).ElapsedSeconds)
}

func TestPutQuiz(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodPut, "/api/quiz", "Sure! Here it is:\n```json\n"+testQuiz+"\n```")
	require.Equal(t, http.StatusOK, code, string(body))
	var resp loadResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.True(t, resp.State.Loaded)
	assert.Equal(t, 2, resp.State.Total)
	assert.Empty(t, resp.Issues)

	code, body = env.do(t, http.MethodGet, "/api/quiz", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, testQuiz, string(body))

	rec, err := env.store.QuizRepo().CurrentQuiz(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.QuestionCount)
}

func TestPutQuiz_ClearsProgress(t *testing.T) {
	env := newTestEnv(t, true)

	code, _ := env.do(t, http.MethodPost, "/api/answer", `{"choice": 1}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodPost, "/api/next", "")
	require.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodPut, "/api/quiz", testQuiz)
	require.Equal(t, http.StatusOK, code)
	var resp loadResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 0, resp.State.Index)
	assert.Equal(t, 0, resp.State.Score)
}

func TestPutQuiz_Invalid(t *testing.T) {
	env := newTestEnv(t, true)

	tests := map[string]string{
		"empty":        "",
		"syntax":       `{"questions": [`,
		"no questions": `{"metadata": {}}`,
		"zero":         `{"questions": []}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			code, _ := env.do(t, http.MethodPut, "/api/quiz", body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
	assert.Equal(t, 2, env.state(t).Total, "the loaded quiz survives a rejected import")
}

func TestPrompt(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodPost, "/api/prompt", `{"text": "Photosynthesis turns light into chemical energy."}`)
	require.Equal(t, http.StatusOK, code, string(body))
	var resp promptResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Contains(t, resp.Prompt, "Photosynthesis")
	require.Len(t, resp.Links, 2)
	assert.True(t, strings.HasPrefix(resp.Links[0].URL, "https://chatgpt.com/?q="))
	assert.False(t, resp.Links[0].CopyPrompt)

	long := bytes.Repeat([]byte("word "), 2000)
	payload, _ := json.Marshal(map[string]string{"text": string(long)})
	code, body = env.do(t, http.MethodPost, "/api/prompt", string(payload))
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &resp))
	for _, l := range resp.Links {
		assert.True(t, l.CopyPrompt, "long prompts fall back to the clipboard")
	}

	code, _ = env.do(t, http.MethodPost, "/api/prompt", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestShutdownSavesProgress(t *testing.T) {
	env := newTestEnv(t, true)
	env.clock.Advance(3 * time.Second)

	require.NoError(t, env.srv.Shutdown(context.Background()))

	q, err := library.New(env.store.QuizRepo(), nil).Current(context.Background())
	require.NoError(t, err)
	rec, err := env.store.ProgressRepo().LoadProgress(context.Background(), q.Key())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.ElapsedSeconds)
}
