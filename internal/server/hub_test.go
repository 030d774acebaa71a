package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireMessage struct {
	Type    string    `json:"type"`
	Payload StateView `json:"payload"`
}

func dial(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	url := "ws" + env.http.URL[len("http"):] + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg wireMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWS_InitialStateAndBroadcast(t *testing.T) {
	env := newTestEnv(t, true)
	conn := dial(t, env)

	first := readMessage(t, conn)
	assert.Equal(t, MessageState, first.Type)
	assert.Equal(t, "question", first.Payload.Phase)

	code, _ := env.do(t, http.MethodPost, "/api/answer", `{"choice": 0}`)
	require.Equal(t, http.StatusOK, code)

	update := readMessage(t, conn)
	assert.Equal(t, MessageState, update.Type)
	assert.Equal(t, "feedback", update.Payload.Phase)
	require.NotNil(t, update.Payload.Feedback)
	assert.False(t, update.Payload.Feedback.Correct)
}

func TestWS_LoadedMessage(t *testing.T) {
	env := newTestEnv(t, false)
	conn := dial(t, env)

	first := readMessage(t, conn)
	assert.False(t, first.Payload.Loaded)

	code, _ := env.do(t, http.MethodPut, "/api/quiz", testQuiz)
	require.Equal(t, http.StatusOK, code)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageLoaded, msg.Type)
	assert.True(t, msg.Payload.Loaded)
}

func TestWS_ShutdownClosesClients(t *testing.T) {
	env := newTestEnv(t, true)
	conn := dial(t, env)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return env.srv.hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, env.srv.Shutdown(t.Context()))
	assert.Equal(t, 0, env.srv.hub.Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
