package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxAttempts: 3,
	InitialWait: time.Millisecond,
	MaxWait:     5 * time.Millisecond,
	Multiplier:  2,
}

func overloaded() MockResponse {
	return MockResponse{Err: &UnavailableError{Status: 503, Err: errors.New("overloaded")}}
}

func okResponse() MockResponse {
	return MockResponse{Content: json.RawMessage(`{"ok":true}`)}
}

func TestRetry(t *testing.T) {
	invalid := MockResponse{Err: &InvalidResponseError{Err: errors.New("not JSON")}}

	tests := []struct {
		name      string
		queue     []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{okResponse()}, false, 1},
		{"transient then success", []MockResponse{overloaded(), overloaded(), okResponse()}, false, 3},
		{"attempts exhausted", []MockResponse{overloaded(), overloaded(), overloaded(), okResponse()}, true, 3},
		{"rate limited", []MockResponse{{Err: &RateLimitError{RetryAfter: time.Millisecond}}, okResponse()}, false, 2},
		{"invalid response once", []MockResponse{invalid, okResponse()}, false, 2},
		{"invalid response twice", []MockResponse{invalid, invalid, okResponse()}, true, 2},
		{"truncated", []MockResponse{{Err: &TruncatedError{}}, okResponse()}, true, 1},
		{"client error", []MockResponse{{Err: &UnavailableError{Status: 401}}, okResponse()}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.queue...)
			_, err := WithRetry(mock, fastRetry, 0).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	mock := NewMockProvider(overloaded(), okResponse())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := fastRetry
	slow.InitialWait = time.Hour
	slow.MaxWait = time.Hour
	_, err := WithRetry(mock, slow, 0).Generate(ctx, Request{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

// stallingProvider blocks until the request context ends.
type stallingProvider struct{ *MockProvider }

func (s stallingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRetry_Timeout(t *testing.T) {
	p := WithRetry(stallingProvider{NewMockProvider()}, fastRetry, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not applied, took %s", time.Since(start))
	}
}

func TestRetry_WaitBeyondDeadline(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &RateLimitError{RetryAfter: time.Hour}}, okResponse())
	_, err := WithRetry(mock, fastRetry, time.Second).Generate(context.Background(), Request{})

	var limited *RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("got %v, want the rate limit error", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestBackoff(t *testing.T) {
	policy := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}

	for attempt, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, time.Second, time.Second} {
		got := backoff(policy, attempt, errors.New("x"))
		lo, hi := base*8/10, base*12/10
		if got < lo || got > hi {
			t.Errorf("attempt %d: backoff %s outside [%s, %s]", attempt, got, lo, hi)
		}
	}

	hinted := &RateLimitError{RetryAfter: 3 * time.Second}
	if got := backoff(policy, 0, hinted); got != 3*time.Second {
		t.Errorf("Retry-After hint ignored: %s", got)
	}
}

func TestRetry_Delegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), fastRetry, 0)
	if p.Name() != "mock" || p.ModelID() != "mock" {
		t.Errorf("Name/ModelID = %q/%q", p.Name(), p.ModelID())
	}
}
