package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestBreaker_Disabled(t *testing.T) {
	mock := NewMockProvider()
	if p := WithCircuitBreaker(mock, BreakerConfig{}, nil); p != Provider(mock) {
		t.Fatalf("disabled breaker should return the inner provider, got %T", p)
	}
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithCircuitBreaker(mock, BreakerConfig{Enabled: true, ConsecutiveFailures: 2, OpenTimeout: time.Minute}, nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("content = %s", resp.Content)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithCircuitBreaker(mock, BreakerConfig{Enabled: true, ConsecutiveFailures: 3, OpenTimeout: time.Minute}, nil)

	for i := range 3 {
		if _, err := p.Generate(context.Background(), Request{}); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("open breaker should report ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("open breaker reached the provider: %d calls", mock.CallCount())
	}
}
