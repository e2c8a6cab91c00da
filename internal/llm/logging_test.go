package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/speedlearn/internal/logger"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (f *fakeRecorder) RecordLLMRequest(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func TestLogging_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 5},
	})
	rec := &fakeRecorder{}
	p := WithLogging(mock, ProviderMock, rec, logger.NewNop())

	ctx := WithPurpose(context.Background(), PurposeSpeedAdvisor)
	_, err := p.Generate(ctx, Request{System: "advise", Messages: UserMessage("speed 3")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if !ev.Success || ev.Purpose != PurposeSpeedAdvisor || ev.Provider != ProviderMock {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 5 {
		t.Fatalf("unexpected tokens: %d/%d", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nadvise") || !strings.Contains(ev.RequestBody, "speed 3") {
		t.Fatalf("request body missing prompt: %q", ev.RequestBody)
	}
	if ev.ResponseBody != `{"ok":true}` {
		t.Fatalf("unexpected response body: %q", ev.ResponseBody)
	}
}

func TestLogging_FailureWarnsAndRecorderErrorIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	rec := &fakeRecorder{err: errors.New("disk full")}
	p := WithLogging(mock, ProviderMock, rec, logger.FromZap(zap.New(core)))

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].ErrorMessage == "" {
		t.Fatalf("expected one failed event, got %+v", rec.events)
	}
	if n := logs.FilterMessage("llm request failed").Len(); n != 1 {
		t.Fatalf("expected 1 failure log, got %d", n)
	}
	if n := logs.FilterMessage("failed to record llm request").Len(); n != 1 {
		t.Fatalf("expected 1 recorder warning, got %d", n)
	}
}

func TestLogging_NilRecorder(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, nil, logger.NewNop())
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
