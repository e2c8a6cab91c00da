package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize_RedactsSecretsAndHashesIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("provider configured", "api_key", "sk-123", "user_id", "u-42", "lesson_id", "L1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()

	if fields["api_key"] != "[REDACTED]" {
		t.Errorf("api_key = %v, want [REDACTED]", fields["api_key"])
	}
	uid, _ := fields["user_id"].(string)
	if !strings.HasPrefix(uid, "hash:") || strings.Contains(uid, "u-42") {
		t.Errorf("user_id = %q, want hashed value", uid)
	}
	if fields["lesson_id"] != "L1" {
		t.Errorf("lesson_id = %v, want L1", fields["lesson_id"])
	}
}

func TestSanitize_OddKeyValues(t *testing.T) {
	out := sanitize([]any{"a", 1, "dangling"})
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[2] != "dangling" {
		t.Errorf("out[2] = %v, want dangling", out[2])
	}
}

func TestHashValue_Stable(t *testing.T) {
	if hashValue("abc") != hashValue("abc") {
		t.Error("hash should be deterministic")
	}
	if hashValue("") != "" {
		t.Error("empty value should hash to empty string")
	}
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	l, err := New("dev", "loud")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Debug("not emitted")
	l.Sync()
}
