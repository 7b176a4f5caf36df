package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
		enabled    zapcore.Level
	}{
		{env: "prod", enabled: zapcore.InfoLevel},
		{env: "local", enabled: zapcore.DebugLevel},
		{env: "prod", level: "warn", enabled: zapcore.WarnLevel},
		{env: "staging", wantErr: true},
		{env: "prod", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s not enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s should be disabled", tt.enabled-1)
			}
		})
	}
}

func TestNewLogger_TestEnvIsSilent(t *testing.T) {
	l, err := NewLogger("test")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("test logger should discard everything")
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil")
	}
	l := zap.NewExample()
	if got := FromContext(ContextWithLogger(context.Background(), l)); got != l {
		t.Error("logger not carried by context")
	}
}

func TestEventFields(t *testing.T) {
	AddFields(context.Background(), zap.Int("dropped", 1))
	if EventFields(context.Background()) != nil {
		t.Error("fields without an event must be dropped")
	}

	ctx := WithEvent(context.Background())
	AddFields(ctx, zap.Int("k", 5))
	AddFields(ctx, zap.String("strategy", "scan"), zap.Int("sources", 3))

	got := EventFields(ctx)
	if len(got) != 3 || got[0].Key != "k" || got[2].Key != "sources" {
		t.Fatalf("fields = %v", got)
	}
	got[0] = zap.Skip()
	if EventFields(ctx)[0].Key != "k" {
		t.Error("EventFields must return a copy")
	}
}
