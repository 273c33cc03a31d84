package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "design system",
			limit:  6,
			expect: "design...",
		},
		{
			name:   "counts runes",
			input:  "ÜberJob",
			limit:  4,
			expect: "Über...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNewWithOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := NewWithOptions(Options{JSON: true, Debug: true, Output: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}

	l, err = New(false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be disabled")
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), JobFields("acme-platform-engineer", " Acme ")...).Info("scored")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[FieldJobID] != "acme-platform-engineer" || ctx[FieldCompany] != "Acme" {
		t.Fatalf("unexpected fields %v", ctx)
	}

	if WithFields(nil) == nil {
		t.Fatal("expected fallback logger when nil provided")
	}
}

func TestProviderFields(t *testing.T) {
	fields := ProviderFields("gemini", "")
	if len(fields) != 1 || fields[0].Key != FieldProvider {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if len(ProviderFields(" ", "")) != 0 {
		t.Fatal("expected blank values to be dropped")
	}
}
