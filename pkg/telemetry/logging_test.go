// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/substrate/pkg/core"
)

func logOneRecord(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(newSlogHandler(&buf, "info", "json"))
	logger.InfoContext(ctx, "processing input")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	return record
}

func TestHandlerAddsRunID(t *testing.T) {
	ctx := core.WithRunID(context.Background(), "run-abc123")
	record := logOneRecord(t, ctx)

	if got := record["run_id"]; got != "run-abc123" {
		t.Errorf("run_id = %v, want run-abc123", got)
	}
}

func TestHandlerAddsTraceAndSpanIDs(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	record := logOneRecord(t, ctx)
	if got := record["trace_id"]; got != traceID.String() {
		t.Errorf("trace_id = %v, want %s", got, traceID)
	}
	if got := record["span_id"]; got != spanID.String() {
		t.Errorf("span_id = %v, want %s", got, spanID)
	}
}

func TestHandlerOmitsIDsWithoutContext(t *testing.T) {
	record := logOneRecord(t, context.Background())
	for _, key := range []string{"run_id", "trace_id", "span_id"} {
		if _, ok := record[key]; ok {
			t.Errorf("unexpected %s on a bare context", key)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandlerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSlogHandler(&buf, "info", "text"))
	logger.InfoContext(core.WithRunID(context.Background(), "run-xyz"), "hello")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-xyz") {
		t.Errorf("text output missing run id: %q", out)
	}
}
