/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"annotcanvas/internal/config"
)

func TestFromEnvAndConfig(t *testing.T) {
	t.Setenv("ACV_LOG_LEVEL", "warn")
	t.Setenv("ACV_LOG_FORMAT", "json")
	t.Setenv("ACV_LOG_SOURCE", "true")
	t.Setenv("ACV_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if got := FromConfig(config.LoggingConfig{Level: "debug", Source: true, File: "a.log"}); got.Level != "debug" || !got.AddSource || got.File != "a.log" {
		t.Fatalf("FromConfig mismatch: %+v", got)
	}
	if v := getenv("ACV_SURELY_UNSET", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARNING ": slog.LevelWarn, "error": slog.LevelError,
		"": slog.LevelInfo, "chatty": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerFormatting(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "boom", 0)
	r.AddAttrs(
		slog.Int("n", 42),
		slog.Float64("pi", 3.14),
		slog.String("name", "main lobby"),
		slog.Any("err", errors.New("disk full")),
		slog.Group("pt", slog.Int("x", 1)),
	)
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"03:04:05.000 ERR boom", " k=v ", "grp.n=42", "grp.pi=3.14", `grp.name="main lobby"`, `grp.err="disk full"`, "grp.pt.x=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "grp.k=") {
		t.Fatalf("attrs added before a group must not get its prefix: %q", out)
	}
}

func TestFanoutRespectsEachLevel(t *testing.T) {
	var quiet, loud bytes.Buffer
	f := fanout{newConsoleHandler(&quiet, slog.LevelError, false), newConsoleHandler(&loud, slog.LevelDebug, false)}
	l := slog.New(f).With(slog.String("c", "x"))
	l.Info("only loud")
	if quiet.Len() != 0 {
		t.Fatalf("quiet handler got %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "only loud c=x") {
		t.Fatalf("loud handler got %q", loud.String())
	}
}
