/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"annotcanvas/internal/config"
	"annotcanvas/internal/crash"
	"annotcanvas/internal/storage"
)

func newTestApp() (*app, *bytes.Buffer) {
	var out bytes.Buffer
	return &app{
		cfg:  config.Defaults(),
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:  &out,
		sess: &crash.Session{},
	}, &out
}

func TestRunUsageErrors(t *testing.T) {
	a, _ := newTestApp()
	ctx := context.Background()
	if err := a.run(ctx, []string{"frobnicate"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
	if err := a.run(ctx, []string{"render", "only-one.scene.json"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for missing output, got %v", err)
	}
	if err := a.run(ctx, []string{"new", "-width=abc", "x.scene.json"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for bad flag, got %v", err)
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	a, out := newTestApp()
	if err := a.run(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "AnnotCanvas ") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
	out.Reset()
	if err := a.run(context.Background(), nil); err != nil {
		t.Fatalf("no args: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage text, got %q", out.String())
	}
}

const lobbyScript = `# areas
draw rect name=lobby fill=#ff000080
click 10 10
click 110 60
draw circle name=pillar
click 200 100
click 230 100
`

func TestNewDrawRenderWorkflow(t *testing.T) {
	a, out := newTestApp()
	ctx := context.Background()
	dir := t.TempDir()
	doc := filepath.Join(dir, "plan.scene.json")
	scr := filepath.Join(dir, "plan.acv")
	if err := os.WriteFile(scr, []byte(lobbyScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if err := a.run(ctx, []string{"new", "-width", "320", "-height", "200", "-name", "Plan", doc}); err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.run(ctx, []string{"new", doc}); err == nil {
		t.Fatalf("expected new to refuse an existing document")
	}
	if err := a.run(ctx, []string{"draw", doc, scr}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	h, err := storage.Open(doc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(h.Doc.Shapes) != 2 || h.Doc.Shapes[0].Name != "lobby" || h.Doc.Width != 320 {
		t.Fatalf("unexpected document after draw: %+v", h.Doc)
	}

	out.Reset()
	if err := a.run(ctx, []string{"info", doc}); err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"Document: Plan", "Size: 320x200", "Shapes: 2", "circle: 1", "rect: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("info output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := a.run(ctx, []string{"validate", doc}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "OK (2 shapes)") {
		t.Fatalf("unexpected validate output: %q", out.String())
	}

	svg := filepath.Join(dir, "plan.svg")
	if err := a.run(ctx, []string{"render", "-names", doc, svg}); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	data, err := os.ReadFile(svg)
	if err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("expected svg output, err=%v", err)
	}
	png := filepath.Join(dir, "plan.png")
	if err := a.run(ctx, []string{"render", doc, png}); err != nil {
		t.Fatalf("render png: %v", err)
	}
	data, err = os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("expected png output, err=%v", err)
	}

	hist, err := storage.OpenHistory(ctx, dir)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer func() { _ = hist.Close() }()
	prev, err := hist.Preview(ctx, "plan.scene.json")
	if err != nil || !bytes.HasPrefix(prev, []byte("\x89PNG")) {
		t.Fatalf("expected stored png preview, err=%v", err)
	}
}

func TestDrawCreatesMissingDocument(t *testing.T) {
	a, _ := newTestApp()
	dir := t.TempDir()
	doc := filepath.Join(dir, "fresh.scene.json")
	scr := filepath.Join(dir, "s.acv")
	if err := os.WriteFile(scr, []byte(lobbyScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if err := a.run(context.Background(), []string{"draw", doc, scr}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	h, err := storage.Open(doc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if h.Doc.Width != 800 || h.Doc.Height != 600 || len(h.Doc.Shapes) != 2 {
		t.Fatalf("unexpected new document: %+v", h.Doc)
	}
}

func TestDrawReportsScriptErrors(t *testing.T) {
	a, _ := newTestApp()
	dir := t.TempDir()
	scr := filepath.Join(dir, "bad.acv")
	if err := os.WriteFile(scr, []byte("draw rect\nwiggle 1 2\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	err := a.run(context.Background(), []string{"draw", filepath.Join(dir, "d.scene.json"), scr})
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected parse error on line 2, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "d.scene.json")); !os.IsNotExist(statErr) {
		t.Fatalf("document must not be written when the script does not parse")
	}
}

func TestHistoryAndRestore(t *testing.T) {
	a, out := newTestApp()
	ctx := context.Background()
	dir := t.TempDir()
	doc := filepath.Join(dir, "h.scene.json")
	first := filepath.Join(dir, "first.acv")
	second := filepath.Join(dir, "second.acv")
	if err := os.WriteFile(first, []byte("draw rect\nclick 10 10\nclick 50 50\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("click 20 20\ndelete\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.run(ctx, []string{"draw", doc, first}); err != nil {
		t.Fatalf("draw first: %v", err)
	}
	if err := a.run(ctx, []string{"draw", doc, second}); err != nil {
		t.Fatalf("draw second: %v", err)
	}
	h, err := storage.Open(doc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(h.Doc.Shapes) != 0 {
		t.Fatalf("expected the rect to be deleted, got %d shapes", len(h.Doc.Shapes))
	}

	out.Reset()
	if err := a.run(ctx, []string{"history", doc}); err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "0 shapes") || !strings.HasSuffix(lines[1], "1 shapes") {
		t.Fatalf("unexpected history output:\n%s", out.String())
	}

	if err := a.run(ctx, []string{"restore", "-at", "1", doc}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	h, err = storage.Open(doc)
	if err != nil {
		t.Fatalf("open after restore: %v", err)
	}
	if len(h.Doc.Shapes) != 1 || h.Doc.Shapes[0].DrawType != "rect" {
		t.Fatalf("unexpected restored shapes: %+v", h.Doc.Shapes)
	}
	if err := a.run(ctx, []string{"restore", "-at", "5", doc}); err == nil {
		t.Fatalf("expected an error for a missing snapshot")
	}
}

func TestPackCommands(t *testing.T) {
	a, out := newTestApp()
	ctx := context.Background()
	if err := a.run(ctx, []string{"pack", "install", "x.zip"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error without a texture dir, got %v", err)
	}
	src := t.TempDir()
	zipPath := filepath.Join(t.TempDir(), "tex.zip")
	if err := a.run(ctx, []string{"pack", "export", src, zipPath}); err != nil {
		t.Fatalf("pack export: %v", err)
	}
	if !strings.Contains(out.String(), "Exported 0 textures") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	a.cfg.Render.TextureDir = filepath.Join(t.TempDir(), "tex")
	if err := a.run(ctx, []string{"pack", "install", zipPath}); err != nil {
		t.Fatalf("pack install: %v", err)
	}
}
