/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package crash

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"annotcanvas/internal/scene"
	"annotcanvas/internal/storage"
)

// TestRecoverWritesReportAndAutosave ensures Recover handles a panic, writes a report,
// autosaves the captured scene, and does not terminate the test process due to injected exitFn.
func TestRecoverWritesReportAndAutosave(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r) // drain pipe
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	sess := &Session{
		Handle: &storage.Handle{Path: filepath.Join(dir, "floor"+storage.DocumentExt)},
		Capture: func() storage.Document {
			return storage.Document{Version: 1, Name: "live", Width: 10, Height: 10, Shapes: []scene.Record{
				{UUID: "a", DrawType: scene.DrawLine, List: []scene.Point{{X: 1, Y: 1}, {X: 5, Y: 5}}, ZIndex: 1},
			}}
		},
	}

	func() {
		defer Recover(sess)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	bdir := filepath.Join(dir, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	var report, snap string
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(bdir, f.Name())
		case strings.HasSuffix(f.Name(), ".crash"):
			snap = filepath.Join(bdir, f.Name())
		}
	}
	if report == "" || snap == "" {
		t.Fatalf("expected crash report and snapshot under backups dir, got %v", files)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) || !bytes.Contains(b, []byte("Shapes: 1")) {
		t.Fatalf("report content unexpected: %s", b)
	}
	b, err = os.ReadFile(snap)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var doc storage.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if doc.Name != "live" || len(doc.Shapes) != 1 {
		t.Fatalf("snapshot does not hold the captured scene: %+v", doc)
	}
}

func TestSafeCaptureSurvivesPanic(t *testing.T) {
	if _, ok := safeCapture(func() storage.Document { panic("broken scene") }); ok {
		t.Fatalf("expected capture failure")
	}
	doc, ok := safeCapture(func() storage.Document { return storage.Document{Name: "x"} })
	if !ok || doc.Name != "x" {
		t.Fatalf("unexpected capture result %+v %v", doc, ok)
	}
}
