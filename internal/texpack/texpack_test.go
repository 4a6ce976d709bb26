/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package texpack

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestExportAndInstall(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "floors"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := pngBytes(t)
	for _, name := range []string{"brick.png", filepath.Join("floors", "tiles.PNG")} {
		if err := os.WriteFile(filepath.Join(src, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "out", "pack.zip")
	n, err := Export(src, zipPath)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 images exported, got %d", n)
	}

	dst := t.TempDir()
	installed, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if installed != 2 {
		t.Fatalf("expected 2 images installed, got %d", installed)
	}
	if _, err := os.Stat(filepath.Join(dst, "floors", "tiles.PNG")); err != nil {
		t.Fatalf("expected nested image installed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "notes.txt")); !os.IsNotExist(err) {
		t.Fatalf("non-image file must not be exported")
	}

	again, err := Install(zipPath, dst)
	if err != nil || again != 0 {
		t.Fatalf("expected existing files to be kept, got n=%d err=%v", again, err)
	}
}

func TestInstallSkipsUnsafeAndBrokenEntries(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "bad.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	entries := map[string][]byte{
		"../evil.png": pngBytes(t),
		"broken.png":  []byte("not an image"),
		"ok.png":      pngBytes(t),
	}
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	_ = f.Close()

	parent := t.TempDir()
	dst := filepath.Join(parent, "tex")
	n, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only ok.png installed, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(parent, "evil.png")); !os.IsNotExist(err) {
		t.Fatalf("entry escaped the texture dir")
	}
	if _, err := os.Stat(filepath.Join(dst, "broken.png")); !os.IsNotExist(err) {
		t.Fatalf("undecodable image must be skipped")
	}
}

func TestExportNeedsDirectory(t *testing.T) {
	if _, err := Export(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Fatalf("expected error for a missing dir")
	}
	if _, err := Export("", "x.zip"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
