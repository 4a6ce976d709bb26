/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package texture

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"annotcanvas/internal/render"
	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	path := filepath.Join(dir, "tex.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadCachesBySource(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, 4, 2)
	p := New(dir)
	if p.Cached("tex.png") {
		t.Fatalf("nothing should be cached yet")
	}
	a, err := p.Load("tex.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, _ := p.Load("tex.png")
	if a != b {
		t.Fatalf("second load should return the cached image")
	}
	if a.Bounds().Dx() != 4 || a.Bounds().Dy() != 2 {
		t.Fatalf("size = %v", a.Bounds())
	}
	if _, err := p.Load("missing.png"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if _, err := p.Load(""); err != ErrNoSource {
		t.Fatalf("empty source: %v", err)
	}
}

func TestLoadDataURI(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	img, err := New("").Load(src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestApplyToClipsAndDraws(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, 10, 10)
	p := New(dir)
	tg := render.NewRecorder(200, 200)
	r, _ := shape.NewRect(tg, vector.Pt{X: 10, Y: 20}, vector.Pt{X: 50, Y: 40}, shape.Options{
		Texture: shape.Texture{Src: "tex.png", Scale: ScaleContain},
	})
	if err := p.Prepare(context.Background(), r); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !p.Cached("tex.png") {
		t.Fatalf("Prepare should warm the cache")
	}
	if err := p.ApplyTo(r); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	var kinds []render.OpKind
	for _, op := range tg.Ops {
		kinds = append(kinds, op.Kind)
	}
	want := []render.OpKind{render.OpSave, render.OpClip, render.OpImage, render.OpRestore}
	if len(kinds) != len(want) {
		t.Fatalf("ops = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("ops = %v, want %v", kinds, want)
		}
	}
	img := tg.OpsOf(render.OpImage)[0]
	// 10x10 contained in 40x20 is 20x20, centered horizontally
	if img.Image.Bounds().Dx() != 20 || img.At != (vector.Pt{X: 20, Y: 20}) {
		t.Fatalf("image %v at %v", img.Image.Bounds(), img.At)
	}
}

func TestApplyToRepeatTiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, 4, 4)
	p := New(dir, WithSmoothing(false))
	tg := render.NewRecorder(100, 100)
	r, _ := shape.NewRect(tg, vector.Pt{}, vector.Pt{X: 10, Y: 6}, shape.Options{
		Texture: shape.Texture{Src: "tex.png", Repeat: RepeatTile},
	})
	if err := p.ApplyTo(r); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	img := tg.OpsOf(render.OpImage)[0].Image
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Fatalf("tile size = %v", img.Bounds())
	}
	if _, _, _, a := img.At(9, 5).RGBA(); a == 0 {
		t.Fatalf("tiled image should cover the whole box")
	}
}

func TestNoTextureIsNoop(t *testing.T) {
	tg := render.NewRecorder(10, 10)
	r, _ := shape.NewRect(tg, vector.Pt{}, vector.Pt{X: 5, Y: 5}, shape.Options{})
	p := New("")
	if err := p.Prepare(context.Background(), r); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := p.ApplyTo(r); err != nil || len(tg.Ops) != 0 {
		t.Fatalf("ApplyTo without texture: err=%v ops=%d", err, len(tg.Ops))
	}
}

func TestPrepareHonoursCancel(t *testing.T) {
	tg := render.NewRecorder(10, 10)
	r, _ := shape.NewRect(tg, vector.Pt{}, vector.Pt{X: 5, Y: 5}, shape.Options{Texture: shape.Texture{Src: "x.png"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New("").Prepare(ctx, r); err != context.Canceled {
		t.Fatalf("err = %v, want canceled", err)
	}
}

func TestBackgroundImageCovers(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 8, 4)
	img, err := New("").Image(context.Background(), path, 20, 20)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatalf("background size = %v", img.Bounds())
	}
}
