/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"bytes"
	"context"
	"errors"
	"image"
	"slices"
	"strings"
	"sync"
	"testing"

	"annotcanvas/internal/render"
	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

type fakeTextures struct {
	mu       sync.Mutex
	prepared []string
	applied  []string
	fail     string
	bgCalls  int
}

func (f *fakeTextures) Prepare(ctx context.Context, s shape.Shape) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepared = append(f.prepared, s.ID())
	if s.Texture().Src == f.fail {
		return errors.New("decode failed")
	}
	return nil
}

func (f *fakeTextures) ApplyTo(s shape.Shape) error {
	if !s.Texture().Enabled() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, s.ID())
	return nil
}

func (f *fakeTextures) Image(ctx context.Context, src string, w, h int) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bgCalls++
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

func TestRenderPaintsInZOrder(t *testing.T) {
	c, rec, _ := newScene(t)
	_ = c.SetDataList([]Record{
		{UUID: "top", DrawType: DrawRect, ZIndex: 5, FillColor: "#ff0000", List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		{UUID: "bottom", DrawType: DrawRect, ZIndex: 1, FillColor: "#00ff00", List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
	})
	fills := rec.OpsOf(render.OpFill)
	if len(fills) != 2 {
		t.Fatalf("fills = %d", len(fills))
	}
	if fills[0].Fill.Color.G != 255 || fills[1].Fill.Color.R != 255 {
		t.Fatalf("paint order wrong: %v then %v", fills[0].Fill.Color, fills[1].Fill.Color)
	}

	if err := c.BringToFront("bottom"); err != nil {
		t.Fatalf("BringToFront: %v", err)
	}
	order := c.Shapes()
	if order[len(order)-1].ID() != "bottom" {
		t.Fatalf("bottom should paint last")
	}
	for _, s := range order[:len(order)-1] {
		if s.ZIndex() >= order[len(order)-1].ZIndex() {
			t.Fatalf("z-index not strictly greater")
		}
	}
	if fills := rec.OpsOf(render.OpFill); fills[1].Fill.Color.G != 255 {
		t.Fatalf("repaint did not follow the new order")
	}
}

func TestSendToBackAndSetZIndex(t *testing.T) {
	c, _, _ := newScene(t)
	a := drawRect(t, c, 0, 0, 10, 10)
	b := drawRect(t, c, 5, 5, 15, 15)
	if err := c.SendToBack(b.ID()); err != nil {
		t.Fatalf("SendToBack: %v", err)
	}
	if b.ZIndex() != 0 || a.ZIndex() != 2 || c.Shapes()[0] != b {
		t.Fatalf("z: a=%d b=%d", a.ZIndex(), b.ZIndex())
	}
	if err := c.SetZIndex(a.ID(), 50); err != nil {
		t.Fatalf("SetZIndex: %v", err)
	}
	if c.MaxZIndex() != 50 {
		t.Fatalf("counter = %d", c.MaxZIndex())
	}
	n := drawRect(t, c, 20, 20, 30, 30)
	if n.ZIndex() != 51 {
		t.Fatalf("new shape z = %d", n.ZIndex())
	}
	if err := c.SetZIndex(a.ID(), 3); err != nil || c.MaxZIndex() != 51 {
		t.Fatalf("counter moved backwards: %d (%v)", c.MaxZIndex(), err)
	}
	if c.Records()[0].ZIndex != 3 {
		t.Fatalf("record z not synced")
	}
	for _, op := range []func(string) error{c.BringToFront, c.SendToBack, c.DeleteArea} {
		if err := op("nope"); !errors.Is(err, ErrShapeNotFound) {
			t.Fatalf("unknown id: %v", err)
		}
	}
	if err := c.SetZIndex("nope", 1); !errors.Is(err, ErrShapeNotFound) {
		t.Fatalf("unknown id: %v", err)
	}
}

func TestDeleteArea(t *testing.T) {
	c, _, _ := newScene(t)
	a := drawRect(t, c, 0, 0, 10, 10)
	drawRect(t, c, 20, 20, 30, 30)
	c.PointerDown(5, 5)
	if err := c.DeleteArea(a.ID()); err != nil {
		t.Fatalf("DeleteArea: %v", err)
	}
	if c.Len() != 1 || len(c.Records()) != 1 || c.Selected() != nil {
		t.Fatalf("shapes %d records %d selected %v", c.Len(), len(c.Records()), c.Selected())
	}
	if _, ok := c.ShapeByID(a.ID()); ok {
		t.Fatalf("deleted shape still reachable")
	}
	c.Clear()
	if c.Len() != 0 || c.MaxZIndex() != 0 {
		t.Fatalf("clear left %d shapes", c.Len())
	}
}

func TestSelectionDrawnLast(t *testing.T) {
	c, rec, _ := newScene(t)
	drawRect(t, c, 0, 0, 100, 100)
	drawRect(t, c, 200, 0, 300, 100)
	c.PointerDown(50, 50)
	last := rec.Ops[len(rec.Ops)-1]
	if last.Kind != render.OpStroke || last.Stroke.Width != 2 || last.Stroke.Color != (vector.Color{B: 255, A: 255}) {
		t.Fatalf("last op = %+v", last)
	}
}

func TestOptimizeViewAndNames(t *testing.T) {
	c, rec, _ := newScene(t)
	_ = c.SetDataList([]Record{{UUID: "r", DrawType: DrawRect, Name: "hall", List: []Point{{X: 0, Y: 0}, {X: 200, Y: 100}}}})
	if len(rec.Texts()) != 0 {
		t.Fatalf("names drawn while hidden")
	}
	c.ShowAreaNames(true)
	if got := rec.Texts(); len(got) != 1 || got[0] != "hall" {
		t.Fatalf("texts = %q", got)
	}
	c.OptimizeView(true)
	if f := rec.OpsOf(render.OpFill)[0]; f.Alpha != optimizeAlpha {
		t.Fatalf("alpha = %v", f.Alpha)
	}
	c.OptimizeView(false)
	if f := rec.OpsOf(render.OpFill)[0]; f.Alpha != 1 {
		t.Fatalf("alpha = %v", f.Alpha)
	}
}

func TestBackgroundAndBounding(t *testing.T) {
	c, rec, _ := newScene(t)
	if err := c.SetBackground("#ff0000"); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	bg := rec.OpsOf(render.OpFill)[0]
	if bg.Fill.Color != (vector.Color{R: 255, A: 255}) || bg.Path.Bounds() != vector.R(0, 0, 400, 300) {
		t.Fatalf("background op = %+v", bg)
	}
	if err := c.SetBackground("no/such/thing"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("image background without textures: %v", err)
	}
	drawRect(t, c, 10, 10, 20, 20)
	if err := c.ShowBounding("lime"); err != nil {
		t.Fatalf("ShowBounding: %v", err)
	}
	last := rec.Ops[len(rec.Ops)-1]
	if last.Kind != render.OpStroke || last.Stroke.Color != (vector.Color{G: 255, A: 255}) {
		t.Fatalf("bounding op = %+v", last)
	}
	if err := c.ShowBounding("???"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad color: %v", err)
	}
	c.HideBounding()
	if last := rec.Ops[len(rec.Ops)-1]; last.Stroke.Color == (vector.Color{G: 255, A: 255}) {
		t.Fatalf("bounding still drawn")
	}
}

func TestPreviewAndTooltip(t *testing.T) {
	c, rec, _ := newScene(t, WithTooltip(true))
	_ = c.BeginDraw(DrawPolygon, DrawOptions{})
	c.PointerDown(10, 10)
	c.PointerDown(50, 10)
	if cur := c.PointerMove(50, 50); cur != shape.CursorCrosshair {
		t.Fatalf("cursor = %s", cur)
	}
	if got := rec.Texts(); len(got) != 1 || got[0] != "double-click to finish" {
		t.Fatalf("tooltip = %q", got)
	}
	preview := rec.OpsOf(render.OpFill)[0]
	if b := preview.Path.Bounds(); b != vector.R(10, 10, 40, 40) {
		t.Fatalf("preview bounds = %+v", b)
	}
}

func TestRenderResolvesTexturesFirst(t *testing.T) {
	tex := &fakeTextures{fail: "broken.png"}
	c, rec, logs := newScene(t, WithTextures(tex))
	err := c.SetDataList([]Record{
		{UUID: "a", DrawType: DrawRect, ZIndex: 2, Texture: &TextureRef{Src: "wood.png"}, List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		{UUID: "b", DrawType: DrawRect, ZIndex: 1, Texture: &TextureRef{Src: "broken.png"}, List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		{UUID: "c", DrawType: DrawRect, ZIndex: 3, List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
	})
	if err != nil {
		t.Fatalf("SetDataList: %v", err)
	}
	tex.mu.Lock()
	prepared := slices.Clone(tex.prepared)
	applied := slices.Clone(tex.applied)
	tex.mu.Unlock()
	slices.Sort(prepared)
	if !slices.Equal(prepared, []string{"a", "b"}) {
		t.Fatalf("prepared = %v", prepared)
	}
	if !slices.Equal(applied, []string{"b", "a"}) {
		t.Fatalf("applied = %v, want paint order", applied)
	}
	if !strings.Contains(logs.String(), "texture unavailable") {
		t.Fatalf("texture failure not logged")
	}
	if len(rec.OpsOf(render.OpFill)) != 3 {
		t.Fatalf("all shapes should still be painted")
	}

	if err := c.SetBackground("paper.png"); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if tex.bgCalls != 1 || rec.Ops[1].Kind != render.OpImage {
		t.Fatalf("background image not painted first: calls %d op %s", tex.bgCalls, rec.Ops[1].Kind)
	}
	c.ShowAreaNames(true)
	if tex.bgCalls != 1 {
		t.Fatalf("background image should be resolved once, got %d", tex.bgCalls)
	}
}

func TestRenderCancelled(t *testing.T) {
	c, rec, _ := newScene(t)
	drawRect(t, c, 0, 0, 10, 10)
	before := len(rec.Ops)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(rec.Ops) != before {
		t.Fatalf("cancelled render painted")
	}
}

func TestExport(t *testing.T) {
	c, _, _ := newScene(t)
	if err := c.Export(nil); !errors.Is(err, ErrNotExportable) {
		t.Fatalf("recorder export: %v", err)
	}
	svg := render.NewSVG(50, 50, nil)
	c2, err := New(svg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = c2.SetDataList([]Record{{UUID: "r", DrawType: DrawRect, List: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}})
	var buf bytes.Buffer
	if err := c2.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("not an svg document: %s", buf.String())
	}
}
