/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"
	"testing"

	"annotcanvas/internal/vector"
)

type countingObserver struct{ events []Event }

func (o *countingObserver) OnShapeEvent(ev Event) { o.events = append(o.events, ev) }

func TestBusObserveIsIdempotent(t *testing.T) {
	r, _ := NewRect(newTarget(), vector.Pt{}, vector.Pt{X: 10, Y: 10}, Options{})
	obs := &countingObserver{}
	if !r.Bus().Observe(obs) {
		t.Fatalf("first Observe should attach")
	}
	if r.Bus().Observe(obs) {
		t.Fatalf("second Observe should be a no-op")
	}
	r.SetName("storage")
	if len(obs.events) != 1 {
		t.Fatalf("got %d events, want 1", len(obs.events))
	}
	if ev := obs.events[0]; ev.Topic != TopicNameChange || ev.Name != "storage" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDragPublishesPositionChanged(t *testing.T) {
	r, _ := NewRect(newTarget(), vector.Pt{X: 10, Y: 10}, vector.Pt{X: 100, Y: 80}, Options{})
	var got []vector.Pt
	r.Bus().Subscribe(TopicPositionChanged, func(ev Event) { got = ev.Points })

	r.PointerDown(vector.Pt{X: 50, Y: 50})
	if r.State() != StateDragging {
		t.Fatalf("state = %s, want dragging", r.State())
	}
	if c := r.PointerMove(vector.Pt{X: 60, Y: 45}, Interaction{}); c != CursorMove {
		t.Fatalf("cursor = %s, want move", c)
	}
	r.PointerUp()
	if r.State() != StateIdle {
		t.Fatalf("state after release = %s", r.State())
	}
	want := []vector.Pt{{X: 20, Y: 5}, {X: 110, Y: 75}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("payload = %v, want %v", got, want)
	}
	// moves after release do nothing
	r.PointerMove(vector.Pt{X: 200, Y: 200}, Interaction{})
	if pts := r.Points(); pts[0] != want[0] {
		t.Fatalf("moved after release: %v", pts)
	}
}

func TestRectCornerResize(t *testing.T) {
	r, _ := NewRect(newTarget(), vector.Pt{X: 10, Y: 10}, vector.Pt{X: 100, Y: 80}, Options{})
	r.PointerDown(vector.Pt{X: 100, Y: 80})
	if r.State() != StateResizing {
		t.Fatalf("state = %s, want resizing", r.State())
	}
	if c := r.PointerMove(vector.Pt{X: 110, Y: 90}, Interaction{}); c != CursorSEResize {
		t.Fatalf("cursor = %s, want se-resize", c)
	}
	r.PointerUp()
	if got := r.BoundingBox(); got != vector.R(10, 10, 100, 80) {
		t.Fatalf("bbox = %+v", got)
	}

	r.PointerDown(vector.Pt{X: 110, Y: 10})
	r.PointerMove(vector.Pt{X: 120, Y: 0}, Interaction{})
	r.PointerUp()
	if got := r.BoundingBox(); got != vector.R(10, 0, 110, 90) {
		t.Fatalf("bbox after top-right drag = %+v", got)
	}
}

func TestCursorMapping(t *testing.T) {
	r, _ := NewRect(newTarget(), vector.Pt{X: 10, Y: 10}, vector.Pt{X: 100, Y: 80}, Options{})
	cases := []struct {
		p    vector.Pt
		ic   Interaction
		want Cursor
	}{
		{vector.Pt{X: 10, Y: 10}, Interaction{}, CursorNWResize},
		{vector.Pt{X: 100, Y: 10}, Interaction{}, CursorNEResize},
		{vector.Pt{X: 10, Y: 80}, Interaction{}, CursorSWResize},
		{vector.Pt{X: 50, Y: 50}, Interaction{}, CursorMove},
		{vector.Pt{X: 300, Y: 300}, Interaction{}, CursorDefault},
		{vector.Pt{X: 50, Y: 50}, Interaction{Drawing: true}, CursorCrosshair},
	}
	for _, c := range cases {
		if got := r.PointerMove(c.p, c.ic); got != c.want {
			t.Errorf("cursor at %v = %s, want %s", c.p, got, c.want)
		}
	}
}

func TestCircleResizeKeepsCenter(t *testing.T) {
	c, _ := NewCircle(newTarget(), vector.Pt{X: 50, Y: 50}, vector.Pt{X: 60, Y: 50}, Options{})
	c.PointerDown(vector.Pt{X: 60, Y: 50})
	c.PointerMove(vector.Pt{X: 70, Y: 50}, Interaction{})
	c.PointerUp()
	if c.Center() != (vector.Pt{X: 50, Y: 50}) || c.Radius() != 20 {
		t.Fatalf("center %v radius %v", c.Center(), c.Radius())
	}

	// the center handle drags the whole circle
	c.PointerDown(vector.Pt{X: 50, Y: 50})
	if c.State() != StateDragging {
		t.Fatalf("state = %s, want dragging", c.State())
	}
	c.PointerMove(vector.Pt{X: 55, Y: 50}, Interaction{})
	c.PointerUp()
	if pts := c.Points(); pts[0] != (vector.Pt{X: 55, Y: 50}) || pts[1] != (vector.Pt{X: 75, Y: 50}) {
		t.Fatalf("points after drag = %v", pts)
	}
}

func TestLineResizeMovesOneEndpoint(t *testing.T) {
	l, _ := NewLine(newTarget(), vector.Pt{}, vector.Pt{X: 100}, Options{})
	l.PointerDown(vector.Pt{X: 100})
	l.PointerMove(vector.Pt{X: 100, Y: 20}, Interaction{})
	l.PointerUp()
	pts := l.Points()
	if pts[0] != (vector.Pt{}) || pts[1] != (vector.Pt{X: 100, Y: 20}) {
		t.Fatalf("points = %v", pts)
	}
	if c := l.PointerMove(vector.Pt{}, Interaction{}); c != CursorPointer {
		t.Fatalf("cursor over endpoint = %s", c)
	}
}

func TestPolygonVertexResize(t *testing.T) {
	p, _ := NewPolygon(newTarget(), []vector.Pt{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}, Options{})
	var events int
	p.Bus().Subscribe(TopicPositionChanged, func(Event) { events++ })
	p.PointerDown(vector.Pt{X: 100, Y: 0})
	p.PointerMove(vector.Pt{X: 120, Y: 10}, Interaction{})
	p.PointerUp()
	if got := p.Points()[1]; got != (vector.Pt{X: 120, Y: 10}) {
		t.Fatalf("vertex = %v", got)
	}
	if events != 1 {
		t.Fatalf("positionChanged fired %d times", events)
	}
}

func TestTextRotationHandle(t *testing.T) {
	txt, err := NewText(newTarget(), vector.Pt{X: 100, Y: 100}, TextOptions{Text: "hello"})
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	var rot float64
	txt.Bus().Subscribe(TopicRotationChanged, func(ev Event) { rot = ev.Rotation })

	c := txt.Center()
	bb := txt.BoundingBox()
	handle := vector.Pt{X: bb.X + bb.W/2, Y: bb.Y - 10}
	if !txt.Contains(handle) {
		t.Fatalf("rotation handle should hit")
	}
	txt.PointerDown(handle)
	if txt.State() != StateRotating {
		t.Fatalf("state = %s, want rotating", txt.State())
	}
	// the handle follows the pointer, so the cursor stays on it
	if cur := txt.PointerMove(vector.Pt{X: c.X + 22, Y: c.Y}, Interaction{}); cur != CursorEWResize {
		t.Fatalf("cursor = %s", cur)
	}
	txt.PointerUp()
	if math.Abs(rot-90) > 1e-9 || math.Abs(txt.Rotation()-90) > 1e-9 {
		t.Fatalf("rotation = %v (event %v), want 90", txt.Rotation(), rot)
	}
	if !txt.Contains(c) {
		t.Fatalf("center should stay inside the rotated box")
	}
}

func TestTextAnchorAndDefaults(t *testing.T) {
	txt, _ := NewText(newTarget(), vector.Pt{X: 20, Y: 30}, TextOptions{Text: "x", Rotation: -90})
	if pts := txt.Points(); len(pts) != 1 || pts[0] != (vector.Pt{X: 20, Y: 30}) {
		t.Fatalf("anchor = %v", pts)
	}
	p := txt.TextProps()
	if p.FontSize != DefaultFontSize || p.FontFamily != DefaultFontFamily || p.TextColor != DefaultTextColor {
		t.Fatalf("defaults = %+v", p)
	}
	if p.Rotation != 270 {
		t.Fatalf("rotation not normalized: %v", p.Rotation)
	}
}

func TestTextHitBoxFollowsAlignment(t *testing.T) {
	tg := newTarget()
	at := vector.Pt{X: 200, Y: 100}
	left, _ := NewText(tg, at, TextOptions{Text: "warehouse"})
	center, _ := NewText(tg, at, TextOptions{Text: "warehouse", TextAlign: "center"})
	right, _ := NewText(tg, at, TextOptions{Text: "warehouse", TextAlign: "right"})
	w := tg.MeasureText("warehouse", left.font())
	if w <= 0 {
		t.Fatalf("text width = %v", w)
	}

	if bb := center.BoundingBox(); math.Abs(bb.X-(at.X-w/2)) > 1e-9 {
		t.Fatalf("center box x = %v, want %v", bb.X, at.X-w/2)
	}
	if c := center.Center(); math.Abs(c.X-(at.X+textPadding)) > 1e-9 {
		t.Fatalf("center pivot x = %v, want %v", c.X, at.X+textPadding)
	}
	if bb := right.BoundingBox(); math.Abs(bb.X-(at.X-w)) > 1e-9 {
		t.Fatalf("right box x = %v, want %v", bb.X, at.X-w)
	}

	before := vector.Pt{X: at.X - w/4, Y: at.Y}
	after := vector.Pt{X: at.X + 3*w/4, Y: at.Y}
	if left.Contains(before) || !left.Contains(after) {
		t.Fatalf("left-aligned text should extend right of its anchor")
	}
	if !center.Contains(before) || center.Contains(after) {
		t.Fatalf("center-aligned text should straddle its anchor")
	}
	if !right.Contains(before) || right.Contains(after) {
		t.Fatalf("right-aligned text should end at its anchor")
	}
}

func TestSelectionDecoration(t *testing.T) {
	tg := newTarget()
	c, _ := NewCircle(tg, vector.Pt{X: 50, Y: 50}, vector.Pt{X: 60, Y: 50}, Options{})
	c.DrawSelection()
	var dashed bool
	for _, op := range tg.OpsOf("stroke") {
		if len(op.Stroke.Dash) == 2 && op.Stroke.Dash[0] == 3 {
			dashed = true
		}
	}
	if !dashed {
		t.Fatalf("circle selection should draw a dashed radius")
	}
	if n := len(tg.OpsOf("fill")); n != 1 {
		t.Fatalf("circle selection handles = %d, want 1", n)
	}
}
