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

	"annotcanvas/internal/render"
	"annotcanvas/internal/vector"
)

// lineHitMargin is added to half the hit band width.
const lineHitMargin = 5

// Line is a straight segment from a to b.
type Line struct {
	base
	a, b vector.Pt
}

func NewLine(t render.Target, a, b vector.Pt, o Options) (*Line, error) {
	l := &Line{a: a, b: b}
	if err := l.init(l, KindLine, t, o); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Line) Points() []vector.Pt      { return []vector.Pt{l.a, l.b} }
func (l *Line) BoundingBox() vector.Rect { return vector.RectFromPoints(l.a, l.b) }

// Contains hits either endpoint handle or a band around the segment, allowing
// a tenth of the length past each end.
func (l *Line) Contains(p vector.Pt) bool {
	if vector.HandleAt(p, l.handles(), HandleSize) >= 0 {
		return true
	}
	t, dist, ok := vector.SegmentProjection(p, l.a, l.b)
	if !ok {
		return false
	}
	threshold := math.Max(l.lineWidth, 10)/2 + lineHitMargin
	return dist <= threshold && t >= -0.1 && t <= 1.1
}

func (l *Line) Move(dx, dy float64) {
	l.a, l.b = l.a.Add(dx, dy), l.b.Add(dx, dy)
	l.positionChanged()
}

func (l *Line) path() *vector.Path { return vector.PolyPath([]vector.Pt{l.a, l.b}, false) }

func (l *Line) Draw(DrawContext) { l.target.StrokePath(l.path(), l.strokeStyle()) }

// DrawAreaName is a no-op; lines carry no label.
func (l *Line) DrawAreaName() {}

func (l *Line) DrawSelection() { l.drawHandles(l.handles(), HandleSize) }

func (l *Line) Clip() { l.target.ClipPath(l.path()) }

func (l *Line) handles() []vector.Pt { return []vector.Pt{l.a, l.b} }
func (l *Line) handleSize() float64  { return HandleSize }

// resize moves the grabbed endpoint; the other one stays put.
func (l *Line) resize(handle int, dx, dy float64) {
	switch handle {
	case 0:
		l.a = l.a.Add(dx, dy)
	case 1:
		l.b = l.b.Add(dx, dy)
	}
}

func (l *Line) handleCursor(int) Cursor { return CursorPointer }

// PreviewLine draws the in-progress segment.
func PreviewLine(t render.Target, a, b vector.Pt, s vector.Stroke) {
	t.StrokePath(vector.PolyPath([]vector.Pt{a, b}, false), s)
}
