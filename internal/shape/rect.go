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

const (
	DefaultRectFill   = "rgba(255,255,255,0.5)"
	DefaultRectStroke = "rgba(255,0,0,1)"
)

// Rect is an axis-aligned rectangle spanned by two corners.
type Rect struct {
	base
	start, end vector.Pt
}

func NewRect(t render.Target, start, end vector.Pt, o Options) (*Rect, error) {
	o.FillColor = orString(o.FillColor, DefaultRectFill)
	o.StrokeColor = orString(o.StrokeColor, DefaultRectStroke)
	r := &Rect{start: start, end: end}
	if err := r.init(r, KindRect, t, o); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rect) Points() []vector.Pt { return []vector.Pt{r.start, r.end} }

func (r *Rect) BoundingBox() vector.Rect { return vector.RectFromPoints(r.start, r.end) }

func (r *Rect) Contains(p vector.Pt) bool {
	return r.BoundingBox().Contains(p) || vector.HandleAt(p, r.handles(), HandleSize) >= 0
}

func (r *Rect) Move(dx, dy float64) {
	r.start, r.end = r.start.Add(dx, dy), r.end.Add(dx, dy)
	r.positionChanged()
}

func (r *Rect) path() *vector.Path { return vector.RectPath(r.BoundingBox()) }

func (r *Rect) Draw(dc DrawContext) {
	r.paint(r.path(), vector.NonZero)
	if dc.ShowAreaName {
		r.DrawAreaName()
	}
}

func (r *Rect) DrawAreaName() {
	if r.name == "" {
		return
	}
	c := vector.Pt{X: (r.start.X + r.end.X) / 2, Y: (r.start.Y + r.end.Y) / 2}
	r.drawNameLines(r.wrapName(math.Abs(r.end.X-r.start.X)*0.8), c)
}

func (r *Rect) DrawSelection() { r.drawHandles(r.handles(), HandleSize) }

func (r *Rect) Clip() { r.target.ClipPath(r.path()) }

// handles are ordered start, (end.x,start.y), (start.x,end.y), end.
func (r *Rect) handles() []vector.Pt {
	return []vector.Pt{r.start, {X: r.end.X, Y: r.start.Y}, {X: r.start.X, Y: r.end.Y}, r.end}
}

func (r *Rect) handleSize() float64 { return HandleSize }

func (r *Rect) resize(handle int, dx, dy float64) {
	switch handle {
	case 0:
		r.start.X += dx
		r.start.Y += dy
	case 1:
		r.end.X += dx
		r.start.Y += dy
	case 2:
		r.start.X += dx
		r.end.Y += dy
	case 3:
		r.end.X += dx
		r.end.Y += dy
	}
}

func (r *Rect) handleCursor(handle int) Cursor {
	return cornerCursor(r.handles()[handle], r.BoundingBox().Center())
}

// PreviewRect draws the in-progress rectangle from a to b.
func PreviewRect(t render.Target, a, b vector.Pt, f vector.Fill, s vector.Stroke) {
	p := vector.RectPath(vector.RectFromPoints(a, b))
	t.FillPath(p, f)
	t.StrokePath(p, s)
}
