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

// BoundingStrokeWidth widens the circle hit test around its outline.
const BoundingStrokeWidth = 2

// Circle is centered on start and passes through end.
type Circle struct {
	base
	start, end vector.Pt
}

func NewCircle(t render.Target, start, end vector.Pt, o Options) (*Circle, error) {
	c := &Circle{start: start, end: end}
	if err := c.init(c, KindCircle, t, o); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Circle) Radius() float64     { return vector.Dist(c.start, c.end) }
func (c *Circle) Center() vector.Pt   { return c.start }
func (c *Circle) Points() []vector.Pt { return []vector.Pt{c.start, c.end} }

func (c *Circle) BoundingBox() vector.Rect {
	r := c.Radius()
	return vector.Rect{X: c.start.X - r, Y: c.start.Y - r, W: 2 * r, H: 2 * r}
}

// Contains hits the disc, the band of BoundingStrokeWidth around the outline,
// or either handle.
func (c *Circle) Contains(p vector.Pt) bool {
	r := c.Radius()
	dx, dy := p.X-c.start.X, p.Y-c.start.Y
	if dx*dx+dy*dy <= r*r {
		return true
	}
	if math.Abs(math.Hypot(dx, dy)-r) <= BoundingStrokeWidth {
		return true
	}
	return vector.HandleAt(p, c.handles(), HandleSize) >= 0
}

func (c *Circle) Move(dx, dy float64) {
	c.start, c.end = c.start.Add(dx, dy), c.end.Add(dx, dy)
	c.positionChanged()
}

func (c *Circle) path() *vector.Path { return vector.CirclePath(c.start, c.Radius()) }

func (c *Circle) Draw(dc DrawContext) {
	c.paint(c.path(), vector.NonZero)
	if dc.ShowAreaName {
		c.DrawAreaName()
	}
}

func (c *Circle) DrawAreaName() {
	if c.name == "" {
		return
	}
	c.drawNameLines(c.wrapName(math.Abs(c.end.X-c.start.X)*0.8), c.start)
}

// DrawSelection shows the radius handle and a dashed radius line.
func (c *Circle) DrawSelection() {
	c.drawHandles([]vector.Pt{c.end}, HandleSize)
	c.target.StrokePath(vector.PolyPath([]vector.Pt{c.start, c.end}, false),
		vector.Stroke{Color: selectionColor, Width: 2, Dash: []float64{3, 3}, Enabled: true})
}

func (c *Circle) Clip() { c.target.ClipPath(c.path()) }

func (c *Circle) handles() []vector.Pt { return []vector.Pt{c.start, c.end} }
func (c *Circle) handleSize() float64  { return HandleSize }

// resize moves only the radius point; the center stays anchored.
func (c *Circle) resize(handle int, dx, dy float64) {
	if handle == 1 {
		c.end = c.end.Add(dx, dy)
	}
}

func (c *Circle) handleCursor(int) Cursor { return CursorPointer }

// PointerDown on the center handle drags the whole circle.
func (c *Circle) PointerDown(p vector.Pt) {
	c.base.PointerDown(p)
	if c.state == StateResizing && c.handle == 0 {
		c.state, c.handle = StateDragging, -1
	}
}

// PreviewCircle draws the in-progress circle centered on a through b.
func PreviewCircle(t render.Target, a, b vector.Pt, f vector.Fill, s vector.Stroke) {
	p := vector.CirclePath(a, vector.Dist(a, b))
	t.FillPath(p, f)
	t.StrokePath(p, s)
}
