/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"annotcanvas/internal/render"
	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

// Polygon is a closed outline through its vertices, filled even-odd.
type Polygon struct {
	base
	pts []vector.Pt
}

func NewPolygon(t render.Target, pts []vector.Pt, o Options) (*Polygon, error) {
	if len(pts) < 3 {
		return nil, ErrTooFewPoints
	}
	p := &Polygon{pts: clonePts(pts)}
	if err := p.init(p, KindPolygon, t, o); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Polygon) Points() []vector.Pt      { return clonePts(p.pts) }
func (p *Polygon) BoundingBox() vector.Rect { return vector.Bounds(p.pts) }

func (p *Polygon) Contains(pt vector.Pt) bool {
	return vector.PointInPolygon(pt, p.pts) || vector.HandleAt(pt, p.pts, PolygonHandleSize) >= 0
}

func (p *Polygon) Move(dx, dy float64) {
	for i := range p.pts {
		p.pts[i] = p.pts[i].Add(dx, dy)
	}
	p.positionChanged()
}

// Scale grows or shrinks the polygon about its bounding-box center.
func (p *Polygon) Scale(factor float64) {
	c := p.BoundingBox().Center()
	for i, pt := range p.pts {
		p.pts[i] = vector.Pt{X: c.X + (pt.X-c.X)*factor, Y: c.Y + (pt.Y-c.Y)*factor}
	}
	p.positionChanged()
}

// Centroid is the area-weighted center used to place the name.
func (p *Polygon) Centroid() vector.Pt { return vector.Centroid(p.pts) }

func (p *Polygon) path() *vector.Path { return vector.PolyPath(p.pts, true) }

func (p *Polygon) Draw(dc DrawContext) {
	p.paint(p.path(), vector.EvenOdd)
	if dc.ShowAreaName {
		p.DrawAreaName()
	}
}

// DrawAreaName stacks one word per line at the centroid.
func (p *Polygon) DrawAreaName() {
	p.drawNameLines(textlayout.Words(p.name), p.Centroid())
}

func (p *Polygon) DrawSelection() { p.drawHandles(p.pts, HandleSize) }

func (p *Polygon) Clip() { p.target.ClipPath(p.path()) }

func (p *Polygon) handles() []vector.Pt { return p.pts }
func (p *Polygon) handleSize() float64  { return PolygonHandleSize }

func (p *Polygon) resize(handle int, dx, dy float64) {
	if handle >= 0 && handle < len(p.pts) {
		p.pts[handle] = p.pts[handle].Add(dx, dy)
	}
}

func (p *Polygon) handleCursor(int) Cursor { return CursorPointer }

// PreviewPolygon draws the accumulated vertices closed through the pointer.
func PreviewPolygon(t render.Target, pts []vector.Pt, pointer vector.Pt, f vector.Fill, s vector.Stroke) {
	if len(pts) == 0 {
		return
	}
	path := vector.PolyPath(append(clonePts(pts), pointer), true)
	f.Rule = vector.EvenOdd
	t.FillPath(path, f)
	t.StrokePath(path, s)
}
