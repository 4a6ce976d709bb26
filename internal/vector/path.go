/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Path commands shared by all render targets.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Arc // circular arc (cx, cy, r, startRad, endRad), clockwise on screen
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [5]float64 // enough for an arc; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

// arcSegments is the number of chords used to flatten a full circle.
const arcSegments = 64

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [5]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [5]float64{x, y}})
}
func (p *Path) Arc(cx, cy, r, a0, a1 float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: Arc, Data: [5]float64{cx, cy, r, a0, a1}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Empty reports whether the path has no commands.
func (p *Path) Empty() bool { return p == nil || len(p.Cmds) == 0 }

// PolyPath builds a path through pts, optionally closing it.
func PolyPath(pts []Pt, closed bool) *Path {
	p := &Path{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
			continue
		}
		p.LineTo(pt.X, pt.Y)
	}
	if closed && len(pts) > 0 {
		p.Close()
	}
	return p
}

// RectPath is a closed rectangle path.
func RectPath(r Rect) *Path { return PolyPath(r.Corners(), true) }

// CirclePath is a closed full circle.
func CirclePath(c Pt, r float64) *Path {
	p := &Path{}
	p.Arc(c.X, c.Y, r, 0, 2*math.Pi)
	p.Close()
	return p
}

// Subpath is a flattened run of points.
type Subpath struct {
	Pts    []Pt
	Closed bool
}

// Flatten converts the path into polylines, approximating arcs with chords.
// Targets without native arc support draw the result.
func (p *Path) Flatten() []Subpath {
	var out []Subpath
	var cur *Subpath
	flush := func() {
		if cur != nil && len(cur.Pts) > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			flush()
			cur = &Subpath{Pts: []Pt{{c.Data[0], c.Data[1]}}}
		case LineTo:
			if cur == nil {
				cur = &Subpath{}
			}
			cur.Pts = append(cur.Pts, Pt{c.Data[0], c.Data[1]})
		case Arc:
			if cur == nil {
				cur = &Subpath{}
			}
			cur.Pts = append(cur.Pts, arcPoints(c.Data)...)
		case Close:
			if cur != nil {
				cur.Closed = true
			}
			flush()
		}
	}
	flush()
	return out
}

func arcPoints(d [5]float64) []Pt {
	cx, cy, r, a0, a1 := d[0], d[1], d[2], d[3], d[4]
	sweep := a1 - a0
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * arcSegments))
	if n < 1 {
		n = 1
	}
	pts := make([]Pt, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		pts = append(pts, Pt{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// Bounds returns an axis-aligned bounding box of the path. Arcs contribute the
// box of their full circle, which is exact for the circles shapes produce.
func (p *Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			grow(c.Data[0], c.Data[1])
		case Arc:
			cx, cy, r := c.Data[0], c.Data[1], c.Data[2]
			grow(cx-r, cy-r)
			grow(cx+r, cy+r)
		case Close:
			// no-op for bounds
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
