/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Hit-testing primitives used by the annotation shapes.

import "math"

// HandleBox is the square of side size centered on c.
func HandleBox(c Pt, size float64) Rect {
	return Rect{X: c.X - size/2, Y: c.Y - size/2, W: size, H: size}
}

// HandleAt returns the index of the first handle whose box contains p, or -1.
func HandleAt(p Pt, handles []Pt, size float64) int {
	for i, h := range handles {
		if HandleBox(h, size).Contains(p) {
			return i
		}
	}
	return -1
}

// Dist is the Euclidean distance between a and b.
func Dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// SegmentProjection returns the parameter t of p projected onto the line a->b
// (0 at a, 1 at b) and the perpendicular distance from p to that line.
// ok is false for a degenerate segment.
func SegmentProjection(p, a, b Pt) (t, dist float64, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0, Dist(p, a), false
	}
	t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	dist = math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / math.Sqrt(l2)
	return t, dist, true
}

// PointInPolygon applies the even-odd ray casting rule.
func PointInPolygon(p Pt, poly []Pt) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// Bounds is the axis-aligned box of pts (zero Rect for none).
func Bounds(pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Centroid is the area-weighted centroid of a simple polygon. Degenerate
// (zero-area) input falls back to the vertex mean.
func Centroid(poly []Pt) Pt {
	if len(poly) == 0 {
		return Pt{}
	}
	var a, cx, cy float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		cross := p.X*q.Y - q.X*p.Y
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	if math.Abs(a) < 1e-12 {
		var m Pt
		for _, p := range poly {
			m.X += p.X
			m.Y += p.Y
		}
		n := float64(len(poly))
		return Pt{m.X / n, m.Y / n}
	}
	a *= 0.5
	return Pt{cx / (6 * a), cy / (6 * a)}
}

// RotatePoint rotates p by deg degrees around c.
func RotatePoint(p, c Pt, deg float64) Pt { return RotateAbout(deg, c).Apply(p) }
