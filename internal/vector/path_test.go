/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestPolyPathBounds(t *testing.T) {
	p := PolyPath([]Pt{{0, 0}, {10, 0}, {0, 10}}, true)
	b := p.Bounds()
	if b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if p.Cmds[len(p.Cmds)-1].Op != Close {
		t.Fatalf("closed polypath must end with Close")
	}
}

func TestCirclePathBoundsAndFlatten(t *testing.T) {
	p := CirclePath(Pt{50, 50}, 10)
	if b := p.Bounds(); b != R(40, 40, 20, 20) {
		t.Fatalf("unexpected circle bounds: %+v", b)
	}
	subs := p.Flatten()
	if len(subs) != 1 || !subs[0].Closed {
		t.Fatalf("expected one closed subpath, got %+v", subs)
	}
	for _, pt := range subs[0].Pts {
		if d := Dist(pt, Pt{50, 50}); math.Abs(d-10) > 1e-9 {
			t.Fatalf("flattened point off circle: %+v (d=%v)", pt, d)
		}
	}
}

func TestFlattenSplitsSubpaths(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(5, 0)
	p.MoveTo(10, 10)
	p.LineTo(20, 10)
	p.Close()
	subs := p.Flatten()
	if len(subs) != 2 {
		t.Fatalf("expected 2 subpaths, got %d", len(subs))
	}
	if subs[0].Closed || !subs[1].Closed {
		t.Fatalf("unexpected closed flags: %+v", subs)
	}
}

func TestEmptyPathBounds(t *testing.T) {
	var p Path
	if !p.Empty() || p.Bounds() != (Rect{}) {
		t.Fatalf("empty path should have zero bounds")
	}
}
