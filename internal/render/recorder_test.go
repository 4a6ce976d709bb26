/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"testing"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

func TestRecorder_ClearStartsNewFrame(t *testing.T) {
	r := NewRecorder(100, 50)
	r.Clear(vector.White)
	r.FillPath(vector.RectPath(vector.R(0, 0, 10, 10)), vector.Fill{Color: vector.Black, Enabled: true})
	r.Clear(vector.White)
	if len(r.Ops) != 1 || r.Ops[0].Kind != OpClear {
		t.Fatalf("expected only the clear op after a new frame, got %+v", r.Ops)
	}
}

func TestRecorder_AlphaFollowsSaveRestore(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Clear(vector.Transparent)
	r.Save()
	r.SetAlpha(0.7)
	r.FillPath(vector.RectPath(vector.R(0, 0, 1, 1)), vector.Fill{})
	r.Restore()
	r.FillPath(vector.RectPath(vector.R(0, 0, 1, 1)), vector.Fill{})
	fills := r.OpsOf(OpFill)
	if len(fills) != 2 || fills[0].Alpha != 0.7 || fills[1].Alpha != 1 {
		t.Fatalf("unexpected alphas: %+v", fills)
	}
}

func TestRecorder_MeasureIsDeterministic(t *testing.T) {
	r := NewRecorder(10, 10)
	if w := r.MeasureText("hello", textlayout.FontSpec{SizePt: 13}); w != 35 {
		t.Fatalf("expected 35, got %v", w)
	}
	r.Clear(vector.White)
	r.FillText("hi", vector.Pt{X: 1, Y: 2}, TextStyle{})
	if got := r.Texts(); len(got) != 1 || got[0] != "hi" {
		t.Fatalf("unexpected texts: %v", got)
	}
}
