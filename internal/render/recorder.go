/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

type OpKind string

const (
	OpClear   OpKind = "clear"
	OpFill    OpKind = "fill"
	OpStroke  OpKind = "stroke"
	OpText    OpKind = "text"
	OpImage   OpKind = "image"
	OpSave    OpKind = "save"
	OpRestore OpKind = "restore"
	OpClip    OpKind = "clip"
	OpRotate  OpKind = "rotate"
)

// Op is one recorded drawing call. Alpha is the effective global alpha when
// the call was made.
type Op struct {
	Kind   OpKind
	Path   *vector.Path
	Fill   vector.Fill
	Stroke vector.Stroke
	Text   string
	At     vector.Pt
	Style  TextStyle
	Angle  float64
	Color  vector.Color
	Image  image.Image
	Alpha  float64
}

// Recorder is a headless Target that keeps the calls of the latest frame.
// Clear starts a new frame. Text is measured with a deterministic provider.
type Recorder struct {
	W, H  int
	Fonts textlayout.Provider
	Ops   []Op

	alpha  float64
	alphas []float64
}

func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, Fonts: textlayout.BasicProvider{}, alpha: 1}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }
func (r *Recorder) Resize(w, h int)  { r.W, r.H = w, h }

func (r *Recorder) Clear(bg vector.Color) {
	r.Ops = r.Ops[:0]
	r.alpha, r.alphas = 1, nil
	r.add(Op{Kind: OpClear, Color: bg})
}

func (r *Recorder) FillPath(p *vector.Path, f vector.Fill) {
	r.add(Op{Kind: OpFill, Path: p, Fill: f})
}

func (r *Recorder) StrokePath(p *vector.Path, s vector.Stroke) {
	r.add(Op{Kind: OpStroke, Path: p, Stroke: s})
}

func (r *Recorder) FillText(text string, at vector.Pt, st TextStyle) {
	r.add(Op{Kind: OpText, Text: text, At: at, Style: st})
}

func (r *Recorder) MeasureText(text string, font textlayout.FontSpec) float64 {
	if r.Fonts == nil {
		r.Fonts = textlayout.BasicProvider{}
	}
	return r.Fonts.Width(text, font)
}

func (r *Recorder) DrawImage(img image.Image, at vector.Pt) {
	r.add(Op{Kind: OpImage, Image: img, At: at})
}

func (r *Recorder) Save() {
	r.alphas = append(r.alphas, r.alpha)
	r.add(Op{Kind: OpSave})
}

func (r *Recorder) Restore() {
	if n := len(r.alphas); n > 0 {
		r.alpha, r.alphas = r.alphas[n-1], r.alphas[:n-1]
	}
	r.add(Op{Kind: OpRestore})
}

func (r *Recorder) ClipPath(p *vector.Path) { r.add(Op{Kind: OpClip, Path: p}) }

func (r *Recorder) RotateAbout(deg float64, c vector.Pt) {
	r.add(Op{Kind: OpRotate, Angle: deg, At: c})
}

func (r *Recorder) SetAlpha(a float64) { r.alpha = clampAlpha(a) }

func (r *Recorder) add(op Op) {
	op.Alpha = r.alpha
	r.Ops = append(r.Ops, op)
}

// OpsOf returns the recorded calls of one kind, in order.
func (r *Recorder) OpsOf(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the strings drawn in the current frame.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.OpsOf(OpText) {
		out = append(out, op.Text)
	}
	return out
}
