/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render defines the drawing surface shapes paint onto and the
// concrete targets behind it: an in-memory recorder for headless runs, a PNG
// raster, an SVG writer and a PDF page.
package render

import (
	"image"
	"io"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

// TextStyle carries canvas-like text attributes.
type TextStyle struct {
	Font     textlayout.FontSpec
	Color    vector.Color
	Align    string // left, center, right (start/end accepted)
	Baseline string // top, middle, alphabetic, bottom
}

// Target is a 2D drawing surface with a save/restore state stack. Clip,
// rotation and alpha changes last until the matching Restore.
type Target interface {
	Size() (w, h int)
	Resize(w, h int)
	Clear(bg vector.Color)
	FillPath(p *vector.Path, f vector.Fill)
	StrokePath(p *vector.Path, s vector.Stroke)
	FillText(text string, at vector.Pt, st TextStyle)
	MeasureText(text string, font textlayout.FontSpec) float64
	DrawImage(img image.Image, at vector.Pt)
	Save()
	Restore()
	ClipPath(p *vector.Path)
	RotateAbout(deg float64, c vector.Pt)
	SetAlpha(a float64)
}

// Encoder is implemented by targets that can serialize the current frame.
type Encoder interface {
	Encode(w io.Writer) error
}

// AnchorX maps a text alignment to a horizontal anchor in [0,1].
func AnchorX(align string) float64 {
	switch align {
	case "center":
		return 0.5
	case "right", "end":
		return 1
	default:
		return 0
	}
}

// baselineShift is the offset from the requested y to the alphabetic baseline,
// as a fraction of the font size.
func baselineShift(baseline string) float64 {
	switch baseline {
	case "top", "hanging":
		return 0.8
	case "middle":
		return 0.35
	case "bottom", "ideographic":
		return -0.2
	default:
		return 0
	}
}

func clampAlpha(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
