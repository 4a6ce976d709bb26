/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

type pdfUndo uint8

const (
	undoClip pdfUndo = iota
	undoTransform
)

type pdfFrame struct {
	alpha float64
	undo  []pdfUndo
}

// PDF renders a frame onto a single page sized to the canvas, in points.
// Built-in Helvetica keeps text vector without embedding; arcs are flattened.
type PDF struct {
	w, h   int
	title  string
	doc    *gofpdf.Fpdf
	alpha  float64
	undo   []pdfUndo
	frames []pdfFrame
	images int
}

func NewPDF(w, h int, title string) *PDF {
	p := &PDF{w: w, h: h, title: title}
	p.reset()
	return p
}

func (p *PDF) reset() {
	p.doc = gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(p.w), Ht: float64(p.h)},
	})
	p.doc.SetTitle(p.title, true)
	p.doc.SetAuthor("annotcanvas", false)
	p.doc.SetAutoPageBreak(false, 0)
	p.doc.SetFont("Helvetica", "", 12)
	p.doc.AddPage()
	p.alpha, p.undo, p.frames, p.images = 1, nil, nil, 0
}

func (p *PDF) Size() (int, int) { return p.w, p.h }

func (p *PDF) Resize(w, h int) {
	p.w, p.h = w, h
	p.reset()
}

// Clear starts a fresh page; PDF content cannot be erased in place.
func (p *PDF) Clear(bg vector.Color) {
	p.reset()
	if bg.A == 0 {
		return
	}
	p.doc.SetAlpha(bg.Opacity(), "Normal")
	p.doc.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.doc.Rect(0, 0, float64(p.w), float64(p.h), "F")
}

func (p *PDF) trace(path *vector.Path) bool {
	drawn := false
	for _, sp := range path.Flatten() {
		if len(sp.Pts) == 0 {
			continue
		}
		p.doc.MoveTo(sp.Pts[0].X, sp.Pts[0].Y)
		for _, pt := range sp.Pts[1:] {
			p.doc.LineTo(pt.X, pt.Y)
		}
		if sp.Closed {
			p.doc.ClosePath()
		}
		drawn = true
	}
	return drawn
}

func (p *PDF) FillPath(path *vector.Path, f vector.Fill) {
	if path.Empty() {
		return
	}
	p.doc.SetAlpha(f.Color.Opacity()*p.alpha, "Normal")
	p.doc.SetFillColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
	if !p.trace(path) {
		return
	}
	if f.Rule == vector.EvenOdd {
		p.doc.DrawPath("F*")
		return
	}
	p.doc.DrawPath("F")
}

func (p *PDF) StrokePath(path *vector.Path, s vector.Stroke) {
	if path.Empty() {
		return
	}
	p.doc.SetAlpha(s.Color.Opacity()*p.alpha, "Normal")
	p.doc.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	p.doc.SetLineWidth(s.Width)
	p.doc.SetDashPattern(s.Dash, 0)
	if p.trace(path) {
		p.doc.DrawPath("D")
	}
	p.doc.SetDashPattern(nil, 0)
}

func (p *PDF) font(spec textlayout.FontSpec) {
	size := spec.SizePt
	if size <= 0 {
		size = 12
	}
	p.doc.SetFont("Helvetica", "", size)
}

func (p *PDF) FillText(text string, at vector.Pt, st TextStyle) {
	p.font(st.Font)
	w := p.doc.GetStringWidth(text)
	x := at.X - AnchorX(st.Align)*w
	y := at.Y + baselineShift(st.Baseline)*st.Font.SizePt
	p.doc.SetAlpha(st.Color.Opacity()*p.alpha, "Normal")
	p.doc.SetTextColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	p.doc.Text(x, y, text)
}

func (p *PDF) MeasureText(text string, font textlayout.FontSpec) float64 {
	p.font(font)
	return p.doc.GetStringWidth(text)
}

func (p *PDF) DrawImage(img image.Image, at vector.Pt) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		p.doc.SetError(fmt.Errorf("encode image: %w", err))
		return
	}
	p.images++
	name := fmt.Sprintf("img%d", p.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	p.doc.RegisterImageOptionsReader(name, opts, &buf)
	b := img.Bounds()
	p.doc.SetAlpha(p.alpha, "Normal")
	p.doc.ImageOptions(name, at.X, at.Y, float64(b.Dx()), float64(b.Dy()), false, opts, 0, "")
}

func (p *PDF) Save() {
	p.frames = append(p.frames, pdfFrame{alpha: p.alpha, undo: p.undo})
	p.undo = nil
}

func (p *PDF) Restore() {
	n := len(p.frames)
	if n == 0 {
		return
	}
	p.unwind()
	f := p.frames[n-1]
	p.frames = p.frames[:n-1]
	p.alpha, p.undo = f.alpha, f.undo
}

func (p *PDF) unwind() {
	for i := len(p.undo) - 1; i >= 0; i-- {
		switch p.undo[i] {
		case undoClip:
			p.doc.ClipEnd()
		case undoTransform:
			p.doc.TransformEnd()
		}
	}
	p.undo = nil
}

// ClipPath clips to the first flattened subpath of path.
func (p *PDF) ClipPath(path *vector.Path) {
	subs := path.Flatten()
	if len(subs) == 0 {
		return
	}
	pts := make([]gofpdf.PointType, len(subs[0].Pts))
	for i, pt := range subs[0].Pts {
		pts[i] = gofpdf.PointType{X: pt.X, Y: pt.Y}
	}
	p.doc.ClipPolygon(pts, false)
	p.undo = append(p.undo, undoClip)
}

// RotateAbout rotates clockwise on screen; gofpdf measures counter-clockwise.
func (p *PDF) RotateAbout(deg float64, c vector.Pt) {
	p.doc.TransformBegin()
	p.doc.TransformRotate(-deg, c.X, c.Y)
	p.undo = append(p.undo, undoTransform)
}

func (p *PDF) SetAlpha(a float64) { p.alpha = clampAlpha(a) }

// Encode closes open state and writes the document. The target must be
// cleared before it is drawn on again.
func (p *PDF) Encode(w io.Writer) error {
	for len(p.frames) > 0 {
		p.Restore()
	}
	p.unwind()
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
