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
	"image/draw"
	"io"
	"math"

	"github.com/fogleman/gg"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

type rotation struct {
	deg float64
	c   vector.Pt
}

type rasterState struct {
	alpha float64
	clip  *image.Alpha
	rots  []rotation
}

// Raster paints onto an RGBA image through gg and encodes PNG.
//
// gg's Push/Pop keep the transform but not the clip mask, so the clip and the
// rotations needed to rebuild it are tracked alongside.
type Raster struct {
	dc    *gg.Context
	fonts textlayout.Provider
	cur   rasterState
	stack []rasterState
}

func NewRaster(w, h int, fonts textlayout.Provider) *Raster {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	return &Raster{dc: gg.NewContext(w, h), fonts: fonts, cur: rasterState{alpha: 1}}
}

func (r *Raster) Size() (int, int) { return r.dc.Width(), r.dc.Height() }

func (r *Raster) Resize(w, h int) {
	r.dc = gg.NewContext(w, h)
	r.cur, r.stack = rasterState{alpha: 1}, nil
}

// Image returns the backing image of the current frame.
func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) Encode(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) Clear(bg vector.Color) {
	for len(r.stack) > 0 {
		r.Restore()
	}
	r.dc.Identity()
	r.dc.ResetClip()
	r.cur = rasterState{alpha: 1}
	r.dc.SetColor(bg)
	r.dc.Clear()
}

func (r *Raster) trace(dc *gg.Context, p *vector.Path) {
	dc.ClearPath()
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			dc.MoveTo(c.Data[0], c.Data[1])
		case vector.LineTo:
			dc.LineTo(c.Data[0], c.Data[1])
		case vector.Arc:
			dc.DrawArc(c.Data[0], c.Data[1], c.Data[2], c.Data[3], c.Data[4])
		case vector.Close:
			dc.ClosePath()
		}
	}
}

func (r *Raster) FillPath(p *vector.Path, f vector.Fill) {
	if p.Empty() {
		return
	}
	r.trace(r.dc, p)
	if f.Rule == vector.EvenOdd {
		r.dc.SetFillRuleEvenOdd()
	} else {
		r.dc.SetFillRuleWinding()
	}
	r.dc.SetColor(f.Color.WithAlpha(r.cur.alpha))
	r.dc.Fill()
}

func (r *Raster) StrokePath(p *vector.Path, s vector.Stroke) {
	if p.Empty() {
		return
	}
	r.trace(r.dc, p)
	r.dc.SetLineWidth(s.Width)
	r.dc.SetDash(s.Dash...)
	r.dc.SetColor(s.Color.WithAlpha(r.cur.alpha))
	r.dc.Stroke()
	r.dc.SetDash()
}

func (r *Raster) FillText(text string, at vector.Pt, st TextStyle) {
	face, _ := r.fonts.Resolve(st.Font)
	r.dc.SetFontFace(face)
	r.dc.SetColor(st.Color.WithAlpha(r.cur.alpha))
	w := r.fonts.Width(text, st.Font)
	x := at.X - AnchorX(st.Align)*w
	y := at.Y + baselineShift(st.Baseline)*st.Font.SizePt
	r.dc.DrawString(text, x, y)
}

func (r *Raster) MeasureText(text string, font textlayout.FontSpec) float64 {
	return r.fonts.Width(text, font)
}

func (r *Raster) DrawImage(img image.Image, at vector.Pt) {
	r.dc.DrawImage(img, int(math.Round(at.X)), int(math.Round(at.Y)))
}

func (r *Raster) Save() {
	r.dc.Push()
	saved := r.cur
	saved.rots = append([]rotation(nil), r.cur.rots...)
	r.stack = append(r.stack, saved)
}

func (r *Raster) Restore() {
	n := len(r.stack)
	if n == 0 {
		return
	}
	r.dc.Pop()
	r.cur, r.stack = r.stack[n-1], r.stack[:n-1]
	if r.cur.clip == nil {
		r.dc.ResetClip()
		return
	}
	_ = r.dc.SetMask(r.cur.clip)
}

// ClipPath intersects the clip with p as filled under the current rotation.
func (r *Raster) ClipPath(p *vector.Path) {
	w, h := r.Size()
	scratch := gg.NewContext(w, h)
	for _, rot := range r.cur.rots {
		scratch.RotateAbout(gg.Radians(rot.deg), rot.c.X, rot.c.Y)
	}
	r.trace(scratch, p)
	scratch.SetRGBA(0, 0, 0, 1)
	scratch.Fill()
	shape := scratch.AsMask()
	if r.cur.clip != nil {
		merged := image.NewAlpha(shape.Bounds())
		draw.DrawMask(merged, merged.Bounds(), shape, image.Point{}, r.cur.clip, image.Point{}, draw.Over)
		shape = merged
	}
	r.cur.clip = shape
	_ = r.dc.SetMask(shape)
}

func (r *Raster) RotateAbout(deg float64, c vector.Pt) {
	r.dc.RotateAbout(gg.Radians(deg), c.X, c.Y)
	r.cur.rots = append(r.cur.rots, rotation{deg: deg, c: c})
}

func (r *Raster) SetAlpha(a float64) { r.cur.alpha = clampAlpha(a) }
