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
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

// SVG writes the current frame as an SVG document. State changes open <g>
// groups that the matching Restore closes.
type SVG struct {
	w, h   int
	fonts  textlayout.Provider
	buf    bytes.Buffer
	werr   error
	clipID int
	alpha  float64
	open   int   // groups opened since the last Save
	frames []svgFrame
}

type svgFrame struct {
	alpha float64
	open  int
}

func NewSVG(w, h int, fonts textlayout.Provider) *SVG {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	return &SVG{w: w, h: h, fonts: fonts, alpha: 1}
}

func (s *SVG) wf(format string, args ...any) {
	if s.werr != nil {
		return
	}
	_, s.werr = fmt.Fprintf(&s.buf, format, args...)
}

func (s *SVG) Size() (int, int) { return s.w, s.h }
func (s *SVG) Resize(w, h int)  { s.w, s.h = w, h }

func (s *SVG) Clear(bg vector.Color) {
	s.buf.Reset()
	s.werr = nil
	s.clipID = 0
	s.alpha, s.open, s.frames = 1, 0, nil
	if bg.A > 0 {
		s.wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"%s\"%s/>\n", s.w, s.h, svgColor(bg), opacityAttr("fill-opacity", bg.Opacity()))
	}
}

func (s *SVG) FillPath(p *vector.Path, f vector.Fill) {
	if p.Empty() {
		return
	}
	rule := ""
	if f.Rule == vector.EvenOdd {
		rule = " fill-rule=\"evenodd\""
	}
	s.wf("  <path d=\"%s\" fill=\"%s\"%s%s/>\n", pathData(p), svgColor(f.Color), opacityAttr("fill-opacity", f.Color.Opacity()*s.alpha), rule)
}

func (s *SVG) StrokePath(p *vector.Path, st vector.Stroke) {
	if p.Empty() {
		return
	}
	dash := ""
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = fmt.Sprintf("%g", d)
		}
		dash = fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, " "))
	}
	s.wf("  <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"%s%s/>\n", pathData(p), svgColor(st.Color), st.Width, opacityAttr("stroke-opacity", st.Color.Opacity()*s.alpha), dash)
}

func (s *SVG) FillText(text string, at vector.Pt, st TextStyle) {
	family := st.Font.Family
	if family == "" {
		family = "Helvetica, Arial, sans-serif"
	}
	s.wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\"%s text-anchor=\"%s\" dominant-baseline=\"%s\">%s</text>\n",
		at.X, at.Y, escAttr(family), st.Font.SizePt, svgColor(st.Color), opacityAttr("fill-opacity", st.Color.Opacity()*s.alpha),
		svgAnchor(st.Align), svgBaseline(st.Baseline), escText(text))
}

func (s *SVG) MeasureText(text string, font textlayout.FontSpec) float64 {
	return s.fonts.Width(text, font)
}

func (s *SVG) DrawImage(img image.Image, at vector.Pt) {
	var pb bytes.Buffer
	if err := png.Encode(&pb, img); err != nil {
		if s.werr == nil {
			s.werr = fmt.Errorf("encode image: %w", err)
		}
		return
	}
	b := img.Bounds()
	s.wf("  <image x=\"%g\" y=\"%g\" width=\"%d\" height=\"%d\"%s href=\"data:image/png;base64,%s\"/>\n",
		at.X, at.Y, b.Dx(), b.Dy(), opacityAttr("opacity", s.alpha), base64.StdEncoding.EncodeToString(pb.Bytes()))
}

func (s *SVG) Save() {
	s.frames = append(s.frames, svgFrame{alpha: s.alpha, open: s.open})
	s.open = 0
}

func (s *SVG) Restore() {
	n := len(s.frames)
	if n == 0 {
		return
	}
	for ; s.open > 0; s.open-- {
		s.wf("  </g>\n")
	}
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	s.alpha, s.open = f.alpha, f.open
}

func (s *SVG) ClipPath(p *vector.Path) {
	s.clipID++
	id := fmt.Sprintf("clip%d", s.clipID)
	s.wf("  <clipPath id=\"%s\"><path d=\"%s\"/></clipPath>\n", id, pathData(p))
	s.wf("  <g clip-path=\"url(#%s)\">\n", id)
	s.open++
}

func (s *SVG) RotateAbout(deg float64, c vector.Pt) {
	s.wf("  <g transform=\"rotate(%g %g %g)\">\n", deg, c.X, c.Y)
	s.open++
}

func (s *SVG) SetAlpha(a float64) { s.alpha = clampAlpha(a) }

// Encode writes the complete document, closing any groups still open.
func (s *SVG) Encode(w io.Writer) error {
	if s.werr != nil {
		return fmt.Errorf("build svg: %w", s.werr)
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&out, "<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %d %d\">\n", s.w, s.h, s.w, s.h)
	out.Write(s.buf.Bytes())
	open := s.open
	for _, f := range s.frames {
		open += f.open
	}
	for ; open > 0; open-- {
		out.WriteString("  </g>\n")
	}
	out.WriteString("</svg>\n")
	_, err := out.WriteTo(w)
	return err
}

func pathData(p *vector.Path) string {
	var b strings.Builder
	has := false
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%g %g ", c.Data[0], c.Data[1])
			has = true
		case vector.LineTo:
			fmt.Fprintf(&b, "L%g %g ", c.Data[0], c.Data[1])
			has = true
		case vector.Arc:
			writeArc(&b, c.Data, has)
			has = true
		case vector.Close:
			b.WriteString("Z ")
		}
	}
	return strings.TrimSpace(b.String())
}

// writeArc emits an SVG arc; full turns are split in two halves since a single
// arc command cannot end where it starts.
func writeArc(b *strings.Builder, d [5]float64, has bool) {
	cx, cy, r, a0, a1 := d[0], d[1], d[2], d[3], d[4]
	pt := func(a float64) (float64, float64) { return cx + r*math.Cos(a), cy + r*math.Sin(a) }
	x0, y0 := pt(a0)
	if has {
		fmt.Fprintf(b, "L%g %g ", x0, y0)
	} else {
		fmt.Fprintf(b, "M%g %g ", x0, y0)
	}
	sweep := a1 - a0
	sweepFlag := 1
	if sweep < 0 {
		sweepFlag = 0
	}
	if math.Abs(sweep) >= 2*math.Pi-1e-9 {
		mx, my := pt(a0 + sweep/2)
		fmt.Fprintf(b, "A%g %g 0 0 %d %g %g ", r, r, sweepFlag, mx, my)
		fmt.Fprintf(b, "A%g %g 0 0 %d %g %g ", r, r, sweepFlag, x0, y0)
		return
	}
	large := 0
	if math.Abs(sweep) > math.Pi {
		large = 1
	}
	x1, y1 := pt(a1)
	fmt.Fprintf(b, "A%g %g 0 %d %d %g %g ", r, r, large, sweepFlag, x1, y1)
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacityAttr(name string, v float64) string {
	if v >= 1 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%g\"", name, vector.FloatRound(v, 3))
}

func svgAnchor(align string) string {
	switch align {
	case "center":
		return "middle"
	case "right", "end":
		return "end"
	default:
		return "start"
	}
}

func svgBaseline(baseline string) string {
	switch baseline {
	case "top", "hanging":
		return "hanging"
	case "middle":
		return "middle"
	case "bottom", "ideographic":
		return "text-after-edge"
	default:
		return "alphabetic"
	}
}

func escAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;", "\n", " ", "\r", "")
	return r.Replace(s)
}

func escText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
