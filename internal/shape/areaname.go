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

// nameLineHeight is the line advance as a multiple of the font size.
const nameLineHeight = 1.2

func (b *base) nameFont() textlayout.FontSpec {
	return textlayout.FontSpec{Family: "sans-serif", SizePt: b.nameStyle.FontSize}
}

// wrapName greedily breaks the name to fit maxWidth.
func (b *base) wrapName(maxWidth float64) []string {
	font := b.nameFont()
	return textlayout.WrapGreedy(b.name, maxWidth, func(s string) float64 {
		return b.target.MeasureText(s, font)
	})
}

// drawNameLines centers lines vertically around c.
func (b *base) drawNameLines(lines []string, c vector.Pt) {
	if len(lines) == 0 {
		return
	}
	st := render.TextStyle{
		Font:     b.nameFont(),
		Color:    vector.ColorOr(b.nameStyle.TextColor, vector.White),
		Align:    "center",
		Baseline: "middle",
	}
	lh := b.nameStyle.FontSize * nameLineHeight
	y := c.Y - float64(len(lines)-1)*lh/2
	for _, line := range lines {
		b.target.FillText(line, vector.Pt{X: c.X, Y: y}, st)
		y += lh
	}
}
