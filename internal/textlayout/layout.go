/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement behind deterministic interfaces. Render targets and shapes
// measure through a Provider so headless runs and tests get stable widths.

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name; unknown families fall back
	SizePt float64
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face and measures runs of text.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
	Width(text string, spec FontSpec) float64
}

// basicSize is the nominal pixel size of basicfont.Face7x13.
const basicSize = 13

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests. The
// bitmap face has one size, so widths are scaled linearly to the requested size.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

func (p BasicProvider) Width(text string, spec FontSpec) float64 {
	face, _ := p.Resolve(spec)
	w := advance(&font.Drawer{Face: face}, text)
	if spec.SizePt <= 0 {
		return w
	}
	return w * spec.SizePt / basicSize
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}
