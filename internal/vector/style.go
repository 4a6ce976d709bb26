/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) RGBA color. It implements image/color.Color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ErrBadColor is returned by ParseColor for strings it cannot interpret.
var ErrBadColor = errors.New("unrecognized color")

// RGBA returns alpha-premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	r = uint32(c.R) * a / 255
	g = uint32(c.G) * a / 255
	b = uint32(c.B) * a / 255
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

// WithAlpha scales the color's alpha by f (clamped to [0,1]).
func (c Color) WithAlpha(f float64) Color {
	f = math.Max(0, math.Min(1, f))
	c.A = uint8(math.Round(float64(c.A) * f))
	return c
}

// Hex renders #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Opacity returns alpha in [0,1].
func (c Color) Opacity() float64 { return float64(c.A) / 255 }

var named = map[string]Color{
	"black":       Black,
	"white":       White,
	"transparent": Transparent,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
}

// ParseColor understands the CSS forms used by annotation records: named colors,
// #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b) and rgba(r,g,b,a).
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrBadColor)
	}
	if c, ok := named[v]; ok {
		return c, nil
	}
	if strings.HasPrefix(v, "#") {
		alpha := uint8(255)
		if len(v) == 9 {
			a, err := strconv.ParseUint(v[7:], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
			}
			alpha = uint8(a)
			v = v[:7]
		}
		hc, err := colorful.Hex(v)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		r, g, b := hc.RGB255()
		return Color{r, g, b, alpha}, nil
	}
	if strings.HasPrefix(v, "rgb") {
		open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
		if open < 0 || end < open {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		parts := strings.Split(v[open+1:end], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil {
				return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
			}
			ch[i] = uint8(math.Max(0, math.Min(255, math.Round(n))))
		}
		alpha := 1.0
		if len(parts) == 4 {
			a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil {
				return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
			}
			alpha = math.Max(0, math.Min(1, a))
		}
		return Color{ch[0], ch[1], ch[2], uint8(math.Round(alpha * 255))}, nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// ColorOr parses s and falls back to def when s is empty or invalid.
func ColorOr(s string, def Color) Color {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

type Fill struct {
	Color   Color
	Rule    FillRule
	Enabled bool
}

type Stroke struct {
	Color   Color
	Width   float64
	Dash    []float64
	Enabled bool
}
