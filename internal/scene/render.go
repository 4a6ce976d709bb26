/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"annotcanvas/internal/render"
	"annotcanvas/internal/shape"
	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

// optimizeAlpha is the shape opacity in optimized view.
const optimizeAlpha = 0.7

// Render draws a frame in two phases. The resolve phase prepares textures and
// the background image for all shapes concurrently and waits for every one of
// them; the paint phase then draws synchronously in z-order. A cancelled ctx
// stops before anything is painted. Individual texture failures are logged
// and the shape is painted without its texture.
func (c *Controller) Render(ctx context.Context) error {
	order := c.ordered()
	if err := c.resolve(ctx, order); err != nil {
		return err
	}
	c.paint(order)
	return nil
}

func (c *Controller) resolve(ctx context.Context, order []shape.Shape) error {
	if c.textures == nil {
		return ctx.Err()
	}
	w, h := c.target.Size()
	bgSrc := ""
	if c.bgImage && c.bgCache == nil {
		bgSrc = c.background
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range order {
		if !s.Texture().Enabled() {
			continue
		}
		s := s
		g.Go(func() error {
			if err := c.textures.Prepare(gctx, s); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Warn("texture unavailable", slog.String("uuid", s.ID()),
					slog.String("src", s.Texture().Src), slog.Any("err", err))
			}
			return nil
		})
	}
	if bgSrc != "" {
		g.Go(func() error {
			img, err := c.textures.Image(gctx, bgSrc, w, h)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Warn("background unavailable", slog.String("src", bgSrc), slog.Any("err", err))
				return nil
			}
			c.bgCache = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Controller) paint(order []shape.Shape) {
	t := c.target
	t.Clear(vector.Transparent)
	c.paintBackground()
	for _, s := range order {
		t.Save()
		if c.optimize {
			t.SetAlpha(optimizeAlpha)
		}
		s.Draw(shape.DrawContext{})
		if c.textures != nil {
			if err := c.textures.ApplyTo(s); err != nil {
				c.log.Debug("texture skipped", slog.String("uuid", s.ID()), slog.Any("err", err))
			}
		}
		if c.showNames {
			s.DrawAreaName()
		}
		t.Restore()
	}
	if c.selected != nil {
		c.selected.DrawSelection()
	}
	if c.bounding != nil {
		for _, s := range order {
			s.DrawBounding(*c.bounding)
		}
	}
	if c.mode == ModeAccumulating && !c.prompting {
		c.paintPreview()
		if c.tooltip {
			c.paintTooltip()
		}
	}
}

func (c *Controller) paintBackground() {
	w, h := c.target.Size()
	switch {
	case c.bgColor != nil:
		c.target.FillPath(vector.RectPath(vector.R(0, 0, float64(w), float64(h))),
			vector.Fill{Color: *c.bgColor, Enabled: true})
	case c.bgCache != nil:
		c.target.DrawImage(c.bgCache, vector.Pt{})
	}
}

// paintPreview draws the shape being drawn up to the pointer.
func (c *Controller) paintPreview() {
	if len(c.points) == 0 {
		return
	}
	o := c.drawOpts
	f := vector.Fill{Color: vector.ColorOr(orString(o.FillColor, shape.DefaultFillColor), vector.Transparent), Enabled: true}
	s := vector.Stroke{
		Color:   vector.ColorOr(o.StrokeColor, vector.Black),
		Width:   orFloat(o.LineWidth, 1),
		Enabled: true,
	}
	a, b := c.points[0], c.pointer
	switch c.drawType {
	case DrawPolygon:
		shape.PreviewPolygon(c.target, c.points, b, f, s)
	case DrawRect:
		shape.PreviewRect(c.target, a, b, f, s)
	case DrawCircle:
		shape.PreviewCircle(c.target, a, b, f, s)
	case DrawLine:
		shape.PreviewLine(c.target, a, b, s)
	default:
		c.target.StrokePath(vector.PolyPath(append(c.Pending(), b), false), s)
	}
}

// Tooltip layout.
const (
	tooltipPad      = 5
	tooltipHeight   = 20
	tooltipOffsetX  = 10
	tooltipOffsetY  = 25
	tooltipTextY    = 22
	tooltipFontSize = 12
)

var (
	tooltipFill   = vector.Color{R: 250, G: 250, B: 250, A: 179}
	tooltipBorder = vector.Color{R: 100, G: 100, B: 100, A: 179}
)

func (c *Controller) tooltipText() string {
	if c.drawType == DrawPolygon {
		return "double-click to finish"
	}
	return "click to finish"
}

// paintTooltip draws the finishing hint above and right of the pointer.
func (c *Controller) paintTooltip() {
	msg := c.tooltipText()
	font := textlayout.FontSpec{Family: "Arial", SizePt: tooltipFontSize}
	w := c.target.MeasureText(msg, font) + 2*tooltipPad
	box := vector.R(c.pointer.X+tooltipOffsetX, c.pointer.Y-tooltipOffsetY, w, tooltipHeight)
	c.target.FillPath(vector.RectPath(box), vector.Fill{Color: tooltipFill, Enabled: true})
	c.target.StrokePath(vector.RectPath(box), vector.Stroke{Color: tooltipBorder, Width: 1, Enabled: true})
	c.target.FillText(msg, vector.Pt{X: box.X + tooltipPad, Y: c.pointer.Y - tooltipTextY}, render.TextStyle{
		Font:     font,
		Color:    vector.Black,
		Align:    "left",
		Baseline: "top",
	})
}
