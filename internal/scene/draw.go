/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"log/slog"

	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

// BeginDraw arms drawing mode t. Any selection is cleared and points of an
// unfinished shape are dropped.
func (c *Controller) BeginDraw(t DrawType, o DrawOptions) error {
	if !drawTypes[t] {
		return fmt.Errorf("%w: %q", ErrInvalidDrawType, t)
	}
	c.mode, c.drawType, c.drawOpts = ModeArmed, t, o
	c.points, c.prompting = nil, false
	c.selected = nil
	c.cursor = shape.CursorCrosshair
	c.repaint()
	return nil
}

// StopDraw leaves drawing mode from any state, discarding unfinished points.
func (c *Controller) StopDraw() {
	c.mode, c.points, c.prompting = ModeIdle, nil, false
	c.cursor = shape.CursorDefault
	c.repaint()
}

// CancelDraw discards the unfinished shape but keeps the draw mode armed.
func (c *Controller) CancelDraw() {
	c.points, c.prompting = nil, false
	if c.mode == ModeAccumulating {
		c.mode = ModeArmed
	}
	c.repaint()
}

// KeyDown handles keyboard input. Escape leaves drawing mode.
func (c *Controller) KeyDown(key string) {
	if key == "Escape" {
		c.StopDraw()
	}
}

func (c *Controller) drawing() bool { return c.mode != ModeIdle }

func finishesOnSecondPoint(t DrawType) bool {
	n, exact, ok := arity(t)
	return ok && exact && n == 2
}

// PointerDown appends a point while drawing, otherwise selects the topmost
// shape under the pointer.
func (c *Controller) PointerDown(x, y float64) {
	p := vector.Pt{X: x, Y: y}
	if c.drawing() {
		if c.disabled || c.prompting {
			return
		}
		c.addPoint(p)
		return
	}
	c.hold()
	defer c.release()
	c.selected = nil
	for _, s := range c.hitOrder() {
		if !s.Contains(p) {
			continue
		}
		if !c.disabled {
			c.selected = s
			s.PointerDown(p)
		}
		c.emit(shape.Event{Topic: TopicShapeClick, Shape: s})
		if c.selected != nil {
			c.bringToFront(s)
		}
		break
	}
	c.repaint()
}

func (c *Controller) addPoint(p vector.Pt) {
	c.points = append(c.points, p)
	c.pointer = p
	c.mode = ModeAccumulating
	switch {
	case c.drawType == DrawText:
		c.promptText(p)
	case len(c.points) == 2 && finishesOnSecondPoint(c.drawType):
		c.Finalize()
	default:
		c.repaint()
	}
}

// PointerMove drives the preview while drawing and the selected shape's
// interaction otherwise. It returns the cursor to show.
func (c *Controller) PointerMove(x, y float64) shape.Cursor {
	p := vector.Pt{X: x, Y: y}
	if c.prompting {
		return c.cursor
	}
	ic := shape.Interaction{Drawing: c.drawing()}
	switch {
	case c.mode == ModeAccumulating:
		c.pointer = p
		c.cursor = shape.CursorCrosshair
		c.repaint()
	case c.drawing():
		c.cursor = shape.CursorCrosshair
	case c.selected != nil && c.selected.State() != shape.StateIdle:
		c.hold()
		c.cursor = c.selected.PointerMove(p, ic)
		c.repaint()
		c.release()
	default:
		c.cursor = c.hover(p, ic)
	}
	if c.disabled {
		c.cursor = shape.CursorDefault
		for _, s := range c.shapes {
			if s.Contains(p) {
				c.cursor = shape.CursorPointer
				break
			}
		}
	}
	return c.cursor
}

// hover asks the topmost shape under p for its cursor.
func (c *Controller) hover(p vector.Pt, ic shape.Interaction) shape.Cursor {
	if c.selected != nil {
		if cur := c.selected.PointerMove(p, ic); cur != shape.CursorDefault {
			return cur
		}
	}
	for _, s := range c.hitOrder() {
		if s.Contains(p) {
			return shape.CursorMove
		}
	}
	return shape.CursorDefault
}

// PointerUp ends the selected shape's transform.
func (c *Controller) PointerUp() {
	if c.disabled || c.drawing() || c.selected == nil {
		return
	}
	c.selected.PointerUp()
	c.repaint()
}

// DoubleClick finishes the shape being drawn. For polygons the double click's
// own press already added a duplicate vertex, which is dropped first.
func (c *Controller) DoubleClick() shape.Shape {
	if c.disabled || c.mode != ModeAccumulating {
		return nil
	}
	if c.drawType == DrawPolygon && len(c.points) > 0 {
		c.points = c.points[:len(c.points)-1]
	}
	return c.Finalize()
}

// Finalize commits the accumulated points as a shape. A wrong point count
// discards them with a warning and returns nil.
func (c *Controller) Finalize() shape.Shape {
	if c.mode != ModeAccumulating {
		return nil
	}
	pts := c.points
	c.points = nil
	c.afterCommit()
	if !validArity(c.drawType, len(pts)) {
		c.log.Warn("shape discarded", slog.Any("err", ErrInvalidShape),
			slog.String("drawType", string(c.drawType)), slog.Int("points", len(pts)))
		c.repaint()
		return nil
	}
	s, err := c.commit(pts, "")
	if err != nil {
		c.log.Warn("shape discarded", slog.Any("err", err),
			slog.String("drawType", string(c.drawType)), slog.Int("points", len(pts)))
		c.repaint()
		return nil
	}
	c.repaint()
	return s
}

func (c *Controller) afterCommit() {
	c.prompting = false
	if c.sticky {
		c.mode = ModeArmed
		return
	}
	c.mode = ModeIdle
	c.cursor = shape.CursorDefault
}

// commit builds a shape from the draw options and adds it on top.
func (c *Controller) commit(pts []vector.Pt, text string) (shape.Shape, error) {
	o := c.drawOpts
	r := Record{
		UUID:         shape.NewID(),
		DrawType:     c.drawType,
		Name:         o.Name,
		Text:         text,
		List:         toPoints(pts),
		StrokeColor:  o.StrokeColor,
		FillColor:    o.FillColor,
		LineWidth:    o.LineWidth,
		ZIndex:       c.maxZ + 1,
		FontSize:     o.FontSize,
		TextColor:    o.TextColor,
		FontFamily:   o.FontFamily,
		TextAlign:    o.TextAlign,
		TextBaseline: o.TextBaseline,
	}
	if o.NameFontSize > 0 || o.NameTextColor != "" {
		r.AreaNameStyle = &AreaNameStyle{FontSize: o.NameFontSize, TextColor: o.NameTextColor}
	}
	if o.Texture.Enabled() {
		r.Texture = &TextureRef{Src: o.Texture.Src, Repeat: o.Texture.Repeat, Scale: o.Texture.Scale}
	}
	s, err := c.build(r)
	if err != nil {
		return nil, err
	}
	c.maxZ = r.ZIndex
	c.attach(s)
	c.log.Debug("shape committed", slog.String("uuid", s.ID()), slog.String("drawType", string(r.DrawType)),
		slog.Int("zIndex", r.ZIndex))
	return s, nil
}

func (c *Controller) textStyle() TextStyle {
	o := c.drawOpts
	return TextStyle{
		FontSize:     orFloat(o.FontSize, shape.DefaultFontSize),
		FontFamily:   orString(o.FontFamily, shape.DefaultFontFamily),
		TextAlign:    orString(o.TextAlign, shape.DefaultTextAlign),
		TextBaseline: orString(o.TextBaseline, shape.DefaultTextBaseline),
		TextColor:    orString(o.TextColor, shape.DefaultTextColor),
		StrokeColor:  o.StrokeColor,
	}
}

// promptText hands the press position to the text entry collaborator.
func (c *Controller) promptText(p vector.Pt) {
	if c.entry == nil {
		c.log.Warn("text mode without a text entry", slog.Float64("x", p.X), slog.Float64("y", p.Y))
		c.CancelDraw()
		return
	}
	c.prompting = true
	commit := func(text string) {
		if !c.prompting {
			return
		}
		c.points = nil
		c.afterCommit()
		if _, err := c.commit([]vector.Pt{p}, text); err != nil {
			c.log.Warn("text discarded", slog.Any("err", err))
		}
		c.repaint()
	}
	cancel := func() {
		if c.prompting {
			c.CancelDraw()
		}
	}
	c.entry.Prompt(p.X, p.Y, commit, cancel, c.repaint, c.textStyle())
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
