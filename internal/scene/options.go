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
	"fmt"
	"image"
	"log/slog"

	"annotcanvas/internal/config"
	"annotcanvas/internal/shape"
)

// DrawType is a drawing mode accepted by BeginDraw.
type DrawType string

const (
	DrawPolygon     DrawType = "polygon"
	DrawRect        DrawType = "rect"
	DrawCircle      DrawType = "circle"
	DrawLine        DrawType = "line"
	DrawText        DrawType = "text"
	DrawPolygonLine DrawType = "polygonLine"
	DrawSector      DrawType = "sector"
	DrawPencil      DrawType = "pencil"
	DrawEraser      DrawType = "eraser"
)

var drawTypes = map[DrawType]bool{
	DrawPolygon: true, DrawRect: true, DrawCircle: true, DrawLine: true, DrawText: true,
	DrawPolygonLine: true, DrawSector: true, DrawPencil: true, DrawEraser: true,
}

// ParseDrawType validates s as a drawing mode.
func ParseDrawType(s string) (DrawType, error) {
	t := DrawType(s)
	if !drawTypes[t] {
		return "", fmt.Errorf("%w: %q", ErrInvalidDrawType, s)
	}
	return t, nil
}

// arity reports the point count needed to commit a shape of type t. ok is
// false for modes that never produce a shape. exact is false when the count
// is a minimum.
func arity(t DrawType) (n int, exact, ok bool) {
	switch t {
	case DrawPolygon:
		return 3, false, true
	case DrawRect, DrawCircle, DrawLine:
		return 2, true, true
	case DrawText:
		return 1, true, true
	}
	return 0, false, false
}

func validArity(t DrawType, count int) bool {
	n, exact, ok := arity(t)
	if !ok {
		return false
	}
	if exact {
		return count == n
	}
	return count >= n
}

// DrawOptions style the shapes committed while a draw mode is armed. Empty
// fields fall back to the shape defaults.
type DrawOptions struct {
	Name          string
	StrokeColor   string
	FillColor     string
	LineWidth     float64
	FontSize      float64
	TextColor     string
	FontFamily    string
	TextAlign     string
	TextBaseline  string
	NameFontSize  float64
	NameTextColor string
	Texture       shape.Texture
}

// TextStyle is handed to the text entry collaborator.
type TextStyle struct {
	FontSize     float64
	FontFamily   string
	TextAlign    string
	TextBaseline string
	TextColor    string
	StrokeColor  string
}

// TextEntry collects the content of a text shape. Prompt may call commit or
// cancel synchronously or later; redraw repaints the scene underneath an
// editor overlay.
type TextEntry interface {
	Prompt(x, y float64, commit func(text string), cancel func(), redraw func(), style TextStyle)
}

// Textures paints images inside shapes. Prepare runs concurrently for all
// shapes before a frame; ApplyTo runs during the synchronous paint and draws
// on the shape's own target.
type Textures interface {
	Prepare(ctx context.Context, s shape.Shape) error
	ApplyTo(s shape.Shape) error
	Image(ctx context.Context, src string, w, h int) (image.Image, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithTextEntry installs the text entry collaborator used by text mode.
func WithTextEntry(e TextEntry) Option { return func(c *Controller) { c.entry = e } }

// WithTextures installs the texture provider.
func WithTextures(t Textures) Option { return func(c *Controller) { c.textures = t } }

// WithStickyDraw keeps the draw mode armed after each commit instead of
// returning to selection.
func WithStickyDraw(on bool) Option { return func(c *Controller) { c.sticky = on } }

// WithTooltip shows a finishing hint next to the pointer while drawing.
func WithTooltip(on bool) Option { return func(c *Controller) { c.tooltip = on } }

// WithConfig applies the canvas section of the user configuration.
func WithConfig(cfg config.CanvasConfig) Option {
	return func(c *Controller) {
		c.showNames = cfg.ShowAreaNames
		c.optimize = cfg.OptimizeView
		c.disabled = cfg.Disabled
		c.tooltip = cfg.ShowTooltip
		c.sticky = cfg.StickyDraw
		c.background = cfg.Background
	}
}
