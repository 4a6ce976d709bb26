/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape implements the annotation shapes: polygon, rectangle, circle,
// line and text. Every shape draws itself, hit-tests pointer positions and
// runs its own drag/resize/rotate interaction, publishing changes on its Bus.
package shape

import (
	"errors"

	"annotcanvas/internal/render"
	"annotcanvas/internal/vector"
)

// Kind is the persisted drawType of a shape.
type Kind string

const (
	KindPolygon Kind = "polygon"
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindLine    Kind = "line"
	KindText    Kind = "text"
)

// ErrMissingContext is returned when a shape is built without a render target.
var ErrMissingContext = errors.New("shape: missing render target")

// ErrTooFewPoints is returned when a polygon has fewer than three vertices.
var ErrTooFewPoints = errors.New("shape: polygon needs at least 3 points")

const (
	// HandleSize is the side of a square resize handle.
	HandleSize = 8
	// PolygonHandleSize is the vertex handle side for polygons.
	PolygonHandleSize = 10
)

const (
	DefaultFillColor     = "rgba(0, 0, 0, 0.1)"
	DefaultStrokeColor   = "rgba(0, 0, 0, 1)"
	DefaultAreaNameColor = "#FFF"
	DefaultAreaNameSize  = 14
)

// Selection decoration.
var (
	selectionColor = vector.Color{B: 255, A: 255}
	handleFill     = vector.White
)

// State is the interaction state of a shape.
type State uint8

const (
	StateIdle State = iota
	StateDragging
	StateResizing
	StateRotating
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateRotating:
		return "rotating"
	default:
		return "idle"
	}
}

// Cursor is a CSS cursor keyword.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorMove      Cursor = "move"
	CursorPointer   Cursor = "pointer"
	CursorCrosshair Cursor = "crosshair"
	CursorNWResize  Cursor = "nw-resize"
	CursorNEResize  Cursor = "ne-resize"
	CursorSWResize  Cursor = "sw-resize"
	CursorSEResize  Cursor = "se-resize"
	CursorEWResize  Cursor = "ew-resize"
)

// Interaction is the context passed with pointer moves.
type Interaction struct {
	Drawing bool // a draw mode is armed; the cursor is forced to a crosshair
}

// DrawContext controls optional parts of Draw.
type DrawContext struct {
	ShowAreaName bool
}

// AreaNameStyle styles the label drawn inside area shapes.
type AreaNameStyle struct {
	FontSize  float64
	TextColor string
}

// Texture describes an image painted inside the shape.
type Texture struct {
	Src    string
	Repeat string // "repeat" tiles the image; anything else draws it once
	Scale  string // cover, contain or none
}

func (t Texture) Enabled() bool { return t.Src != "" }

// Options are the common construction options. Zero values take defaults.
type Options struct {
	ID          string
	Name        string
	FillColor   string
	StrokeColor string
	LineWidth   float64
	AreaName    AreaNameStyle
	Texture     Texture
	ZIndex      int
}

// Props is a snapshot of the shared style fields.
type Props struct {
	Name        string
	FillColor   string
	StrokeColor string
	LineWidth   float64
	AreaName    AreaNameStyle
}

// Shape is the contract shared by all annotation shapes. Shapes paint on the
// target they were built with.
type Shape interface {
	ID() string
	Kind() Kind
	Target() render.Target
	Props() Props
	SetName(name string)
	SetFillColor(c string)
	SetStrokeColor(c string)
	SetLineWidth(w float64)
	SetAreaNameColor(c string)
	SetAreaNameSize(size float64)
	Texture() Texture
	SetTexture(t Texture)
	ZIndex() int
	SetZIndex(z int)
	Bus() *Bus

	// Points returns a copy of the persisted control points.
	Points() []vector.Pt
	Move(dx, dy float64)
	Contains(p vector.Pt) bool
	BoundingBox() vector.Rect

	Draw(dc DrawContext)
	DrawAreaName()
	DrawSelection()
	DrawBounding(c vector.Color)
	Clip()

	PointerDown(p vector.Pt)
	PointerMove(p vector.Pt, ic Interaction) Cursor
	PointerUp()
	State() State
}

// geometry is implemented by each variant for the shared interaction code.
type geometry interface {
	Shape
	handles() []vector.Pt
	handleSize() float64
	resize(handle int, dx, dy float64)
	handleCursor(handle int) Cursor
}

type base struct {
	self   geometry
	kind   Kind
	target render.Target

	id        string
	name      string
	fill      string
	stroke    string
	lineWidth float64
	nameStyle AreaNameStyle
	texture   Texture
	z         int
	bus       Bus

	state  State
	handle int
	last   vector.Pt
}

func (b *base) init(self geometry, kind Kind, t render.Target, o Options) error {
	if t == nil {
		return ErrMissingContext
	}
	b.self, b.kind, b.target = self, kind, t
	b.id = o.ID
	if b.id == "" {
		b.id = NewID()
	}
	b.name = o.Name
	b.fill = orString(o.FillColor, DefaultFillColor)
	b.stroke = orString(o.StrokeColor, DefaultStrokeColor)
	b.lineWidth = o.LineWidth
	if b.lineWidth <= 0 {
		b.lineWidth = 1
	}
	b.nameStyle = AreaNameStyle{
		FontSize:  o.AreaName.FontSize,
		TextColor: orString(o.AreaName.TextColor, DefaultAreaNameColor),
	}
	if b.nameStyle.FontSize <= 0 {
		b.nameStyle.FontSize = DefaultAreaNameSize
	}
	b.texture = o.Texture
	b.z = o.ZIndex
	b.handle = -1
	return nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (b *base) ID() string            { return b.id }
func (b *base) Kind() Kind            { return b.kind }
func (b *base) Target() render.Target { return b.target }
func (b *base) Bus() *Bus             { return &b.bus }
func (b *base) ZIndex() int           { return b.z }
func (b *base) SetZIndex(z int)       { b.z = z }
func (b *base) Texture() Texture      { return b.texture }
func (b *base) State() State          { return b.state }

func (b *base) Props() Props {
	return Props{Name: b.name, FillColor: b.fill, StrokeColor: b.stroke, LineWidth: b.lineWidth, AreaName: b.nameStyle}
}

func (b *base) SetName(name string) {
	b.name = name
	b.bus.Publish(Event{Topic: TopicNameChange, Shape: b.self, Name: name})
}

func (b *base) SetFillColor(c string)   { b.fill = c; b.redraw() }
func (b *base) SetStrokeColor(c string) { b.stroke = c; b.redraw() }
func (b *base) SetTexture(t Texture)    { b.texture = t; b.redraw() }

func (b *base) SetLineWidth(w float64) {
	if w > 0 {
		b.lineWidth = w
	}
	b.redraw()
}

func (b *base) SetAreaNameColor(c string) { b.nameStyle.TextColor = c; b.redraw() }

func (b *base) SetAreaNameSize(size float64) {
	if size > 0 {
		b.nameStyle.FontSize = size
	}
	b.redraw()
}

func (b *base) redraw() { b.bus.Publish(Event{Topic: TopicRedraw, Shape: b.self}) }

func (b *base) positionChanged() {
	b.bus.Publish(Event{Topic: TopicPositionChanged, Shape: b.self, Points: b.self.Points()})
}

func (b *base) fillStyle() vector.Fill {
	return vector.Fill{Color: vector.ColorOr(b.fill, vector.Transparent), Enabled: true}
}

func (b *base) strokeStyle() vector.Stroke {
	return vector.Stroke{Color: vector.ColorOr(b.stroke, vector.Black), Width: b.lineWidth, Enabled: true}
}

// paint fills then strokes p with the shape style.
func (b *base) paint(p *vector.Path, rule vector.FillRule) {
	f := b.fillStyle()
	f.Rule = rule
	b.target.FillPath(p, f)
	b.target.StrokePath(p, b.strokeStyle())
}

func (b *base) DrawBounding(c vector.Color) {
	b.target.StrokePath(vector.RectPath(b.self.BoundingBox()), vector.Stroke{Color: c, Width: 1, Enabled: true})
}

// drawHandles paints white squares with a blue outline.
func (b *base) drawHandles(hs []vector.Pt, size float64) {
	for _, h := range hs {
		box := vector.RectPath(vector.HandleBox(h, size))
		b.target.FillPath(box, vector.Fill{Color: handleFill, Enabled: true})
		b.target.StrokePath(box, vector.Stroke{Color: selectionColor, Width: 2, Enabled: true})
	}
}

// PointerDown starts a resize when p is on a handle, otherwise a drag when p
// hits the shape.
func (b *base) PointerDown(p vector.Pt) {
	b.last = p
	if i := vector.HandleAt(p, b.self.handles(), b.self.handleSize()); i >= 0 {
		b.state, b.handle = StateResizing, i
		return
	}
	if b.self.Contains(p) {
		b.state = StateDragging
	}
}

func (b *base) PointerMove(p vector.Pt, ic Interaction) Cursor {
	dx, dy := p.X-b.last.X, p.Y-b.last.Y
	switch b.state {
	case StateDragging:
		b.self.Move(dx, dy)
	case StateResizing:
		b.self.resize(b.handle, dx, dy)
		b.positionChanged()
	}
	b.last = p
	return b.cursorAt(p, ic)
}

// PointerUp ends any transform.
func (b *base) PointerUp() {
	b.state, b.handle = StateIdle, -1
}

func (b *base) cursorAt(p vector.Pt, ic Interaction) Cursor {
	if ic.Drawing {
		return CursorCrosshair
	}
	if i := vector.HandleAt(p, b.self.handles(), b.self.handleSize()); i >= 0 {
		return b.self.handleCursor(i)
	}
	if b.self.Contains(p) {
		return CursorMove
	}
	return CursorDefault
}

// cornerCursor picks the diagonal resize cursor for a handle relative to c.
func cornerCursor(h, c vector.Pt) Cursor {
	switch {
	case h.X <= c.X && h.Y <= c.Y:
		return CursorNWResize
	case h.Y <= c.Y:
		return CursorNEResize
	case h.X <= c.X:
		return CursorSWResize
	default:
		return CursorSEResize
	}
}

func clonePts(pts []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, len(pts))
	copy(out, pts)
	return out
}
