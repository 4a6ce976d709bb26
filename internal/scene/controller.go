/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene is the annotation controller. It owns the shapes and their
// persisted records, runs the drawing-mode state machine and selection, keeps
// z-order and repaints the render target after every change.
package scene

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"slices"

	"annotcanvas/internal/log"
	"annotcanvas/internal/render"
	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

// TopicShapeClick is published when a press lands on a shape.
const TopicShapeClick shape.Topic = "shapeClick"

// Mode is the drawing-mode state.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeArmed
	ModeAccumulating
)

func (m Mode) String() string {
	switch m {
	case ModeArmed:
		return "armed"
	case ModeAccumulating:
		return "accumulating"
	default:
		return "idle"
	}
}

// Controller owns a scene. It is not safe for concurrent use; input and API
// calls come from one goroutine.
type Controller struct {
	target   render.Target
	log      *slog.Logger
	entry    TextEntry
	textures Textures

	shapes  []shape.Shape // insertion order
	records []Record      // parallel to shapes
	maxZ    int

	mode      Mode
	drawType  DrawType
	drawOpts  DrawOptions
	points    []vector.Pt
	pointer   vector.Pt
	prompting bool

	selected shape.Shape
	cursor   shape.Cursor

	showNames  bool
	optimize   bool
	disabled   bool
	tooltip    bool
	sticky     bool
	bounding   *vector.Color
	background string
	bgColor    *vector.Color
	bgImage    bool
	bgCache    image.Image
	holdPaint  int
	dirty      bool

	listeners map[shape.Topic][]func(shape.Event)
}

// New creates a Controller painting on t.
func New(t render.Target, opts ...Option) (*Controller, error) {
	if t == nil {
		return nil, shape.ErrMissingContext
	}
	c := &Controller{
		target:    t,
		cursor:    shape.CursorDefault,
		listeners: make(map[shape.Topic][]func(shape.Event)),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = log.WithComponent("scene")
	}
	if err := c.SetBackground(c.background); err != nil {
		return nil, err
	}
	return c, nil
}

// On registers fn for a topic: shapeClick, positionChanged, nameChange,
// rotationChanged or redraw.
func (c *Controller) On(topic shape.Topic, fn func(shape.Event)) {
	c.listeners[topic] = append(c.listeners[topic], fn)
}

func (c *Controller) emit(ev shape.Event) {
	for _, fn := range c.listeners[ev.Topic] {
		fn(ev)
	}
}

// OnShapeEvent mirrors the shape into its record, forwards the event to the
// controller listeners and repaints.
func (c *Controller) OnShapeEvent(ev shape.Event) {
	if ev.Shape != nil {
		c.sync(ev.Shape)
	}
	c.emit(ev)
	c.repaint()
}

// attach adds s with its record and subscribes to its bus once.
func (c *Controller) attach(s shape.Shape) {
	c.shapes = append(c.shapes, s)
	c.records = append(c.records, recordOf(s))
	s.Bus().Observe(c)
}

func (c *Controller) indexOf(id string) int {
	return slices.IndexFunc(c.shapes, func(s shape.Shape) bool { return s.ID() == id })
}

func (c *Controller) sync(s shape.Shape) {
	if i := c.indexOf(s.ID()); i >= 0 {
		c.records[i] = recordOf(s)
	}
}

// Shapes returns the shapes in paint order, bottom first.
func (c *Controller) Shapes() []shape.Shape { return c.ordered() }

// ordered is a stable ascending sort by z-index; ties keep insertion order.
func (c *Controller) ordered() []shape.Shape {
	out := slices.Clone(c.shapes)
	slices.SortStableFunc(out, func(a, b shape.Shape) int { return a.ZIndex() - b.ZIndex() })
	return out
}

// hitOrder is the reverse of the paint order: topmost first.
func (c *Controller) hitOrder() []shape.Shape {
	out := c.ordered()
	slices.Reverse(out)
	return out
}

// Records returns a copy of the persisted records in insertion order.
func (c *Controller) Records() []Record {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}
	return out
}

// ShapeByID looks a shape up by id.
func (c *Controller) ShapeByID(id string) (shape.Shape, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.shapes[i], true
	}
	return nil, false
}

func (c *Controller) Selected() shape.Shape { return c.selected }
func (c *Controller) Mode() Mode            { return c.mode }
func (c *Controller) DrawType() DrawType    { return c.drawType }
func (c *Controller) Cursor() shape.Cursor  { return c.cursor }
func (c *Controller) Len() int              { return len(c.shapes) }
func (c *Controller) MaxZIndex() int        { return c.maxZ }

// Pending returns the points of the shape being drawn.
func (c *Controller) Pending() []vector.Pt { return slices.Clone(c.points) }

func (c *Controller) Size() (w, h int) { return c.target.Size() }

// SetSize resizes the target and repaints.
func (c *Controller) SetSize(w, h int) {
	c.target.Resize(w, h)
	c.bgCache = nil
	c.repaint()
}

// ShowAreaNames toggles the labels inside area shapes.
func (c *Controller) ShowAreaNames(on bool) {
	c.showNames = on
	c.repaint()
}

// OptimizeView paints shapes translucent so the background shows through.
func (c *Controller) OptimizeView(on bool) {
	c.optimize = on
	c.repaint()
}

// SetDisabled turns the canvas read-only: drawing input is ignored and
// presses only report shapeClick.
func (c *Controller) SetDisabled(on bool) {
	c.disabled = on
	if on {
		c.selected = nil
	}
	c.repaint()
}

func (c *Controller) Disabled() bool { return c.disabled }

// ShowBounding outlines every shape's bounding box in color.
func (c *Controller) ShowBounding(color string) error {
	col, err := vector.ParseColor(color)
	if err != nil {
		return fmt.Errorf("%w: bounding color: %w", ErrInvalidInput, err)
	}
	c.bounding = &col
	c.repaint()
	return nil
}

// HideBounding removes the bounding overlay.
func (c *Controller) HideBounding() {
	c.bounding = nil
	c.repaint()
}

// SetBackground sets a color or an image source painted under the shapes. An
// empty value clears it. Images need a texture provider.
func (c *Controller) SetBackground(v string) error {
	c.background, c.bgColor, c.bgImage, c.bgCache = v, nil, false, nil
	if v == "" {
		c.repaint()
		return nil
	}
	if col, err := vector.ParseColor(v); err == nil {
		c.bgColor = &col
		c.repaint()
		return nil
	}
	if c.textures == nil {
		c.background = ""
		return fmt.Errorf("%w: background %q is neither a color nor a loadable image", ErrInvalidInput, v)
	}
	c.bgImage = true
	c.repaint()
	return nil
}

func (c *Controller) Background() string { return c.background }

// Export encodes the current frame when the target supports it.
func (c *Controller) Export(w io.Writer) error {
	enc, ok := c.target.(render.Encoder)
	if !ok {
		return ErrNotExportable
	}
	return enc.Encode(w)
}

// Image returns the PNG bytes of the last raster frame.
func (c *Controller) Image() ([]byte, error) {
	r, ok := c.target.(*render.Raster)
	if !ok {
		return nil, ErrNotExportable
	}
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// repaint renders synchronously, logging failures. Input handlers batch
// nested repaints with hold/release.
func (c *Controller) repaint() {
	if c.holdPaint > 0 {
		c.dirty = true
		return
	}
	if err := c.Render(context.Background()); err != nil {
		c.log.Error("repaint failed", slog.Any("err", err))
	}
}

func (c *Controller) hold() { c.holdPaint++ }

func (c *Controller) release() {
	c.holdPaint--
	if c.holdPaint == 0 && c.dirty {
		c.dirty = false
		c.repaint()
	}
}
