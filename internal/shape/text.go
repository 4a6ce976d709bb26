/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"

	"annotcanvas/internal/render"
	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/vector"
)

const (
	DefaultFontSize     = 16
	DefaultFontFamily   = "Arial"
	DefaultTextAlign    = "left"
	DefaultTextBaseline = "alphabetic"
	DefaultTextColor    = "black"

	// rotationHandleOffset is the distance of the rotation handle above the box.
	rotationHandleOffset = 10
	// rotationHandleRadius is the hit radius of the rotation handle.
	rotationHandleRadius = 5
	// textPadding pads the bounding box on each side.
	textPadding = 2
)

// TextOptions configure a Text shape. Zero values take defaults.
type TextOptions struct {
	Options
	Text         string
	FontSize     float64
	FontFamily   string
	TextAlign    string
	TextBaseline string
	TextColor    string
	Rotation     float64
}

// TextProps is a snapshot of the text-specific fields.
type TextProps struct {
	Text         string
	FontSize     float64
	FontFamily   string
	TextAlign    string
	TextBaseline string
	TextColor    string
	Rotation     float64
}

// Text is a single-line label that can be rotated about its center. The anchor
// passed at construction is the vertical middle of the text; the stored y sits
// half a font size above it.
type Text struct {
	base
	x, y  float64
	props TextProps
}

func NewText(t render.Target, anchor vector.Pt, o TextOptions) (*Text, error) {
	o.StrokeColor = orString(o.StrokeColor, "black")
	txt := &Text{props: TextProps{
		Text:         o.Text,
		FontSize:     o.FontSize,
		FontFamily:   orString(o.FontFamily, DefaultFontFamily),
		TextAlign:    orString(o.TextAlign, DefaultTextAlign),
		TextBaseline: orString(o.TextBaseline, DefaultTextBaseline),
		TextColor:    orString(o.TextColor, DefaultTextColor),
		Rotation:     vector.NormalizeDegrees(o.Rotation),
	}}
	if txt.props.FontSize <= 0 {
		txt.props.FontSize = DefaultFontSize
	}
	if err := txt.init(txt, KindText, t, o.Options); err != nil {
		return nil, err
	}
	txt.x = anchor.X
	txt.y = anchor.Y - txt.props.FontSize/2
	return txt, nil
}

func (t *Text) TextProps() TextProps { return t.props }
func (t *Text) Rotation() float64    { return t.props.Rotation }

// SetRotation sets the angle in degrees and publishes rotationChanged.
func (t *Text) SetRotation(deg float64) {
	t.props.Rotation = vector.NormalizeDegrees(deg)
	t.bus.Publish(Event{Topic: TopicRotationChanged, Shape: t, Rotation: t.props.Rotation})
}

// SetText replaces the content and requests a redraw.
func (t *Text) SetText(s string) { t.props.Text = s; t.redraw() }

func (t *Text) SetTextColor(c string) { t.props.TextColor = c; t.redraw() }

// Points is the anchor the text was placed at.
func (t *Text) Points() []vector.Pt {
	return []vector.Pt{{X: t.x, Y: t.y + t.props.FontSize/2}}
}

func (t *Text) font() textlayout.FontSpec {
	return textlayout.FontSpec{Family: t.props.FontFamily, SizePt: t.props.FontSize}
}

func (t *Text) textWidth() float64 { return t.target.MeasureText(t.props.Text, t.font()) }

// BoundingBox is the unrotated box around the text, padded by two pixels.
// It is shifted left by the alignment anchor the same way the glyphs are.
func (t *Text) BoundingBox() vector.Rect {
	w := t.textWidth()
	return vector.Rect{
		X: t.x - render.AnchorX(t.props.TextAlign)*w,
		Y: t.y - textPadding,
		W: w + 2*textPadding,
		H: t.props.FontSize + 2*textPadding,
	}
}

// Center is the pivot used for rotation.
func (t *Text) Center() vector.Pt {
	bb := t.BoundingBox()
	return vector.Pt{X: bb.X + bb.W/2, Y: t.y + bb.H/2}
}

// corners of the text box rotated about the center.
func (t *Text) corners() []vector.Pt {
	c := t.Center()
	w, h := t.textWidth(), t.props.FontSize
	out := make([]vector.Pt, 0, 4)
	for _, d := range []vector.Pt{{X: -w / 2, Y: -h / 2}, {X: w / 2, Y: -h / 2}, {X: w / 2, Y: h / 2}, {X: -w / 2, Y: h / 2}} {
		out = append(out, vector.RotatePoint(c.Add(d.X, d.Y), c, t.props.Rotation))
	}
	return out
}

// rotationHandle returns the unrotated handle position above the box.
func (t *Text) rotationHandle() vector.Pt {
	bb := t.BoundingBox()
	return vector.Pt{X: bb.X + bb.W/2, Y: bb.Y - rotationHandleOffset}
}

// OnRotationHandle reports whether p is within reach of the rotated handle.
func (t *Text) OnRotationHandle(p vector.Pt) bool {
	h := vector.RotatePoint(t.rotationHandle(), t.Center(), t.props.Rotation)
	return vector.Dist(p, h) <= rotationHandleRadius
}

func (t *Text) inTextArea(p vector.Pt) bool { return vector.PointInPolygon(p, t.corners()) }

func (t *Text) Contains(p vector.Pt) bool { return t.inTextArea(p) || t.OnRotationHandle(p) }

func (t *Text) Move(dx, dy float64) {
	t.x += dx
	t.y += dy
	t.positionChanged()
}

func (t *Text) Draw(DrawContext) {
	c := t.Center()
	t.target.Save()
	t.target.RotateAbout(t.props.Rotation, c)
	t.target.FillText(t.props.Text, vector.Pt{X: t.x, Y: t.y}, render.TextStyle{
		Font:     t.font(),
		Color:    vector.ColorOr(t.props.TextColor, vector.Black),
		Align:    t.props.TextAlign,
		Baseline: t.props.TextBaseline,
	})
	t.target.Restore()
}

// DrawAreaName is a no-op; the text is its own label.
func (t *Text) DrawAreaName() {}

// DrawSelection draws the rotated dashed box, the rotation handle and corner handles.
func (t *Text) DrawSelection() {
	bb := t.BoundingBox()
	t.target.Save()
	t.target.RotateAbout(t.props.Rotation, t.Center())
	t.target.StrokePath(vector.RectPath(bb), vector.Stroke{Color: selectionColor, Width: 1, Dash: []float64{5, 5}, Enabled: true})
	h := t.rotationHandle()
	t.target.FillPath(vector.RectPath(vector.R(h.X, h.Y, rotationHandleRadius, rotationHandleRadius)), vector.Fill{Color: selectionColor, Enabled: true})
	t.drawHandles(bb.Corners(), HandleSize)
	t.target.Restore()
}

func (t *Text) Clip() { t.target.ClipPath(vector.PolyPath(t.corners(), true)) }

func (t *Text) handles() []vector.Pt { return nil }
func (t *Text) handleSize() float64  { return HandleSize }
func (t *Text) resize(int, float64, float64) {}
func (t *Text) handleCursor(int) Cursor { return CursorEWResize }

func (t *Text) PointerDown(p vector.Pt) {
	t.last = p
	switch {
	case t.OnRotationHandle(p):
		t.state = StateRotating
	case t.inTextArea(p):
		t.state = StateDragging
	}
}

func (t *Text) PointerMove(p vector.Pt, ic Interaction) Cursor {
	switch t.state {
	case StateDragging:
		t.Move(p.X-t.last.X, p.Y-t.last.Y)
	case StateRotating:
		c, h := t.Center(), t.rotationHandle()
		start := math.Atan2(h.Y-c.Y, h.X-c.X)
		cur := math.Atan2(p.Y-c.Y, p.X-c.X)
		t.SetRotation(vector.Degrees(cur - start))
	}
	t.last = p
	switch {
	case ic.Drawing:
		return CursorCrosshair
	case t.OnRotationHandle(p):
		return CursorEWResize
	case t.Contains(p):
		return CursorMove
	default:
		return CursorDefault
	}
}
