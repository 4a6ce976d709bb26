/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

// Point is a record coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type AreaNameStyle struct {
	FontSize  float64 `json:"fontSize,omitempty"`
	TextColor string  `json:"textColor,omitempty"`
}

type TextureRef struct {
	Src    string `json:"src"`
	Repeat string `json:"repeat,omitempty"`
	Scale  string `json:"scale,omitempty"`
}

// Record is the persisted form of one shape.
type Record struct {
	UUID          string         `json:"uuid"`
	DrawType      DrawType       `json:"drawType"`
	Name          string         `json:"name,omitempty"`
	Text          string         `json:"text,omitempty"`
	List          []Point        `json:"list"`
	StrokeColor   string         `json:"strokeColor,omitempty"`
	FillColor     string         `json:"fillColor,omitempty"`
	LineWidth     float64        `json:"lineWidth,omitempty"`
	ZIndex        int            `json:"zIndex"`
	AreaNameStyle *AreaNameStyle `json:"areaNameStyle,omitempty"`
	Rotation      float64        `json:"rotation,omitempty"`
	FontSize      float64        `json:"fontSize,omitempty"`
	TextColor     string         `json:"textColor,omitempty"`
	FontFamily    string         `json:"fontFamily,omitempty"`
	TextAlign     string         `json:"textAlign,omitempty"`
	TextBaseline  string         `json:"textBaseline,omitempty"`
	Texture       *TextureRef    `json:"texture,omitempty"`
}

func (r Record) clone() Record {
	r.List = slices.Clone(r.List)
	if r.AreaNameStyle != nil {
		a := *r.AreaNameStyle
		r.AreaNameStyle = &a
	}
	if r.Texture != nil {
		t := *r.Texture
		r.Texture = &t
	}
	return r
}

// Points converts the list to geometry points.
func (r Record) Points() []vector.Pt {
	out := make([]vector.Pt, len(r.List))
	for i, p := range r.List {
		out[i] = vector.Pt{X: p.X, Y: p.Y}
	}
	return out
}

func toPoints(pts []vector.Pt) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}

// recordOf snapshots a shape.
func recordOf(s shape.Shape) Record {
	p := s.Props()
	r := Record{
		UUID:          s.ID(),
		DrawType:      DrawType(s.Kind()),
		Name:          p.Name,
		List:          toPoints(s.Points()),
		StrokeColor:   p.StrokeColor,
		FillColor:     p.FillColor,
		LineWidth:     p.LineWidth,
		ZIndex:        s.ZIndex(),
		AreaNameStyle: &AreaNameStyle{FontSize: p.AreaName.FontSize, TextColor: p.AreaName.TextColor},
	}
	if tex := s.Texture(); tex.Enabled() {
		r.Texture = &TextureRef{Src: tex.Src, Repeat: tex.Repeat, Scale: tex.Scale}
	}
	if t, ok := s.(*shape.Text); ok {
		tp := t.TextProps()
		r.Text = tp.Text
		r.Rotation = tp.Rotation
		r.FontSize = tp.FontSize
		r.TextColor = tp.TextColor
		r.FontFamily = tp.FontFamily
		r.TextAlign = tp.TextAlign
		r.TextBaseline = tp.TextBaseline
	}
	return r
}

// build constructs the shape a record describes on the controller target.
func (c *Controller) build(r Record) (shape.Shape, error) {
	o := shape.Options{
		ID:          r.UUID,
		Name:        r.Name,
		FillColor:   r.FillColor,
		StrokeColor: r.StrokeColor,
		LineWidth:   r.LineWidth,
		ZIndex:      r.ZIndex,
	}
	if r.AreaNameStyle != nil {
		o.AreaName = shape.AreaNameStyle{FontSize: r.AreaNameStyle.FontSize, TextColor: r.AreaNameStyle.TextColor}
	}
	if r.Texture != nil {
		o.Texture = shape.Texture{Src: r.Texture.Src, Repeat: r.Texture.Repeat, Scale: r.Texture.Scale}
	}
	if _, _, ok := arity(r.DrawType); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDrawType, r.DrawType)
	}
	if !validArity(r.DrawType, len(r.List)) {
		return nil, fmt.Errorf("%w: %s needs a different point count, got %d", ErrInvalidShape, r.DrawType, len(r.List))
	}
	pts := r.Points()
	switch r.DrawType {
	case DrawPolygon:
		return shape.NewPolygon(c.target, pts, o)
	case DrawRect:
		return shape.NewRect(c.target, pts[0], pts[1], o)
	case DrawCircle:
		return shape.NewCircle(c.target, pts[0], pts[1], o)
	case DrawLine:
		return shape.NewLine(c.target, pts[0], pts[1], o)
	default:
		return shape.NewText(c.target, pts[0], shape.TextOptions{
			Options:      o,
			Text:         r.Text,
			FontSize:     r.FontSize,
			FontFamily:   r.FontFamily,
			TextAlign:    r.TextAlign,
			TextBaseline: r.TextBaseline,
			TextColor:    r.TextColor,
			Rotation:     r.Rotation,
		})
	}
}

// SetDataList appends the shapes described by records and repaints once.
// Each record keeps its zIndex as given, zero and negative values included.
// Records with a duplicate uuid or a wrong point count are skipped; an
// unknown drawType stops the load. Shapes loaded before a failure stay. The
// returned error wraps ErrMalformedRecord when anything was skipped.
func (c *Controller) SetDataList(records []Record) error {
	if records == nil {
		return fmt.Errorf("%w: record list is nil", ErrInvalidInput)
	}
	c.hold()
	defer c.release()
	c.dirty = true

	var errs []error
	for i, r := range records {
		lg := c.log.With(slog.Int("index", i), slog.String("uuid", r.UUID),
			slog.String("drawType", string(r.DrawType)), slog.Int("points", len(r.List)))
		if r.UUID == "" {
			r.UUID = shape.NewID()
		} else if c.indexOf(r.UUID) >= 0 {
			lg.Warn("record skipped: duplicate uuid")
			errs = append(errs, fmt.Errorf("%w: record %d: duplicate uuid %s", ErrMalformedRecord, i, r.UUID))
			continue
		}
		s, err := c.build(r)
		if errors.Is(err, ErrInvalidDrawType) {
			lg.Error("bulk load aborted: unknown drawType", slog.Int("remaining", len(records)-i))
			errs = append(errs, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, i, err))
			break
		}
		if err != nil {
			lg.Warn("record skipped", slog.Any("err", err))
			errs = append(errs, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, i, err))
			continue
		}
		c.maxZ = max(c.maxZ, r.ZIndex)
		c.attach(s)
	}
	return errors.Join(errs...)
}

// LoadJSON decodes a JSON array of records and loads it with SetDataList.
func (c *Controller) LoadJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return fmt.Errorf("%w: expected a JSON array of records", ErrInvalidInput)
	}
	records := make([]Record, 0, len(raw))
	for i, m := range raw {
		var r Record
		if err := json.Unmarshal(m, &r); err != nil {
			c.log.Error("bulk load aborted: undecodable record", slog.Int("index", i), slog.Any("err", err))
			if loadErr := c.SetDataList(records); loadErr != nil {
				return errors.Join(loadErr, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, i, err))
			}
			return fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, i, err)
		}
		records = append(records, r)
	}
	return c.SetDataList(records)
}

// MarshalJSON encodes the records in insertion order.
func (c *Controller) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Records())
}
