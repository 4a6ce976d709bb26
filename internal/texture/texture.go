/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package texture loads images and paints them inside shapes. Decoded images
// are cached by source for the lifetime of a Provider, so a scene decodes each
// image once no matter how many shapes or frames use it.
package texture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"annotcanvas/internal/log"
	"annotcanvas/internal/shape"
	"annotcanvas/internal/vector"
)

// Scale modes.
const (
	ScaleCover   = "cover"
	ScaleContain = "contain"
	ScaleNone    = "none"

	RepeatTile = "repeat"
)

// ErrNoSource is returned for an empty image source.
var ErrNoSource = errors.New("texture: empty source")

// Provider resolves texture sources to images. It is safe for concurrent use;
// Prepare runs from the render resolve phase on one goroutine per shape.
type Provider struct {
	dir    string
	smooth bool
	log    *slog.Logger

	mu     sync.RWMutex
	images map[string]image.Image
}

type Option func(*Provider)

// WithSmoothing picks Lanczos resampling instead of nearest neighbour.
func WithSmoothing(on bool) Option { return func(p *Provider) { p.smooth = on } }

func WithLogger(l *slog.Logger) Option { return func(p *Provider) { p.log = l } }

// New returns a Provider resolving relative sources against dir.
func New(dir string, opts ...Option) *Provider {
	p := &Provider{dir: dir, smooth: true, images: make(map[string]image.Image)}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = log.WithComponent("texture")
	}
	return p
}

func (p *Provider) filter() imaging.ResampleFilter {
	if p.smooth {
		return imaging.Lanczos
	}
	return imaging.NearestNeighbor
}

func (p *Provider) cached(src string) (image.Image, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	img, ok := p.images[src]
	return img, ok
}

// Cached reports whether src has already been decoded.
func (p *Provider) Cached(src string) bool {
	_, ok := p.cached(src)
	return ok
}

// Load returns the decoded image for src, reading it on first use. Sources are
// file paths (relative ones resolve against the provider directory) or
// base64 data URIs.
func (p *Provider) Load(src string) (image.Image, error) {
	if src == "" {
		return nil, ErrNoSource
	}
	if img, ok := p.cached(src); ok {
		return img, nil
	}
	img, err := p.decode(src)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.images[src] = img
	p.mu.Unlock()
	p.log.Debug("texture loaded", slog.String("src", shortSrc(src)),
		slog.Int("w", img.Bounds().Dx()), slog.Int("h", img.Bounds().Dy()))
	return img, nil
}

func (p *Provider) decode(src string) (image.Image, error) {
	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 || !strings.Contains(src[:comma], ";base64") {
			return nil, fmt.Errorf("texture: unsupported data uri")
		}
		raw, err := base64.StdEncoding.DecodeString(src[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("texture: decode data uri: %w", err)
		}
		img, err := imaging.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("texture: decode data uri: %w", err)
		}
		return img, nil
	}
	path := src
	if !filepath.IsAbs(path) && p.dir != "" {
		path = filepath.Join(p.dir, path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", src, err)
	}
	return img, nil
}

func shortSrc(src string) string {
	if len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}

// Prepare decodes the texture of s ahead of painting. Shapes without a
// texture are a no-op.
func (p *Provider) Prepare(ctx context.Context, s shape.Shape) error {
	tex := s.Texture()
	if !tex.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.Load(tex.Src)
	return err
}

// ApplyTo paints the texture of s on the shape's target, clipped to the shape
// outline.
func (p *Provider) ApplyTo(s shape.Shape) error {
	tex := s.Texture()
	if !tex.Enabled() {
		return nil
	}
	img, err := p.Load(tex.Src)
	if err != nil {
		return err
	}
	bb := s.BoundingBox()
	w, h := int(math.Ceil(bb.W)), int(math.Ceil(bb.H))
	if w <= 0 || h <= 0 {
		return nil
	}
	var (
		out image.Image
		at  = bb.Min()
	)
	if tex.Repeat == RepeatTile {
		out = tile(img, w, h)
	} else {
		out, at = p.scaled(img, tex.Scale, bb, w, h)
	}
	tg := s.Target()
	tg.Save()
	s.Clip()
	tg.DrawImage(out, at)
	tg.Restore()
	return nil
}

// scaled fits img into the w x h box at bb for the given mode.
func (p *Provider) scaled(img image.Image, mode string, bb vector.Rect, w, h int) (image.Image, vector.Pt) {
	switch mode {
	case ScaleContain:
		// imaging.Fit never enlarges, contain does
		sb := img.Bounds()
		if sb.Empty() {
			return img, bb.Min()
		}
		ratio := math.Min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
		fw := max(1, int(math.Round(float64(sb.Dx())*ratio)))
		fh := max(1, int(math.Round(float64(sb.Dy())*ratio)))
		fit := imaging.Resize(img, fw, fh, p.filter())
		return fit, vector.Pt{
			X: bb.X + float64(w-fw)/2,
			Y: bb.Y + float64(h-fh)/2,
		}
	case ScaleNone:
		return imaging.Resize(img, w, h, p.filter()), bb.Min()
	default:
		return imaging.Fill(img, w, h, imaging.Center, p.filter()), bb.Min()
	}
}

// tile repeats img from the top-left corner over a w x h canvas.
func tile(img image.Image, w, h int) image.Image {
	dst := imaging.New(w, h, vector.Transparent)
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}
	for y := 0; y < h; y += b.Dy() {
		for x := 0; x < w; x += b.Dx() {
			dst = imaging.Paste(dst, img, image.Pt(x, y))
		}
	}
	return dst
}

// Image returns src covering a w x h area, for canvas backgrounds.
func (p *Provider) Image(ctx context.Context, src string, w, h int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := p.Load(src)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return img, nil
	}
	return imaging.Fill(img, w, h, imaging.Center, p.filter()), nil
}
