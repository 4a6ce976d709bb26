/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"annotcanvas/internal/render"
	"annotcanvas/internal/scene"
	"annotcanvas/internal/storage"
	"annotcanvas/internal/textlayout"
	"annotcanvas/internal/texture"
)

// fonts builds the text provider: the configured font file, or the bundled Go face.
func (a *app) fonts() (textlayout.Provider, error) {
	if path := a.cfg.Render.FontFile; path != "" {
		lib := textlayout.NewFontLibrary()
		family := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := lib.LoadTTF(family, path); err != nil {
			return nil, err
		}
		return &textlayout.OTProvider{Lib: lib, Fallback: textlayout.BasicProvider{}}, nil
	}
	lib, err := textlayout.NewDefaultFontLibrary()
	if err != nil {
		return nil, err
	}
	return &textlayout.OTProvider{Lib: lib, Fallback: textlayout.BasicProvider{}}, nil
}

// textures resolves image sources relative to the configured directory or,
// without one, to the document's directory.
func (a *app) textures(docPath string) *texture.Provider {
	dir := a.cfg.Render.TextureDir
	if dir == "" {
		dir = filepath.Dir(docPath)
	}
	return texture.New(dir, texture.WithSmoothing(a.cfg.Render.TextureSmooth))
}

// docName is the document's display name, falling back to the file name.
func docName(h *storage.Handle) string {
	if h.Doc.Name != "" {
		return h.Doc.Name
	}
	return strings.TrimSuffix(filepath.Base(h.Path), storage.DocumentExt)
}

// newCanvas builds a controller for format sized by the document (or the
// config when the document has no size) and loads the document into it.
// Malformed records are logged and skipped.
func (a *app) newCanvas(h *storage.Handle, format string, extra ...scene.Option) (*scene.Controller, render.Target, error) {
	w, ht := h.Doc.Width, h.Doc.Height
	if w <= 0 || ht <= 0 {
		w, ht = a.cfg.Canvas.Width, a.cfg.Canvas.Height
	}
	fonts, err := a.fonts()
	if err != nil {
		return nil, nil, err
	}
	target, err := render.NewForFormat(format, w, ht, fonts)
	if err != nil {
		return nil, nil, err
	}
	opts := []scene.Option{
		scene.WithConfig(a.cfg.Canvas),
		scene.WithTextures(a.textures(h.Path)),
		scene.WithLogger(a.log.With(slog.String("doc", docName(h)))),
	}
	c, err := scene.New(target, append(opts, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	if err := h.Doc.Apply(c); err != nil {
		if !errors.Is(err, scene.ErrMalformedRecord) {
			return nil, nil, fmt.Errorf("load %s: %w", h.Path, err)
		}
		a.log.Warn("document has malformed records", slog.String("path", h.Path), slog.Any("err", err))
	}
	return c, target, nil
}
