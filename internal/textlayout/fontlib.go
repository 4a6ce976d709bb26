/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores loaded OpenType fonts mapped by lower-cased family name.
// Families that were never loaded resolve to the library default.
type FontLibrary struct {
	fonts   map[string]*opentype.Font
	Default *opentype.Font
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[string]*opentype.Font)} }

// NewDefaultFontLibrary returns a library whose default is the bundled Go Regular face.
func NewDefaultFontLibrary() (*FontLibrary, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	fl := NewFontLibrary()
	fl.fonts["go"] = f
	fl.Default = f
	return fl, nil
}

// LoadTTF loads a font file into the library under the given family.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	if fl.fonts == nil {
		fl.fonts = make(map[string]*opentype.Font)
	}
	fl.fonts[strings.ToLower(family)] = f
	if fl.Default == nil {
		fl.Default = f
	}
	return nil
}

func (fl *FontLibrary) find(family string) *opentype.Font {
	if fl == nil {
		return nil
	}
	if f, ok := fl.fonts[strings.ToLower(family)]; ok {
		return f
	}
	return fl.Default
}

type faceKey struct {
	family string
	size   float64
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Faces are cached per family and size; opentype faces are not safe for concurrent
// use, so measuring is serialized.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func (p *OTProvider) face(spec FontSpec) (font.Face, bool) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	f := p.Lib.find(spec.Family)
	if f == nil {
		return nil, false
	}
	key := faceKey{family: strings.ToLower(spec.Family), size: spec.SizePt}
	if p.faces == nil {
		p.faces = make(map[faceKey]font.Face)
	}
	if face, ok := p.faces[key]; ok {
		return face, true
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, false
	}
	p.faces[key] = face
	return face, true
}

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	p.mu.Lock()
	face, ok := p.face(spec)
	p.mu.Unlock()
	if ok {
		m := face.Metrics()
		return face, Metrics{
			Ascent:  float64(m.Ascent.Round()),
			Descent: float64(m.Descent.Round()),
			LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
		}
	}
	return p.fallback().Resolve(spec)
}

func (p *OTProvider) Width(text string, spec FontSpec) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if face, ok := p.face(spec); ok {
		return advance(&font.Drawer{Face: face}, text)
	}
	return p.fallback().Width(text, spec)
}

func (p *OTProvider) fallback() Provider {
	if p.Fallback == nil {
		return BasicProvider{}
	}
	return p.Fallback
}
