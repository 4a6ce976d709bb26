/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"annotcanvas/internal/textlayout"
)

// NewForFormat returns a target for png, svg or pdf output.
func NewForFormat(format string, w, h int, fonts textlayout.Provider) (Target, error) {
	switch strings.ToLower(format) {
	case "png":
		return NewRaster(w, h, fonts), nil
	case "svg":
		return NewSVG(w, h, fonts), nil
	case "pdf":
		return NewPDF(w, h, "annotations"), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// FormatFromPath derives the output format from a file extension.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// WriteFile encodes the current frame of e into path, creating parent directories.
func WriteFile(path string, e Encoder) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := e.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
