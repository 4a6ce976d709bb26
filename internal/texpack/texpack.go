/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package texpack moves texture images between directories as zip archives.
package texpack

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	applog "annotcanvas/internal/log"
	"annotcanvas/internal/version"
)

// ManifestName is the archive entry describing the pack.
const ManifestName = "texpack.manifest.txt"

// maxEntrySize bounds a single image read from a pack.
const maxEntrySize = 32 << 20

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// IsImage reports whether name has an image extension textures accept.
func IsImage(name string) bool { return imageExts[strings.ToLower(filepath.Ext(name))] }

// Export zips every image under dir into destZip, keeping relative paths.
// Other files are ignored. It returns the number of images written.
func Export(dir, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("texpack"), "export").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("texture dir is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("zip path is required")
	}
	if st, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("texture dir: %w", err)
	} else if !st.IsDir() {
		return 0, fmt.Errorf("texture dir: %s is not a directory", dir)
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("AnnotCanvas texture pack\nCreated: %s\nBy: annotcanvas %s\n",
		time.Now().Format(time.RFC3339), version.String())
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImage(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return added, fmt.Errorf("build zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("texture pack exported", slog.Int("files", added), slog.String("zip", destZip))
	return added, nil
}

// Install extracts the images of packZip into dir. Existing files are kept,
// entries that do not decode as images or that would land outside dir are
// skipped. It returns the number of files written.
func Install(packZip, dir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("texpack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("texture dir is required")
	}
	if strings.TrimSpace(packZip) == "" {
		return 0, errors.New("zip path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure texture dir: %w", err)
	}
	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if f.FileInfo().IsDir() || name == ManifestName || !IsImage(name) {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			l.Warn("skip entry outside the texture dir", slog.String("entry", f.Name))
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
			l.Warn("skip undecodable image", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return installed, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("texture pack installed", slog.Int("files", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, errors.New("entry too large")
	}
	return data, nil
}
