/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"annotcanvas/internal/scene"
)

const (
	// DocumentVersion is the current on-disk format version.
	DocumentVersion = 1
	BackupsDirName  = "backups"
	DocumentExt     = ".scene.json"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported document version")
	ErrNoBackups          = errors.New("no backups found")
)

// Document is the on-disk form of a scene.
type Document struct {
	Version    int            `json:"version"`
	Name       string         `json:"name,omitempty"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background string         `json:"background,omitempty"`
	Shapes     []scene.Record `json:"shapes"`
}

// Capture snapshots the controller state into a document.
func Capture(c *scene.Controller, name string) Document {
	w, h := c.Size()
	shapes := c.Records()
	if shapes == nil {
		shapes = []scene.Record{}
	}
	return Document{
		Version:    DocumentVersion,
		Name:       name,
		Width:      w,
		Height:     h,
		Background: c.Background(),
		Shapes:     shapes,
	}
}

// Apply loads the document into c. Shapes are appended to whatever c holds;
// an empty background leaves the controller's background alone.
func (d Document) Apply(c *scene.Controller) error {
	if d.Width > 0 && d.Height > 0 {
		c.SetSize(d.Width, d.Height)
	}
	if d.Background != "" {
		if err := c.SetBackground(d.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	if d.Shapes == nil {
		return nil
	}
	return c.SetDataList(d.Shapes)
}

// Handle keeps track of a document loaded from or saved to disk.
type Handle struct {
	Path string
	Doc  Document
}

// BackupsDir is the backups folder for the document at path.
func BackupsDir(path string) string { return filepath.Join(filepath.Dir(path), BackupsDirName) }

// Create writes doc to path, creating parent directories as needed.
func Create(path string, doc Document) (*Handle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("document path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	h := &Handle{Path: path, Doc: doc}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a document. If the file cannot be read or parsed, the latest
// backup is tried instead.
func Open(path string) (*Handle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		doc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
		}
		return &Handle{Path: path, Doc: *doc}, nil
	}
	doc, perr := decode(b)
	if perr != nil {
		if errors.Is(perr, ErrUnsupportedVersion) {
			return nil, perr
		}
		bdoc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse document: %w; backup attempt: %v", perr, berr)
		}
		return &Handle{Path: path, Doc: *bdoc}, nil
	}
	return &Handle{Path: path, Doc: *doc}, nil
}

func decode(b []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if d.Version > DocumentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	return &d, nil
}

// Encode renders the document the way Save writes it.
func Encode(doc Document) ([]byte, error) {
	if doc.Shapes == nil {
		doc.Shapes = []scene.Record{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes h.Doc to h.Path with transactional semantics and a timestamped
// backup of the previous file (if present).
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if h.Path == "" {
		return errors.New("invalid Handle: missing path")
	}
	data, err := Encode(h.Doc)
	if err != nil {
		return err
	}

	bdir := BackupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.Path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), stamp))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	// to a temp file in the same directory, then rename over the target
	dir := filepath.Dir(h.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

// SaveAs writes the document to a new path and updates the handle.
func SaveAs(h *Handle, path string) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if path == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	h.Path = path
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document next to the backups
// without touching the document itself, and returns the snapshot path.
func AutosaveCrashSnapshot(h *Handle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("invalid Handle")
	}
	data, err := Encode(h.Doc)
	if err != nil {
		return "", err
	}
	bdir := BackupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.%s.crash", filepath.Base(h.Path), stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// Backups lists the backup files of the document at path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := BackupsDir(path)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func openFromLatestBackup(path string) (*Document, error) {
	candidates, err := Backups(path)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoBackups
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	d, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return d, nil
}
