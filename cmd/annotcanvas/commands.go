/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	applog "annotcanvas/internal/log"
	"annotcanvas/internal/render"
	"annotcanvas/internal/scene"
	"annotcanvas/internal/script"
	"annotcanvas/internal/storage"
	"annotcanvas/internal/texpack"
)

// defaultKeep is the number of snapshots draw keeps per document.
const defaultKeep = 20

func newFlags(name string) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	return set
}

func parseFlags(fs *flag.FlagSet, args []string, nargs int, what string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() != nargs {
		return fmt.Errorf("%w: %s needs %s", errUsage, fs.Name(), what)
	}
	return nil
}

func (a *app) cmdNew(args []string) error {
	fs := newFlags("new")
	w := fs.Int("width", a.cfg.Canvas.Width, "canvas width")
	h := fs.Int("height", a.cfg.Canvas.Height, "canvas height")
	bg := fs.String("background", a.cfg.Canvas.Background, "background color or image")
	name := fs.String("name", "", "document name")
	if err := parseFlags(fs, args, 1, "<doc>"); err != nil {
		return err
	}
	path := fs.Arg(0)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	abs, _ := filepath.Abs(path)
	a.log.Info("new document", slog.String("path", abs))
	doc := storage.Document{Name: *name, Width: *w, Height: *h, Background: *bg, Shapes: []scene.Record{}}
	if _, err := storage.Create(path, doc); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, "Created scene document at", abs)
	return nil
}

func (a *app) cmdInfo(args []string) error {
	fs := newFlags("info")
	if err := parseFlags(fs, args, 1, "<doc>"); err != nil {
		return err
	}
	h, err := storage.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	counts := map[scene.DrawType]int{}
	for _, r := range h.Doc.Shapes {
		counts[r.DrawType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	_, _ = fmt.Fprintf(a.out, "Document: %s\n", docName(h))
	_, _ = fmt.Fprintf(a.out, "Size: %dx%d\n", h.Doc.Width, h.Doc.Height)
	if h.Doc.Background != "" {
		_, _ = fmt.Fprintf(a.out, "Background: %s\n", h.Doc.Background)
	}
	_, _ = fmt.Fprintf(a.out, "Shapes: %d\n", len(h.Doc.Shapes))
	for _, t := range types {
		_, _ = fmt.Fprintf(a.out, "  %s: %d\n", t, counts[scene.DrawType(t)])
	}
	if baks, err := storage.Backups(h.Path); err == nil {
		_, _ = fmt.Fprintf(a.out, "Backups: %d\n", len(baks))
	}
	return nil
}

func (a *app) cmdValidate(args []string) error {
	fs := newFlags("validate")
	if err := parseFlags(fs, args, 1, "<doc>"); err != nil {
		return err
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := storage.Validate(data); err != nil {
		return err
	}
	h, err := storage.Open(path)
	if err != nil {
		return err
	}
	c, err := scene.New(render.NewRecorder(max(h.Doc.Width, 1), max(h.Doc.Height, 1)), scene.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := h.Doc.Apply(c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, _ = fmt.Fprintf(a.out, "%s: OK (%d shapes)\n", path, c.Len())
	return nil
}

func (a *app) cmdRender(ctx context.Context, args []string) error {
	fs := newFlags("render")
	format := fs.String("format", "", "png, svg or pdf (default: output extension, then config)")
	names := fs.Bool("names", a.cfg.Canvas.ShowAreaNames, "draw area names")
	optimize := fs.Bool("optimize", a.cfg.Canvas.OptimizeView, "draw shapes translucent")
	bounding := fs.String("bounding", "", "outline every shape in this color")
	if err := parseFlags(fs, args, 2, "<doc> and <out>"); err != nil {
		return err
	}
	docPath, out := fs.Arg(0), fs.Arg(1)
	f := *format
	if f == "" {
		f = render.FormatFromPath(out)
	}
	if f == "" {
		f = a.cfg.Render.Format
	}

	h, err := storage.Open(docPath)
	if err != nil {
		return err
	}
	a.sess.Handle = h
	ctx = applog.WithScene(ctx, docName(h))

	c, target, err := a.newCanvas(h, f)
	if err != nil {
		return err
	}
	c.ShowAreaNames(*names)
	c.OptimizeView(*optimize)
	if *bounding != "" {
		if err := c.ShowBounding(*bounding); err != nil {
			return err
		}
	}
	if err := c.Render(ctx); err != nil {
		return err
	}
	enc, ok := target.(render.Encoder)
	if !ok {
		return fmt.Errorf("%w: %s", scene.ErrNotExportable, f)
	}
	if err := render.WriteFile(out, enc); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "rendered", slog.String("out", out), slog.String("format", f), slog.Int("shapes", c.Len()))
	if f == "png" {
		a.storePreview(ctx, h, c)
	}
	_, _ = fmt.Fprintf(a.out, "Rendered %d shapes to %s\n", c.Len(), out)
	return nil
}

// storePreview keeps the latest PNG in the history database. Failures only log.
func (a *app) storePreview(ctx context.Context, h *storage.Handle, c *scene.Controller) {
	img, err := c.Image()
	if err != nil {
		a.log.WarnContext(ctx, "preview not available", slog.Any("err", err))
		return
	}
	hist, err := storage.OpenHistory(ctx, filepath.Dir(h.Path))
	if err != nil {
		a.log.WarnContext(ctx, "history unavailable", slog.Any("err", err))
		return
	}
	defer func() { _ = hist.Close() }()
	if err := hist.PutPreview(ctx, filepath.Base(h.Path), img); err != nil {
		a.log.WarnContext(ctx, "store preview failed", slog.Any("err", err))
	}
}

func (a *app) cmdDraw(ctx context.Context, args []string) error {
	fs := newFlags("draw")
	sticky := fs.Bool("sticky", a.cfg.Canvas.StickyDraw, "keep the draw mode armed after each shape")
	keep := fs.Int("keep", defaultKeep, "snapshots to keep in the history")
	if err := parseFlags(fs, args, 2, "<doc> and <script>"); err != nil {
		return err
	}
	docPath, scriptPath := fs.Arg(0), fs.Arg(1)

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	s, perrs := script.Parse(string(src))
	if len(perrs) > 0 {
		errs := make([]error, len(perrs))
		for i, e := range perrs {
			errs[i] = e
		}
		return fmt.Errorf("%s: %w", scriptPath, errors.Join(errs...))
	}

	h, err := storage.Open(docPath)
	created := false
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		created = true
		h = &storage.Handle{Path: docPath, Doc: storage.Document{
			Version:    storage.DocumentVersion,
			Width:      a.cfg.Canvas.Width,
			Height:     a.cfg.Canvas.Height,
			Background: a.cfg.Canvas.Background,
		}}
	}
	ctx = applog.WithScene(ctx, docName(h))

	player := script.NewPlayer()
	c, _, err := a.newCanvas(h, "png", scene.WithTextEntry(player), scene.WithStickyDraw(*sticky))
	if err != nil {
		return err
	}
	player.Attach(c)
	a.sess.Handle = h
	a.sess.Capture = func() storage.Document { return storage.Capture(c, h.Doc.Name) }

	before := c.Len()
	if err := player.Run(ctx, s); err != nil {
		return err
	}
	h.Doc = storage.Capture(c, h.Doc.Name)
	if created {
		if _, err := storage.Create(docPath, h.Doc); err != nil {
			return err
		}
	} else if err := storage.Save(h); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "script applied", slog.String("script", scriptPath),
		slog.Int("before", before), slog.Int("after", c.Len()))
	a.snapshot(ctx, h, *keep)
	_, _ = fmt.Fprintf(a.out, "Saved %d shapes to %s\n", c.Len(), docPath)
	return nil
}

// snapshot records the document shapes in the history. Failures only log.
func (a *app) snapshot(ctx context.Context, h *storage.Handle, keep int) {
	hist, err := storage.OpenHistory(ctx, filepath.Dir(h.Path))
	if err != nil {
		a.log.WarnContext(ctx, "history unavailable", slog.Any("err", err))
		return
	}
	defer func() { _ = hist.Close() }()
	key := filepath.Base(h.Path)
	if err := hist.SaveSnapshot(ctx, key, h.Doc.Shapes, time.Now()); err != nil {
		a.log.WarnContext(ctx, "snapshot failed", slog.Any("err", err))
		return
	}
	if n, err := hist.PruneSnapshots(ctx, key, keep); err != nil {
		a.log.WarnContext(ctx, "prune snapshots failed", slog.Any("err", err))
	} else if n > 0 {
		a.log.DebugContext(ctx, "snapshots pruned", slog.Int64("n", n))
	}
}

func (a *app) cmdHistory(ctx context.Context, args []string) error {
	fs := newFlags("history")
	n := fs.Int("n", 10, "number of snapshots to list")
	if err := parseFlags(fs, args, 1, "<doc>"); err != nil {
		return err
	}
	path := fs.Arg(0)
	hist, err := storage.OpenHistory(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()
	snaps, err := hist.ListSnapshots(ctx, filepath.Base(path), *n)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(a.out, "No snapshots for", path)
		return nil
	}
	for i, s := range snaps {
		_, _ = fmt.Fprintf(a.out, "%3d  %s  %d shapes\n", i, s.TS.Local().Format(time.RFC3339), len(s.Records))
	}
	return nil
}

func (a *app) cmdRestore(ctx context.Context, args []string) error {
	fs := newFlags("restore")
	at := fs.Int("at", 0, "snapshot index from history, 0 is the newest")
	if err := parseFlags(fs, args, 1, "<doc>"); err != nil {
		return err
	}
	if *at < 0 {
		return fmt.Errorf("%w: -at must not be negative", errUsage)
	}
	path := fs.Arg(0)
	h, err := storage.Open(path)
	if err != nil {
		return err
	}
	hist, err := storage.OpenHistory(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()
	snaps, err := hist.ListSnapshots(ctx, filepath.Base(path), *at+1)
	if err != nil {
		return err
	}
	if len(snaps) <= *at {
		return fmt.Errorf("no snapshot %d for %s", *at, path)
	}
	snap := snaps[*at]
	h.Doc.Shapes = snap.Records
	if h.Doc.Shapes == nil {
		h.Doc.Shapes = []scene.Record{}
	}
	if err := storage.Save(h); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "Restored %d shapes from %s\n", len(snap.Records), snap.TS.Local().Format(time.RFC3339))
	return nil
}

func (a *app) cmdPack(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: pack needs export or install", errUsage)
	}
	switch sub, rest := args[0], args[1:]; sub {
	case "export":
		if len(rest) != 2 {
			return fmt.Errorf("%w: pack export needs <dir> and <zip>", errUsage)
		}
		n, err := texpack.Export(rest[0], rest[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(a.out, "Exported %d textures to %s\n", n, rest[1])
	case "install":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("%w: pack install needs <zip> and an optional dir", errUsage)
		}
		dir := a.cfg.Render.TextureDir
		if len(rest) == 2 {
			dir = rest[1]
		}
		if dir == "" {
			return fmt.Errorf("%w: no texture dir configured, pass one", errUsage)
		}
		n, err := texpack.Install(rest[0], dir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(a.out, "Installed %d textures into %s\n", n, dir)
	default:
		return fmt.Errorf("%w: unknown pack command %q", errUsage, sub)
	}
	return nil
}
