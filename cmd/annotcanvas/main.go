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
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"annotcanvas/internal/config"
	"annotcanvas/internal/crash"
	applog "annotcanvas/internal/log"
	"annotcanvas/internal/version"
)

// errUsage marks bad invocations; main exits with status 2 for them.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "AnnotCanvas - vector annotation scenes")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  annotcanvas version|-v|--version             Show version")
	_, _ = fmt.Fprintln(w, "  annotcanvas new [flags] <doc>                  Create an empty scene document")
	_, _ = fmt.Fprintln(w, "  annotcanvas info <doc>                         Print a summary of a document")
	_, _ = fmt.Fprintln(w, "  annotcanvas validate <doc>                     Check a document against the schema")
	_, _ = fmt.Fprintln(w, "  annotcanvas render [flags] <doc> <out>         Render to .png, .svg or .pdf")
	_, _ = fmt.Fprintln(w, "  annotcanvas draw [flags] <doc> <script>        Replay input events and save the result")
	_, _ = fmt.Fprintln(w, "  annotcanvas history [-n N] <doc>               List saved snapshots")
	_, _ = fmt.Fprintln(w, "  annotcanvas restore [-at I] <doc>              Restore a snapshot (0 is the newest)")
	_, _ = fmt.Fprintln(w, "  annotcanvas pack export <dir> <zip>            Zip the texture images of a directory")
	_, _ = fmt.Fprintln(w, "  annotcanvas pack install <zip> [dir]           Unpack textures (default: configured texture dir)")
}

// app carries what every command needs.
type app struct {
	cfg  config.AppConfig
	log  *slog.Logger
	out  io.Writer
	sess *crash.Session
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.FromConfig(cfg.Logging))
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not fully loaded, using defaults where needed", slog.Any("err", cfgErr))
	}
	sess := &crash.Session{}
	defer crash.Recover(sess)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{cfg: cfg, log: l, out: os.Stdout, sess: sess}
	l.Debug("start", slog.Int("args", len(os.Args)))
	err := a.run(ctx, os.Args[1:])
	switch {
	case err == nil:
		return
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		usage(os.Stderr)
		stop()
		os.Exit(2)
	default:
		l.Error("command failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(a.out)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(a.out, "AnnotCanvas", version.String())
		return nil
	case "new":
		return a.cmdNew(rest)
	case "info":
		return a.cmdInfo(rest)
	case "validate":
		return a.cmdValidate(rest)
	case "render":
		return a.cmdRender(ctx, rest)
	case "draw":
		return a.cmdDraw(ctx, rest)
	case "history":
		return a.cmdHistory(ctx, rest)
	case "restore":
		return a.cmdRestore(ctx, rest)
	case "pack":
		return a.cmdPack(rest)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}
