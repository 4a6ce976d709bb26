/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	applog "annotcanvas/internal/log"
	"annotcanvas/internal/scene"
)

// ErrNoSelection is returned by steps that act on the selected shape when
// nothing is selected.
var ErrNoSelection = errors.New("no shape selected")

// Player replays a Script against a scene controller. It is also the text
// entry of that controller: a text prompt stays open until the next "type"
// or "key Escape" step.
type Player struct {
	c   *scene.Controller
	log *slog.Logger

	commit func(string)
	cancel func()
}

// NewPlayer returns a player; pass it to scene.WithTextEntry and then Attach
// the controller.
func NewPlayer() *Player {
	return &Player{log: applog.WithComponent("script")}
}

func (p *Player) Attach(c *scene.Controller) { p.c = c }

// Prompt implements scene.TextEntry.
func (p *Player) Prompt(x, y float64, commit func(string), cancel func(), _ func(), _ scene.TextStyle) {
	p.log.Debug("text prompt open", slog.Float64("x", x), slog.Float64("y", y))
	p.commit, p.cancel = commit, cancel
}

// Prompting reports whether a text prompt waits for input.
func (p *Player) Prompting() bool { return p.commit != nil }

func (p *Player) closePrompt() { p.commit, p.cancel = nil, nil }

// Run executes every step in order. It stops at the first failing step or
// when ctx is done.
func (p *Player) Run(ctx context.Context, s Script) error {
	if p.c == nil {
		return errors.New("player has no controller attached")
	}
	for _, sec := range s.Sections {
		l := p.log
		if sec.Title != "" {
			l = l.With(slog.String("section", sec.Title))
		}
		for _, st := range sec.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.step(st); err != nil {
				l.Error("step failed", slog.Int("line", st.LineNo), slog.String("op", st.Op.String()), slog.Any("err", err))
				return fmt.Errorf("line %d: %s: %w", st.LineNo, st.Op, err)
			}
		}
	}
	return nil
}

func (p *Player) step(st Step) error {
	c := p.c
	switch st.Op {
	case OpDraw:
		t, err := scene.ParseDrawType(st.Arg)
		if err != nil {
			return err
		}
		o, err := drawOptions(st.Params)
		if err != nil {
			return err
		}
		return c.BeginDraw(t, o)
	case OpDown:
		c.PointerDown(st.X, st.Y)
	case OpMove:
		c.PointerMove(st.X, st.Y)
	case OpUp:
		c.PointerUp()
	case OpClick:
		c.PointerDown(st.X, st.Y)
		c.PointerUp()
	case OpDoubleClick:
		c.DoubleClick()
	case OpKey:
		if st.Arg == "Escape" && p.Prompting() {
			cancel := p.cancel
			p.closePrompt()
			cancel()
			return nil
		}
		c.KeyDown(st.Arg)
	case OpType:
		if !p.Prompting() {
			return errors.New("no text prompt is open")
		}
		commit := p.commit
		p.closePrompt()
		commit(st.Arg)
	case OpFinalize:
		c.Finalize()
	case OpStop:
		c.StopDraw()
	case OpCancel:
		c.CancelDraw()
	case OpClear:
		c.Clear()
	default:
		return p.selectionStep(st)
	}
	return nil
}

func (p *Player) selectionStep(st Step) error {
	sel := p.c.Selected()
	if sel == nil {
		return ErrNoSelection
	}
	switch st.Op {
	case OpFront:
		return p.c.BringToFront(sel.ID())
	case OpBack:
		return p.c.SendToBack(sel.ID())
	case OpZIndex:
		return p.c.SetZIndex(sel.ID(), st.N)
	case OpDelete:
		return p.c.DeleteArea(sel.ID())
	case OpName:
		sel.SetName(st.Arg)
		return nil
	}
	return fmt.Errorf("unsupported step %q", st.Op)
}

// drawOptions maps draw parameters onto scene options.
func drawOptions(params map[string]string) (scene.DrawOptions, error) {
	var o scene.DrawOptions
	for k, v := range params {
		var err error
		switch k {
		case "name":
			o.Name = v
		case "stroke":
			o.StrokeColor = v
		case "fill":
			o.FillColor = v
		case "width":
			o.LineWidth, err = strconv.ParseFloat(v, 64)
		case "fontsize":
			o.FontSize, err = strconv.ParseFloat(v, 64)
		case "color":
			o.TextColor = v
		case "font":
			o.FontFamily = v
		case "align":
			o.TextAlign = v
		case "baseline":
			o.TextBaseline = v
		case "namesize":
			o.NameFontSize, err = strconv.ParseFloat(v, 64)
		case "namecolor":
			o.NameTextColor = v
		case "texture":
			o.Texture.Src = v
		case "repeat":
			o.Texture.Repeat = v
		case "scale":
			o.Texture.Scale = strings.ToLower(v)
		default:
			return o, fmt.Errorf("unknown draw parameter %q", k)
		}
		if err != nil {
			return o, fmt.Errorf("draw parameter %s: %w", k, err)
		}
	}
	return o, nil
}

var _ scene.TextEntry = (*Player)(nil)
