/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package script

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	reSection = regexp.MustCompile(`^#+\s*(.*)$`)
	reParam   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9]*)=(.*)$`)
)

// Parse parses replay text into a Script.
// Supported syntax:
//   - "# title" starts a new section.
//   - ";" starts a comment line.
//   - one step per line, "<op> args..."; see Op for the forms.
//   - lines indented by 2+ spaces continue the text of the previous "type" step.
//   - draw parameters are key=value words; values may be double-quoted.
//
// Blank lines separate steps but are not represented.
func Parse(input string) (Script, []Error) {
	s := Script{Sections: []Section{}}
	var errs []Error
	cur := Section{}
	var last *Step

	flush := func() {
		if strings.TrimSpace(cur.Title) != "" || len(cur.Steps) > 0 {
			s.Sections = append(s.Sections, cur)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		if strings.HasPrefix(line, "  ") && last != nil && last.Op == OpType {
			if cont := strings.TrimSpace(line); cont != "" {
				last.Arg += "\n" + cont
			}
			continue
		}
		trim := strings.TrimSpace(line)
		if trim == "" {
			last = nil
			continue
		}
		if m := reSection.FindStringSubmatch(trim); m != nil {
			flush()
			cur = Section{Title: strings.TrimSpace(m[1])}
			last = nil
			continue
		}
		if strings.HasPrefix(trim, ";") {
			last = nil
			continue
		}

		st, err := parseStep(trim, lineNo)
		if err != nil {
			errs = append(errs, Error{Line: lineNo, Message: err.Error()})
			last = nil
			continue
		}
		cur.Steps = append(cur.Steps, st)
		last = &cur.Steps[len(cur.Steps)-1]
	}
	flush()
	return s, errs
}

type parseErr string

func (e parseErr) Error() string { return string(e) }

func parseStep(line string, lineNo int) (Step, error) {
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	op, ok := opNames[strings.ToLower(word)]
	if !ok {
		return Step{}, parseErr("unknown step " + strconv.Quote(word))
	}
	st := Step{Op: op, LineNo: lineNo}
	switch op {
	case OpDown, OpMove, OpClick:
		f := strings.Fields(rest)
		if len(f) != 2 {
			return st, parseErr(word + " needs X and Y")
		}
		x, errX := strconv.ParseFloat(f[0], 64)
		y, errY := strconv.ParseFloat(f[1], 64)
		if errX != nil || errY != nil {
			return st, parseErr(word + ": bad coordinates " + strconv.Quote(rest))
		}
		st.X, st.Y = x, y
	case OpDraw:
		words, err := splitQuoted(rest)
		if err != nil {
			return st, err
		}
		if len(words) == 0 {
			return st, parseErr("draw needs a type")
		}
		st.Arg = words[0]
		for _, w := range words[1:] {
			m := reParam.FindStringSubmatch(w)
			if m == nil {
				return st, parseErr("draw: expected key=value, got " + strconv.Quote(w))
			}
			if st.Params == nil {
				st.Params = map[string]string{}
			}
			st.Params[strings.ToLower(m[1])] = m[2]
		}
	case OpKey, OpName:
		if rest == "" {
			return st, parseErr(word + " needs an argument")
		}
		st.Arg = rest
	case OpType:
		st.Arg = rest
	case OpZIndex:
		n, err := strconv.Atoi(rest)
		if err != nil {
			return st, parseErr("zindex needs an integer")
		}
		st.N = n
	default:
		if rest != "" {
			return st, parseErr(word + " takes no arguments")
		}
	}
	return st, nil
}

// splitQuoted splits on spaces, keeping double-quoted runs (without the quotes) together.
func splitQuoted(s string) ([]string, error) {
	var out []string
	var b strings.Builder
	inQuote, have := false, false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			have = true
		case r == ' ' && !inQuote:
			if have {
				out = append(out, b.String())
				b.Reset()
				have = false
			}
		default:
			b.WriteRune(r)
			have = true
		}
	}
	if inQuote {
		return nil, parseErr("unterminated quote")
	}
	if have {
		out = append(out, b.String())
	}
	return out, nil
}
