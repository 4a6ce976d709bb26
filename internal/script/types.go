/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package script

import "fmt"

// Script is a parsed input replay: the pointer and keyboard events a user
// would produce on a canvas, one step per line.
type Script struct {
	Sections []Section
}

// Section groups steps under a "# title" heading. Steps before the first
// heading land in an untitled section.
type Section struct {
	Title string
	Steps []Step
}

// Op is the kind of a replay step. The line forms are
//
//	draw <type> [key=value ...]
//	down X Y | move X Y | click X Y
//	up | dblclick | finalize | stop | cancel | clear
//	key <name>
//	type <text>
//	front | back | delete | zindex N | name <text>
//
// The last group acts on the selected shape.
type Op int

const (
	OpUnknown Op = iota
	OpDraw
	OpDown
	OpMove
	OpUp
	OpClick
	OpDoubleClick
	OpKey
	OpType
	OpFinalize
	OpStop
	OpCancel
	OpFront
	OpBack
	OpZIndex
	OpDelete
	OpName
	OpClear
)

var opNames = map[string]Op{
	"draw":     OpDraw,
	"down":     OpDown,
	"move":     OpMove,
	"up":       OpUp,
	"click":    OpClick,
	"dblclick": OpDoubleClick,
	"key":      OpKey,
	"type":     OpType,
	"finalize": OpFinalize,
	"stop":     OpStop,
	"cancel":   OpCancel,
	"front":    OpFront,
	"back":     OpBack,
	"zindex":   OpZIndex,
	"delete":   OpDelete,
	"name":     OpName,
	"clear":    OpClear,
}

func (o Op) String() string {
	for k, v := range opNames {
		if v == o {
			return k
		}
	}
	return "unknown"
}

// Step is one replay instruction.
type Step struct {
	Op     Op
	X, Y   float64
	N      int
	Arg    string            // draw type, key name, text
	Params map[string]string // draw options
	LineNo int               // 1-based line number in the source
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }
