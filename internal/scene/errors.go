/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "errors"

var (
	// ErrInvalidDrawType is returned for a draw mode or record type the scene does not know.
	ErrInvalidDrawType = errors.New("scene: invalid draw type")
	// ErrInvalidShape marks a finalize attempt with the wrong number of points.
	// It is logged and never returned from the input entry points.
	ErrInvalidShape = errors.New("scene: invalid shape")
	// ErrInvalidInput is returned when a bulk load is given something other than a list.
	ErrInvalidInput = errors.New("scene: invalid input")
	// ErrMalformedRecord wraps per-record bulk load failures.
	ErrMalformedRecord = errors.New("scene: malformed record")
	// ErrShapeNotFound is returned by id based operations for unknown ids.
	ErrShapeNotFound = errors.New("scene: shape not found")
	// ErrNotExportable is returned by Export when the target cannot encode itself.
	ErrNotExportable = errors.New("scene: render target cannot be exported")
)
