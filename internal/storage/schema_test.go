/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSavedDocumentConformsToSchema(t *testing.T) {
	src := newController(t)
	if err := sampleDoc().Apply(src); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	h, err := Create(filepath.Join(t.TempDir(), "floor"+DocumentExt), Capture(src, "floor"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("document does not conform to schema: %v", err)
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"missing shapes": `{"version": 1, "width": 10, "height": 10}`,
		"zero width":     `{"version": 1, "width": 0, "height": 10, "shapes": []}`,
		"unknown type":   `{"version": 1, "width": 10, "height": 10, "shapes": [{"uuid": "a", "drawType": "sector", "list": [{"x": 1, "y": 2}], "zIndex": 1}]}`,
		"no uuid":        `{"version": 1, "width": 10, "height": 10, "shapes": [{"drawType": "rect", "list": [{"x": 1, "y": 2}], "zIndex": 1}]}`,
	}
	for name, doc := range cases {
		if err := Validate([]byte(doc)); !errors.Is(err, ErrSchema) {
			t.Fatalf("%s: Validate error = %v, want ErrSchema", name, err)
		}
	}
}

func TestValidateRejectsInvalidJSON(t *testing.T) {
	err := Validate([]byte("{"))
	if err == nil || errors.Is(err, ErrSchema) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}
