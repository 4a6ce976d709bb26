/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "strings"

// Words splits text on whitespace.
func Words(text string) []string { return strings.Fields(text) }

// WrapGreedy breaks text into lines no wider than maxWidth using measure.
// A single word wider than maxWidth stays on its own line.
func WrapGreedy(text string, maxWidth float64, measure func(string) float64) []string {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		test := cur + " " + w
		if measure(test) > maxWidth {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = test
	}
	return append(lines, cur)
}
