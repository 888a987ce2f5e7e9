// Copyright 2023 Rain Language
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scan provides the pattern-based text scanners the dotrain
// parsers are built on. All scanners work on byte offsets and report
// positions as half-open [start, end) ranges into the original text,
// shifted by the caller's base offset.
package scan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rainlanguage/dotrain/ast"
)

// Inclusive returns every match of re in text, in order, with positions
// shifted by offset.
func Inclusive(text string, re *regexp.Regexp, offset int) []ast.ParsedItem {
	var items []ast.ParsedItem
	for _, loc := range re.FindAllStringIndex(text, -1) {
		items = append(items, ast.ParsedItem{
			Text:     text[loc[0]:loc[1]],
			Position: ast.Offsets{loc[0] + offset, loc[1] + offset},
		})
	}
	return items
}

// Exclusive splits text by matches of re and returns the in-between
// segments with positions shifted by offset. When includeEmptyEnds is
// true the segment before the first match is included even if empty;
// callers iterating statements skip that first segment.
func Exclusive(text string, re *regexp.Regexp, offset int, includeEmptyEnds bool) []ast.ParsedItem {
	var items []ast.ParsedItem
	prev := 0
	for i, loc := range re.FindAllStringIndex(text, -1) {
		// An empty segment before the first match is an "end".
		if i == 0 && loc[0] == 0 && !includeEmptyEnds {
			prev = loc[1]
			continue
		}
		items = append(items, ast.ParsedItem{
			Text:     text[prev:loc[0]],
			Position: ast.Offsets{prev + offset, loc[0] + offset},
		})
		prev = loc[1]
	}
	if prev < len(text) || includeEmptyEnds {
		items = append(items, ast.ParsedItem{
			Text:     text[prev:],
			Position: ast.Offsets{prev + offset, len(text) + offset},
		})
	}
	return items
}

// FillIn overwrites the [start, end) range of the working buffer with
// spaces, preserving the buffer's length so all other offsets stay valid.
func FillIn(document []byte, position ast.Offsets) error {
	if position[0] < 0 || position[1] > len(document) || position[0] > position[1] {
		return fmt.Errorf("fill in range [%d, %d) out of bounds for length %d", position[0], position[1], len(document))
	}
	for i := position[0]; i < position[1]; i++ {
		document[i] = ' '
	}
	return nil
}

// TrackedTrim trims whitespace from both ends of s and reports how many
// bytes were removed on each side.
func TrackedTrim(s string) (trimmed string, leading, trailing int) {
	trimmed = strings.TrimLeftFunc(s, unicode.IsSpace)
	leading = len(s) - len(trimmed)
	cut := strings.TrimRightFunc(trimmed, unicode.IsSpace)
	trailing = len(trimmed) - len(cut)
	return cut, leading, trailing
}

// LineNumber returns the zero-based line of the given byte offset.
func LineNumber(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n")
}
