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

// Package rewrite provides an offset-preserving text transform: edits
// are expressed against positions in the original text, so diagnostic
// offsets collected before rewriting stay meaningful. The composer uses
// it to rewrite binding contents without losing source positions.
package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

type edit struct {
	start   int
	end     int
	content string
	insert  bool
	seq     int
}

// Script is a set of pending edits over an original text. Positions
// always refer to the original text, never to earlier edits' output.
type Script struct {
	original string
	edits    []edit
	nextSeq  int
}

// NewScript starts a rewrite of the given text.
func NewScript(original string) *Script {
	return &Script{original: original}
}

// Original returns the text the script was started from.
func (s *Script) Original() string { return s.original }

// Overwrite replaces the [start, end) range of the original text with
// content. Ranges of distinct overwrites must not overlap.
func (s *Script) Overwrite(start, end int, content string) error {
	if start < 0 || end > len(s.original) || start > end {
		return fmt.Errorf("overwrite range [%d, %d) out of bounds for length %d", start, end, len(s.original))
	}
	for _, e := range s.edits {
		if e.insert {
			continue
		}
		if start < e.end && e.start < end {
			return fmt.Errorf("overwrite range [%d, %d) overlaps earlier edit [%d, %d)", start, end, e.start, e.end)
		}
	}
	s.edits = append(s.edits, edit{start: start, end: end, content: content, seq: s.nextSeq})
	s.nextSeq++
	return nil
}

// AppendLeft inserts content immediately left of pos. Multiple inserts
// at the same position keep their call order.
func (s *Script) AppendLeft(pos int, content string) error {
	if pos < 0 || pos > len(s.original) {
		return fmt.Errorf("append position %d out of bounds for length %d", pos, len(s.original))
	}
	s.edits = append(s.edits, edit{start: pos, end: pos, content: content, insert: true, seq: s.nextSeq})
	s.nextSeq++
	return nil
}

// String renders the original text with all edits applied.
func (s *Script) String() string {
	edits := make([]edit, len(s.edits))
	copy(edits, s.edits)
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		// an insert at p lands before an overwrite starting at p
		if edits[i].insert != edits[j].insert {
			return edits[i].insert
		}
		return edits[i].seq < edits[j].seq
	})

	var out strings.Builder
	cursor := 0
	for _, e := range edits {
		if e.start > cursor {
			out.WriteString(s.original[cursor:e.start])
		}
		out.WriteString(e.content)
		if e.end > cursor {
			cursor = e.end
		}
	}
	if cursor < len(s.original) {
		out.WriteString(s.original[cursor:])
	}
	return out.String()
}
