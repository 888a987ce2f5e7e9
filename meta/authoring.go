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

package meta

import "strings"

// AuthoringWord is one known opcode word.
type AuthoringWord struct {
	Word        string
	Description string
}

// ContextAlias is an opcode word aliasing a context grid cell. Row is
// negative when the alias names a whole column.
type ContextAlias struct {
	Name        string
	Description string
	Column      int
	Row         int
}

// AuthoringMeta is the table of known words consulted while parsing
// rainlang: opcode words with descriptions plus context cell aliases.
type AuthoringMeta struct {
	Words          []AuthoringWord
	ContextAliases []ContextAlias
}

// FindWord returns the entry for an opcode word, if known.
func (a *AuthoringMeta) FindWord(name string) (AuthoringWord, bool) {
	if a == nil {
		return AuthoringWord{}, false
	}
	for _, w := range a.Words {
		if w.Word == name {
			return w, true
		}
	}
	return AuthoringWord{}, false
}

// FindContextAlias resolves a context alias name, including the
// two-component column.row form.
func (a *AuthoringMeta) FindContextAlias(name string) (ContextAlias, bool) {
	if a == nil {
		return ContextAlias{}, false
	}
	head, _, _ := strings.Cut(name, ".")
	for _, c := range a.ContextAliases {
		if c.Name == name || c.Name == head {
			return c, true
		}
	}
	return ContextAlias{}, false
}

// HasWord reports whether name is a known opcode word or context alias.
func (a *AuthoringMeta) HasWord(name string) bool {
	if a == nil {
		return false
	}
	if _, ok := a.FindWord(name); ok {
		return true
	}
	_, ok := a.FindContextAlias(name)
	return ok
}
