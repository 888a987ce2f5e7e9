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

package ast

import "testing"

func TestToProblem(t *testing.T) {
	p := UndefinedWord.ToProblem(Offsets{3, 7}, "foo")
	if p.Msg != "undefined word: foo" || p.Position != (Offsets{3, 7}) || p.Code != UndefinedWord {
		t.Errorf("problem = %+v", p)
	}
}

func TestToProblemWithoutArgs(t *testing.T) {
	p := UndefinedWord.ToProblem(Offsets{0, 0})
	if p.Msg != "undefined word" {
		t.Errorf("msg = %q, want bare message", p.Msg)
	}
	p = CircularDependency.ToProblem(Offsets{0, 0})
	if p.Msg != "circular dependency" {
		t.Errorf("msg = %q", p.Msg)
	}
}

func TestElidedBindingMessage(t *testing.T) {
	p := ElidedBinding.ToProblem(Offsets{1, 2}, "name", "needs rebind")
	if p.Msg != "needs rebind" {
		t.Errorf("msg = %q, want the elision message itself", p.Msg)
	}
}

func TestNodePositions(t *testing.T) {
	nodes := []Node{
		&Literal{Value: "1", Position: Offsets{0, 1}},
		&Opcode{Position: Offsets{2, 8}},
		&Alias{Name: "x", Position: Offsets{9, 10}},
	}
	want := []Offsets{{0, 1}, {2, 8}, {9, 10}}
	for i, n := range nodes {
		if n.Pos() != want[i] {
			t.Errorf("node %d position = %v, want %v", i, n.Pos(), want[i])
		}
	}
}
