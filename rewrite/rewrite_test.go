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

package rewrite

import "testing"

func TestOverwrite(t *testing.T) {
	s := NewScript("_: call<'helper>();")
	if err := s.Overwrite(8, 15, "2"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "_: call<2>();"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOverwriteOrderIndependence(t *testing.T) {
	s := NewScript("a b c")
	if err := s.Overwrite(4, 5, "C"); err != nil {
		t.Fatal(err)
	}
	if err := s.Overwrite(0, 1, "A"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "A b C"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOverlapRejected(t *testing.T) {
	s := NewScript("abcdef")
	if err := s.Overwrite(1, 4, "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Overwrite(3, 5, "y"); err == nil {
		t.Error("overlapping overwrite: got nil error")
	}
	if err := s.Overwrite(9, 10, "z"); err == nil {
		t.Error("out of bounds overwrite: got nil error")
	}
}

func TestAppendLeft(t *testing.T) {
	s := NewScript("col<>()")
	if err := s.AppendLeft(4, "1 "); err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "col<1 >()"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAppendLeftKeepsCallOrder(t *testing.T) {
	s := NewScript("ab")
	if err := s.AppendLeft(1, "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLeft(1, "y"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "axyb"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertAtOverwriteEnd(t *testing.T) {
	s := NewScript("name()")
	if err := s.Overwrite(0, 4, "context"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLeft(4, "<1 2>"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "context<1 2>()"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
