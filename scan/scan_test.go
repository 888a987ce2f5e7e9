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

package scan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rainlanguage/dotrain/ast"
)

func TestInclusive(t *testing.T) {
	got := Inclusive("a bb  ccc", Any, 10)
	want := []ast.ParsedItem{
		{Text: "a", Position: ast.Offsets{10, 11}},
		{Text: "bb", Position: ast.Offsets{12, 14}},
		{Text: "ccc", Position: ast.Offsets{16, 19}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Inclusive diff (-want +got):\n%s", diff)
	}
}

func TestExclusiveDropsEmptyEnds(t *testing.T) {
	got := Exclusive(" 'item1 renamed-item1 \n  \n\n\t item2 0x1234 \n", Whitespace, 0, false)
	want := []ast.ParsedItem{
		{Text: "'item1", Position: ast.Offsets{1, 7}},
		{Text: "renamed-item1", Position: ast.Offsets{8, 21}},
		{Text: "item2", Position: ast.Offsets{29, 34}},
		{Text: "0x1234", Position: ast.Offsets{35, 41}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Exclusive diff (-want +got):\n%s", diff)
	}
}

func TestExclusiveKeepsEmptyEnds(t *testing.T) {
	got := Exclusive("a;b;", SourceDelim, 0, true)
	want := []ast.ParsedItem{
		{Text: "a", Position: ast.Offsets{0, 1}},
		{Text: "b", Position: ast.Offsets{2, 3}},
		{Text: "", Position: ast.Offsets{4, 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Exclusive diff (-want +got):\n%s", diff)
	}

	got = Exclusive("@x @y", Imports, 0, true)
	want = []ast.ParsedItem{
		{Text: "", Position: ast.Offsets{0, 0}},
		{Text: "x ", Position: ast.Offsets{1, 3}},
		{Text: "y", Position: ast.Offsets{4, 5}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Exclusive diff (-want +got):\n%s", diff)
	}
}

func TestFillIn(t *testing.T) {
	buf := []byte("hello world")
	if err := FillIn(buf, ast.Offsets{5, 8}); err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf), "hello   rld"; got != want {
		t.Errorf("FillIn got %q, want %q", got, want)
	}
	if err := FillIn(buf, ast.Offsets{8, 20}); err == nil {
		t.Error("FillIn out of bounds: got nil error")
	}
}

func TestTrackedTrim(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		leading  int
		trailing int
	}{
		{" \n 1234 \n\t ", "1234", 3, 4},
		{"abc", "abc", 0, 0},
		{"   ", "", 3, 0},
		{"x ", "x", 0, 1},
	}
	for _, test := range tests {
		got, lead, trail := TrackedTrim(test.in)
		if got != test.want || lead != test.leading || trail != test.trailing {
			t.Errorf("TrackedTrim(%q) = (%q, %d, %d), want (%q, %d, %d)",
				test.in, got, lead, trail, test.want, test.leading, test.trailing)
		}
	}
}

func TestLineNumber(t *testing.T) {
	text := "ab\ncd\nef"
	for offset, want := range map[int]int{0: 0, 2: 0, 3: 1, 6: 2, 8: 2} {
		if got := LineNumber(text, offset); got != want {
			t.Errorf("LineNumber(%d) = %d, want %d", offset, got, want)
		}
	}
}

func TestPatterns(t *testing.T) {
	for _, valid := range []string{"abcd", "abcd-efg", "abcd12-efg8", "a678", "a1876-"} {
		if !Word.MatchString(valid) {
			t.Errorf("Word: %q considered invalid", valid)
		}
	}
	for _, invalid := range []string{"-abcd", "1abcd-efg", "1234", "_abcd-efg", "AkjhJ-Qer"} {
		if Word.MatchString(invalid) {
			t.Errorf("Word: %q considered valid", invalid)
		}
	}

	if !Hash.MatchString("0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef") {
		t.Error("Hash: full hash considered invalid")
	}
	for _, invalid := range []string{
		"0x1234abcd",
		"0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdeg",
	} {
		if Hash.MatchString(invalid) {
			t.Errorf("Hash: %q considered valid", invalid)
		}
	}

	for _, valid := range []string{"123", "0x123abcd", "3e16", "2345e12987234"} {
		if !Numeric.MatchString(valid) {
			t.Errorf("Numeric: %q considered invalid", valid)
		}
	}
	for _, invalid := range []string{"0b101", "e18", "x123"} {
		if Numeric.MatchString(invalid) {
			t.Errorf("Numeric: %q considered valid", invalid)
		}
	}

	for _, valid := range []string{"abced67", "_", "as12-iuy-"} {
		if !LHS.MatchString(valid) {
			t.Errorf("LHS: %q considered invalid", valid)
		}
	}
	for _, invalid := range []string{"-", "AbkE12", "12kjh"} {
		if LHS.MatchString(invalid) {
			t.Errorf("LHS: %q considered valid", invalid)
		}
	}

	for _, valid := range []string{"♥", "∴"} {
		if !IllegalChar.MatchString(valid) {
			t.Errorf("IllegalChar: %q not matched", valid)
		}
	}
	for _, invalid := range []string{"a", "\n", "\t", ":", "`"} {
		if IllegalChar.MatchString(invalid) {
			t.Errorf("IllegalChar: %q matched", invalid)
		}
	}

	for _, valid := range []string{"/* jhggf */", "/** kjhgkj */"} {
		if !Comment.MatchString(valid) {
			t.Errorf("Comment: %q considered invalid", valid)
		}
	}
	for _, invalid := range []string{"// asjkhdf", "\\* jkhjgk */"} {
		if Comment.MatchString(invalid) {
			t.Errorf("Comment: %q considered valid", invalid)
		}
	}

	for _, valid := range []string{"123456789", "0x123abcdefAdfe", "'abcd12-jh2.oiu.lkj89-"} {
		if !OperandArg.MatchString(valid) {
			t.Errorf("OperandArg: %q considered invalid", valid)
		}
	}
	for _, invalid := range []string{".sad-kjh", "Abd", "'Abcd.iuy1-oiu"} {
		if OperandArg.MatchString(invalid) {
			t.Errorf("OperandArg: %q considered valid", invalid)
		}
	}

	if !IgnoreNextLine.MatchString("/* ignore-next-line */") {
		t.Error("IgnoreNextLine: tag comment not matched")
	}
}

func TestParseU256(t *testing.T) {
	for _, valid := range []string{
		"0",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935",
		"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"4e18",
		"1e77",
	} {
		if !InRangeU256(valid) {
			t.Errorf("InRangeU256(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{
		"115792089237316195423570985008687907853269984665640564039457584007913129639936",
		"0x10000000000000000000000000000000000000000000000000000000000000000",
		"99999e99999",
		"2e78",
	} {
		if InRangeU256(invalid) {
			t.Errorf("InRangeU256(%q) = true, want false", invalid)
		}
	}
}
