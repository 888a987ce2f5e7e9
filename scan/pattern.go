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

import "regexp"

// PragmaKeyword opens a pragma statement in rainlang.
const PragmaKeyword = "using-words-from"

// Keywords reserved in rainlang. They cannot be used as LHS aliases.
var Keywords = []string{PragmaKeyword}

// FrontMatterSeparator splits the front matter from the body.
const FrontMatterSeparator = "---"

// DefaultElisionMsg is the message of an elided binding declared as a bare "!".
const DefaultElisionMsg = "elided binding, requires rebinding"

// All regular expression patterns used for parsing texts.
var (
	// IllegalChar matches any byte outside printable ASCII and whitespace.
	IllegalChar = regexp.MustCompile(`[^ -~\s]+`)

	// Word matches binding and opcode names.
	Word = regexp.MustCompile(`^[a-z][0-9a-z-]*$`)

	// Hash matches a full 32-byte import hash.
	Hash = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

	// Numeric matches any numeric literal form.
	Numeric = regexp.MustCompile(`^0x[0-9a-fA-F]+$|^\d+$|^[1-9]\d*e\d+$`)

	// StringLiteral matches a complete double-quoted string.
	StringLiteral = regexp.MustCompile(`^"[\s\S]*?"$`)

	// SubParserLiteral matches a complete bracketed sub parser literal.
	SubParserLiteral = regexp.MustCompile(`^\[[\s\S]*?\]$`)

	// Hex matches a 0x-prefixed hex literal of any length.
	Hex = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)

	// ENum matches integer-exponent literals such as 4e18.
	ENum = regexp.MustCompile(`^[1-9]\d*e\d+$`)

	// Int matches plain decimal integers.
	Int = regexp.MustCompile(`^\d+$`)

	// NamespacePath matches dot-segmented namespace paths.
	NamespacePath = regexp.MustCompile(`^(\.?[a-z][0-9a-z-]*)*\.?$`)

	// Comment matches /* ... */ comments, terminated or not.
	Comment = regexp.MustCompile(`\/\*[\s\S]*?(?:\*\/|$)`)

	// Whitespace matches runs of whitespace.
	Whitespace = regexp.MustCompile(`\s+`)

	// Dep matches a quoted binding dependency reference.
	Dep = regexp.MustCompile(`'\.?[a-z][0-9a-z-]*(\.[a-z][0-9a-z-]*)*`)

	// Imports marks the start of an import statement.
	Imports = regexp.MustCompile("@")

	// Binding marks the start of a binding statement.
	Binding = regexp.MustCompile("#")

	// NonEmpty matches any non-whitespace byte.
	NonEmpty = regexp.MustCompile(`[^\s]`)

	// OperandArg matches a valid operand argument item.
	OperandArg = regexp.MustCompile(`^[0-9]+$|^0x[a-fA-F0-9]+$|^'\.?[a-z][a-z0-9-]*(\.[a-z][a-z0-9-]*)*$`)

	// NamespaceSegment splits namespace paths.
	NamespaceSegment = regexp.MustCompile(`\.`)

	// SourceDelim splits rainlang sources.
	SourceDelim = regexp.MustCompile(";")

	// LineDelim splits lines within a source.
	LineDelim = regexp.MustCompile(",")

	// Any matches any run of non-whitespace.
	Any = regexp.MustCompile(`\S+`)

	// LHS matches an LHS alias, including the "_" placeholder.
	LHS = regexp.MustCompile(`^[a-z][a-z0-9-]*$|^_$`)

	// Quote matches a '-prefixed single word.
	Quote = regexp.MustCompile(`^'[a-z][0-9a-z-]*$`)

	// Literal matches any literal form: numeric, string or sub parser.
	Literal = regexp.MustCompile(`^0x[0-9a-fA-F]+$|^\d+$|^[1-9]\d*e\d+$|^"[\s\S]*?"$|^\[[\s\S]*?\]$`)

	// Pragma matches a `using-words-from` statement head.
	Pragma = regexp.MustCompile(`(:?^|\s)using-words-from(\s+0x[0-9a-fA-F]*)?(:?\s|$)`)

	// IgnoreNextLine is matched inside a comment to suppress the
	// diagnostics of the line after the comment.
	IgnoreNextLine = regexp.MustCompile(`(:?\*|\s)ignore-next-line(:?\*|\s)`)
)
