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

import (
	"fmt"
	"strings"
)

// ErrorCode identifies a kind of problem found while parsing or composing.
// Codes are grouped by hundreds-of-hex blocks the same way LSP diagnostic
// codes are, so a code's block tells its broad kind.
type ErrorCode int

// Problem codes.
const (
	IllegalChar             ErrorCode = 0
	RuntimeError            ErrorCode = 1
	CircularDependency      ErrorCode = 2
	DeepImport              ErrorCode = 4
	DeepNamespace           ErrorCode = 5
	CorruptMeta             ErrorCode = 6
	ElidedBinding           ErrorCode = 7
	InconsumableMeta        ErrorCode = 11
	OccupiedNamespace       ErrorCode = 12
	OddLenHex               ErrorCode = 13
	CollidingNamespaceNodes ErrorCode = 14

	UndefinedWord            ErrorCode = 0x101
	UndefinedImport          ErrorCode = 0x103
	UndefinedQuote           ErrorCode = 0x104
	UndefinedIdentifier      ErrorCode = 0x106
	UndefinedNamespaceMember ErrorCode = 0x107

	InvalidWordPattern        ErrorCode = 0x201
	InvalidExpression         ErrorCode = 0x202
	InvalidImport             ErrorCode = 0x208
	InvalidEmptyBinding       ErrorCode = 0x209
	InvalidEmptyLine          ErrorCode = 0x20a
	InvalidOperandArg         ErrorCode = 0x212
	InvalidReferenceLiteral   ErrorCode = 0x213
	InvalidReferenceAll       ErrorCode = 0x215
	InvalidRainDocument       ErrorCode = 0x216
	InvalidNamespaceReference ErrorCode = 0x217
	InvalidLiteralQuote       ErrorCode = 0x218
	InvalidSuppliedRebindings ErrorCode = 0x219

	UnexpectedToken             ErrorCode = 0x301
	UnexpectedClosingParen      ErrorCode = 0x302
	UnexpectedNamespacePath     ErrorCode = 0x303
	UnexpectedRebinding         ErrorCode = 0x304
	UnexpectedClosingAngleParen ErrorCode = 0x305
	UnexpectedEndOfComment      ErrorCode = 0x306
	UnexpectedComment           ErrorCode = 0x307
	UnexpectedRename            ErrorCode = 0x309
	UnexpectedStringLiteralEnd  ErrorCode = 0x30a
	UnexpectedSubParserEnd      ErrorCode = 0x30b
	UnexpectedPragma            ErrorCode = 0x30c

	ExpectedOpcode              ErrorCode = 0x401
	ExpectedElisionOrRebinding  ErrorCode = 0x403
	ExpectedClosingParen        ErrorCode = 0x404
	ExpectedOpeningParen        ErrorCode = 0x405
	ExpectedClosingAngleBracket ErrorCode = 0x406
	ExpectedSemi                ErrorCode = 0x408
	ExpectedHexLiteral          ErrorCode = 0x40a
	ExpectedRename              ErrorCode = 0x40b
	ExpectedLiteral             ErrorCode = 0x40c

	OutOfRangeValue ErrorCode = 0x603

	DuplicateAlias           ErrorCode = 0x701
	DuplicateIdentifier      ErrorCode = 0x702
	DuplicateImportStatement ErrorCode = 0x703
	DuplicateImport          ErrorCode = 0x704

	NoFrontMatterSplitter ErrorCode = 0x801
	NoneTopLevelImport    ErrorCode = 0x802
)

// Problem is a positioned diagnostic. Problems are collected, not thrown;
// a document with problems is still a document.
type Problem struct {
	Msg      string
	Position Offsets
	Code     ErrorCode
}

// messages holds the message template for each code. A template has at
// most one %s verb, which takes one argument.
var messages = map[ErrorCode]string{
	IllegalChar:             "illegal character: %s",
	RuntimeError:            "%s",
	CircularDependency:      "circular dependency",
	DeepImport:              "import too deep",
	DeepNamespace:           "namespace path too deep",
	CorruptMeta:             "corrupt meta",
	ElidedBinding:           "%s",
	InconsumableMeta:        "meta sequence has no consumable items",
	OccupiedNamespace:       "namespace already occupied",
	OddLenHex:               "odd length hex value",
	CollidingNamespaceNodes: "namespace nodes colliding",

	UndefinedWord:            "undefined word: %s",
	UndefinedImport:          "cannot find any settlement for import: %s",
	UndefinedQuote:           "undefined quote: %s",
	UndefinedIdentifier:      "undefined identifier: %s",
	UndefinedNamespaceMember: "namespace has no member: %s",

	InvalidWordPattern:        "invalid word pattern: %s",
	InvalidExpression:         "invalid expression line",
	InvalidImport:             "expected a valid name or hash",
	InvalidEmptyBinding:       "invalid empty binding: %s",
	InvalidEmptyLine:          "invalid empty expression line",
	InvalidOperandArg:         "invalid argument pattern: %s",
	InvalidReferenceLiteral:   "invalid reference to binding: %s, only literal bindings can be referenced",
	InvalidReferenceAll:       "invalid reference to binding: %s, only literal bindings can be referenced",
	InvalidRainDocument:       "imported rain document contains top level errors",
	InvalidNamespaceReference: "expected a node, %s is a namespace",
	InvalidLiteralQuote:       "invalid quote: %s, cannot quote literals",
	InvalidSuppliedRebindings: "invalid supplied rebindings: %s",

	UnexpectedToken:             "unexpected token",
	UnexpectedClosingParen:      "unexpected \")\"",
	UnexpectedNamespacePath:     "unexpected path, must end with a node",
	UnexpectedRebinding:         "unexpected rebinding",
	UnexpectedClosingAngleParen: "unexpected \">\"",
	UnexpectedEndOfComment:      "unexpected end of comment",
	UnexpectedComment:           "unexpected comment",
	UnexpectedRename:            "unexpected rename, name already taken: %s",
	UnexpectedStringLiteralEnd:  "unexpected end of string literal",
	UnexpectedSubParserEnd:      "unexpected end of sub parser literal",
	UnexpectedPragma:            "unexpected pragma, must be at the top",

	ExpectedOpcode:              "expected opcode",
	ExpectedElisionOrRebinding:  "expected elision or rebinding",
	ExpectedClosingParen:        "expected \")\"",
	ExpectedOpeningParen:        "expected \"(\"",
	ExpectedClosingAngleBracket: "expected \">\"",
	ExpectedSemi:                "expected to end with \";\"",
	ExpectedHexLiteral:          "expected a hex literal",
	ExpectedRename:              "expected rename",
	ExpectedLiteral:             "expected at least one literal",

	OutOfRangeValue: "value out of range",

	DuplicateAlias:           "duplicate alias: %s",
	DuplicateIdentifier:      "duplicate identifier: %s",
	DuplicateImportStatement: "duplicate statement in import",
	DuplicateImport:          "duplicate import",

	NoFrontMatterSplitter: "cannot find front matter splitter",
	NoneTopLevelImport:    "imports can only be stated at top level",
}

// ToProblem builds a Problem at the given position. The first arg fills
// the code's message template and surplus args are ignored; for
// ElidedBinding the last arg is the whole message.
func (c ErrorCode) ToProblem(position Offsets, args ...string) Problem {
	template, ok := messages[c]
	if !ok {
		template = "unknown problem"
	}
	msg := template
	switch {
	case len(args) == 0:
		// codes that normally interpolate degrade to their bare message
		if i := strings.Index(template, ": %s"); i >= 0 {
			msg = template[:i]
		} else if template == "%s" {
			msg = ""
		}
	case c == ElidedBinding:
		// the elision message itself is the diagnostic
		msg = args[len(args)-1]
	default:
		msg = fmt.Sprintf(template, args[0])
	}
	return Problem{Msg: msg, Position: position, Code: c}
}

// String returns the code's numeric form, which is what LSP diagnostics
// carry on the wire.
func (c ErrorCode) String() string {
	return fmt.Sprintf("%d", int(c))
}
