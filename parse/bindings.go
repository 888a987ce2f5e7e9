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

package parse

import (
	"strings"

	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/scan"
)

// Literal kinds recognized by isLiteral.
const (
	litKindString = iota
	litKindSubParser
	litKindNumeric
)

// isLiteral reports whether a binding content is a single literal. For
// string and sub parser literals hasErr flags a missing closer; for
// numerics it flags a value that does not fit 256 bits.
func isLiteral(text string) (value string, kind int, hasErr, ok bool) {
	switch {
	case strings.HasPrefix(text, `"`):
		return text, litKindString, !scan.StringLiteral.MatchString(text), true
	case strings.HasPrefix(text, "["):
		return text, litKindSubParser, !scan.SubParserLiteral.MatchString(text), true
	default:
		items := scan.Exclusive(text, scan.Whitespace, 0, false)
		if len(items) == 1 && scan.Numeric.MatchString(items[0].Text) {
			return items[0].Text, litKindNumeric, !scan.InRangeU256(items[0].Text), true
		}
		return "", 0, false, false
	}
}

// isElided reports whether a binding content is an elision and returns
// its message.
func isElided(text string) (string, bool) {
	msg := strings.TrimSpace(text)
	if !strings.HasPrefix(msg, "!") {
		return "", false
	}
	return strings.TrimSpace(msg[1:]), true
}

// isQuote reports whether a binding content starts with a 'name quote
// and returns the quoted name plus any trailing tokens.
func isQuote(text string, offset int) (string, []ast.ParsedItem, bool) {
	items := scan.Exclusive(text, scan.Whitespace, offset, false)
	if len(items) == 0 {
		return "", nil, false
	}
	if !scan.Quote.MatchString(items[0].Text) {
		return "", nil, false
	}
	return items[0].Text[1:], items[1:], true
}

// processBinding reads one #-delimited binding statement, validates its
// name against the root namespace and categorizes its content.
func (d *RainDocument) processBinding(parsed ast.ParsedItem, namespace Namespace) {
	position := parsed.Position
	var name string
	var namePosition, contentPosition ast.Offsets
	var content, rawContent string

	if boundary := strings.IndexAny(parsed.Text, " \t\r\n"); boundary >= 0 {
		name = parsed.Text[:boundary]
		namePosition = ast.Offsets{parsed.Position[0], parsed.Position[0] + boundary}

		// the content of the working slice, comments already blanked
		rawSlice := parsed.Text[boundary+1:]
		rawTrimmed, _, _ := scan.TrackedTrim(rawSlice)
		rawContent = rawTrimmed
		if rawContent == "" {
			rawContent = rawSlice
		}

		// content positions refer to the original text, comments intact
		contentText := d.Text[parsed.Position[0]:parsed.Position[1]]
		slice := contentText[boundary+1:]
		trimmed, lead, trail := scan.TrackedTrim(slice)
		if trimmed == "" {
			contentPosition = ast.Offsets{parsed.Position[0] + boundary + 1, parsed.Position[1]}
			content = slice
		} else {
			contentPosition = ast.Offsets{
				parsed.Position[0] + boundary + 1 + lead,
				parsed.Position[1] - trail,
			}
			content = trimmed
		}
	} else {
		name = parsed.Text
		namePosition = parsed.Position
		contentPosition = ast.Offsets{parsed.Position[1] + 1, parsed.Position[1] + 1}
	}

	invalidID := !scan.Word.MatchString(name)
	_, dupID := namespace[name]
	if invalidID {
		d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(namePosition, name))
	}
	if dupID {
		d.Problems = append(d.Problems, ast.DuplicateIdentifier.ToProblem(namePosition, name))
	}
	if strings.TrimSpace(rawContent) == "" {
		d.Problems = append(d.Problems, ast.InvalidEmptyBinding.ToProblem(namePosition, name))
	}
	if invalidID || dupID {
		return
	}

	var item BindingItem
	if msg, elided := isElided(rawContent); elided {
		if msg == "" {
			msg = scan.DefaultElisionMsg
		}
		item = ElidedBindingItem{Msg: msg}
	} else if value, kind, hasErr, literal := isLiteral(rawContent); literal {
		switch {
		case kind == litKindString:
			if hasErr {
				d.Problems = append(d.Problems, ast.UnexpectedStringLiteralEnd.ToProblem(contentPosition))
			}
		case kind == litKindSubParser:
			if hasErr {
				d.Problems = append(d.Problems, ast.UnexpectedSubParserEnd.ToProblem(contentPosition))
			}
		case scan.Hex.MatchString(value) && len(value)%2 == 1:
			d.Problems = append(d.Problems, ast.OddLenHex.ToProblem(contentPosition))
		case hasErr:
			d.Problems = append(d.Problems, ast.OutOfRangeValue.ToProblem(contentPosition))
		}
		item = LiteralBindingItem{Value: value}
	} else if quote, rest, quoted := isQuote(rawContent, contentPosition[0]); quoted {
		for _, unexpected := range rest {
			d.Problems = append(d.Problems, ast.UnexpectedToken.ToProblem(unexpected.Position))
		}
		item = QuoteBindingItem{Quote: quote}
	} else {
		// hold the key with an empty parse tree for now; expression
		// bindings are parsed once the namespace is final
		item = ExpBindingItem{Document: emptyRainlangDocument()}
	}

	binding := Binding{
		Name:            name,
		NamePosition:    namePosition,
		Content:         content,
		ContentPosition: contentPosition,
		Position:        position,
		Item:            item,
	}
	d.Bindings = append(d.Bindings, binding)
	namespace[name] = &NamespaceLeaf{ImportIndex: -1, Element: binding}
}
