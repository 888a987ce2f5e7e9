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
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/scan"
)

type parenState struct {
	open  []int
	close []int
}

type rainlangState struct {
	nodes   []ast.Node
	aliases []ast.Alias
	parens  parenState
	depth   int
}

// RainlangDocument is the parse tree of a rainlang expression text:
// sources, lines and nodes, plus the problems, comments, pragmas and
// quoted dependencies found while parsing.
type RainlangDocument struct {
	Text         string
	AST          []ast.Source
	Problems     []ast.Problem
	Comments     []ast.Comment
	Pragmas      []ast.PragmaStatement
	Dependencies []string
	Error        string

	state rainlangState
}

// NewRainlangDocument parses text against a namespace and an optional
// known-words table.
func NewRainlangDocument(text string, namespace Namespace, words *meta.AuthoringMeta) *RainlangDocument {
	d := &RainlangDocument{Text: text}
	d.parse(namespace, words)
	return d
}

func emptyRainlangDocument() *RainlangDocument {
	return &RainlangDocument{}
}

func (d *RainlangDocument) parse(namespace Namespace, words *meta.AuthoringMeta) {
	if err := d.doParse(namespace, words); err != nil {
		d.Error = err.Error()
		d.Problems = append(d.Problems, ast.RuntimeError.ToProblem(ast.Offsets{0, 0}, err.Error()))
	}
}

func (d *RainlangDocument) resetState() {
	d.state.depth = 0
	d.state.nodes = nil
	d.state.aliases = nil
	d.state.parens.open = nil
	d.state.parens.close = nil
}

func (d *RainlangDocument) doParse(namespace Namespace, words *meta.AuthoringMeta) error {
	d.resetState()
	d.AST = nil
	d.Problems = nil
	d.Comments = nil
	d.Pragmas = nil
	d.Dependencies = nil
	d.Error = ""
	document := []byte(d.Text)

	// an illegal character ends the parsing right away
	illegal := scan.Inclusive(string(document), scan.IllegalChar, 0)
	if len(illegal) > 0 {
		d.Problems = append(d.Problems, ast.IllegalChar.ToProblem(
			ast.Offsets{illegal[0].Position[0], illegal[0].Position[0]}, illegal[0].Text))
		return nil
	}

	// take out comments
	for _, cm := range scan.Inclusive(string(document), scan.Comment, 0) {
		if !strings.HasSuffix(cm.Text, "*/") {
			d.Problems = append(d.Problems, ast.UnexpectedEndOfComment.ToProblem(cm.Position))
		}
		d.Comments = append(d.Comments, ast.Comment{Comment: cm.Text, Position: cm.Position})
		if err := scan.FillIn(document, cm.Position); err != nil {
			return err
		}
	}

	if err := d.parsePragmas(document, namespace); err != nil {
		return err
	}

	// split into sources; the text must end with ";"
	var srcItems []string
	var srcPositions []ast.Offsets
	parsedSources := scan.Exclusive(string(document), scan.SourceDelim, 0, true)
	if last := parsedSources[len(parsedSources)-1]; strings.TrimSpace(last.Text) == "" {
		parsedSources = parsedSources[:len(parsedSources)-1]
	} else {
		p := last.Position[1]
		d.Problems = append(d.Problems, ast.ExpectedSemi.ToProblem(ast.Offsets{p, p + 1}))
	}
	for _, src := range parsedSources {
		trimmed, lead, trail := scan.TrackedTrim(src.Text)
		if trimmed == "" {
			at := src.Position[1] - trail
			d.Problems = append(d.Problems, ast.InvalidEmptyBinding.ToProblem(ast.Offsets{at, at}))
		} else {
			srcItems = append(srcItems, trimmed)
			srcPositions = append(srcPositions, ast.Offsets{src.Position[0] + lead, src.Position[1] - trail})
		}
	}

	// reserved keywords plus root namespace keys can never be LHS aliases
	reserved := stringset.New(scan.Keywords...)
	for key := range namespace {
		reserved.Add(key)
	}

	for i, src := range srcItems {
		occupied := reserved.Clone()
		d.AST = append(d.AST, ast.Source{Position: srcPositions[i]})

		var lines []string
		var linePositions []ast.Offsets
		var endsDiff []int
		for _, sub := range scan.Exclusive(src, scan.LineDelim, srcPositions[i][0], true) {
			trimmed, lead, trail := scan.TrackedTrim(sub.Text)
			lines = append(lines, trimmed)
			linePositions = append(linePositions, ast.Offsets{sub.Position[0] + lead, sub.Position[1] - trail})
			endsDiff = append(endsDiff, trail)
		}

		for j, sub := range lines {
			d.resetState()
			cursor := linePositions[j][0]
			if j > 0 {
				for _, alias := range d.AST[i].Lines[j-1].Aliases {
					if alias.Name != "_" {
						occupied.Add(alias.Name)
					}
				}
			}
			lhs, rhs, hasColon := strings.Cut(sub, ":")
			if hasColon {
				// comments cannot appear inside a line
				for _, cm := range d.Comments {
					if cm.Position[0] > cursor && cm.Position[0] < linePositions[j][1]+endsDiff[j] {
						d.Problems = append(d.Problems, ast.UnexpectedComment.ToProblem(cm.Position))
					}
				}
				if lhs != "" {
					for _, item := range scan.Inclusive(lhs, scan.Any, cursor) {
						d.state.aliases = append(d.state.aliases, ast.Alias{
							Name:     item.Text,
							Position: item.Position,
						})
						if !scan.LHS.MatchString(item.Text) {
							d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(item.Position, item.Text))
						}
						if occupied.Contains(item.Text) {
							d.Problems = append(d.Problems, ast.DuplicateAlias.ToProblem(item.Position, item.Text))
						}
					}
				}
				if err := d.processRHS(rhs, linePositions[j][1], namespace, words); err != nil {
					return err
				}
			} else if sub == "" || strings.TrimSpace(sub) == "" {
				d.Problems = append(d.Problems, ast.InvalidEmptyLine.ToProblem(linePositions[j]))
			} else {
				d.Problems = append(d.Problems, ast.InvalidExpression.ToProblem(linePositions[j]))
			}

			d.AST[i].Lines = append(d.AST[i].Lines, ast.Line{
				Nodes:    d.state.nodes,
				Aliases:  d.state.aliases,
				Position: linePositions[j],
			})
			d.state.nodes = nil
			d.state.aliases = nil
		}
	}

	// a matching comment suppresses the diagnostics of the next line
	d.Problems = suppressIgnoredLines(d.Text, d.Comments, d.Problems)
	return nil
}

// parsePragmas lifts `using-words-from` statements off the text. Every
// pragma after the first is UnexpectedPragma, and so is the first one
// when a ":" (line content) appears anywhere before it.
func (d *RainlangDocument) parsePragmas(document []byte, namespace Namespace) error {
	var pragmas []ast.ParsedItem
	for _, v := range scan.Inclusive(string(document), scan.Pragma, 0) {
		// narrow the match down to the keyword itself; its arguments are
		// tokenized from the text that follows
		kwStart := v.Position[0] + strings.Index(v.Text, scan.PragmaKeyword)
		pragmas = append(pragmas, ast.ParsedItem{
			Text:     scan.PragmaKeyword,
			Position: ast.Offsets{kwStart, kwStart + len(scan.PragmaKeyword)},
		})
	}

	for i, pragma := range pragmas {
		start := pragma.Position[1]
		end := len(document)
		if i < len(pragmas)-1 {
			end = pragmas[i+1].Position[0]
		}

		var items []ast.PragmaItem
		rangeItems := d.parseRange(string(document[start:end]), start, false)
		if rangeItems == nil {
			d.Problems = append(d.Problems, ast.ExpectedLiteral.ToProblem(pragma.Position))
		} else {
			for _, item := range rangeItems {
				if scan.Literal.MatchString(item.Text) {
					items = append(items, ast.PragmaItem{Item: item})
					continue
				}
				if binding := searchBindingRef(item.Text, namespace); binding != nil {
					if lit, ok := binding.Item.(LiteralBindingItem); ok {
						items = append(items, ast.PragmaItem{Item: item, Value: lit.Value, HasValue: true})
					} else {
						d.Problems = append(d.Problems, ast.InvalidReferenceLiteral.ToProblem(item.Position, item.Text))
						items = append(items, ast.PragmaItem{Item: item})
					}
					continue
				}
				if i == len(pragmas)-1 {
					// the rest of the text belongs to the sources
					break
				}
				items = append(items, ast.PragmaItem{Item: item})
				d.Problems = append(d.Problems, ast.UndefinedIdentifier.ToProblem(item.Position, item.Text))
			}
		}

		if len(items) == 0 {
			d.Problems = append(d.Problems, ast.ExpectedLiteral.ToProblem(pragma.Position))
			if err := scan.FillIn(document, pragma.Position); err != nil {
				return err
			}
		} else {
			last := items[len(items)-1].Item.Position[1]
			if err := scan.FillIn(document, ast.Offsets{pragma.Position[0], last}); err != nil {
				return err
			}
		}
		d.Pragmas = append(d.Pragmas, ast.PragmaStatement{Keyword: pragma, Items: items})
	}

	for i, pragma := range d.Pragmas {
		if i == 0 {
			// a pragma below any line content is no longer a head statement
			if strings.Contains(string(document[:pragma.Keyword.Position[0]]), ":") {
				d.Problems = append(d.Problems, ast.UnexpectedPragma.ToProblem(pragmaSpan(pragma)))
			}
			continue
		}
		d.Problems = append(d.Problems, ast.UnexpectedPragma.ToProblem(pragmaSpan(pragma)))
	}
	return nil
}

func pragmaSpan(p ast.PragmaStatement) ast.Offsets {
	if len(p.Items) == 0 {
		return p.Keyword.Position
	}
	return ast.Offsets{p.Keyword.Position[0], p.Items[len(p.Items)-1].Item.Position[1]}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// updateState appends a node at the current paren depth.
func (d *RainlangDocument) updateState(node ast.Node) error {
	nodes := &d.state.nodes
	for i := 0; i < d.state.depth; i++ {
		if len(*nodes) == 0 {
			return fmt.Errorf("failed to update parse state")
		}
		op, ok := (*nodes)[len(*nodes)-1].(*ast.Opcode)
		if !ok {
			return fmt.Errorf("failed to update parse state")
		}
		nodes = &op.Inputs
	}
	*nodes = append(*nodes, node)
	return nil
}

// processRHS consumes the right hand side of a line. offset is the end
// offset of the line, so the cursor is recovered from the remaining
// length as the text is consumed.
func (d *RainlangDocument) processRHS(text string, offset int, namespace Namespace, words *meta.AuthoringMeta) error {
	exp := text
	for exp != "" {
		cursor := offset - len(exp)
		switch {
		case isSpaceByte(exp[0]):
			exp = exp[1:]
		case exp[0] == '>':
			d.Problems = append(d.Problems, ast.UnexpectedClosingAngleParen.ToProblem(ast.Offsets{cursor, cursor + 1}))
			exp = exp[1:]
		case exp[0] == ')':
			if len(d.state.parens.open) > 0 {
				d.state.parens.close = append(d.state.parens.close, cursor+1)
				if err := d.processOpcode(); err != nil {
					return err
				}
				d.state.depth--
			} else {
				d.Problems = append(d.Problems, ast.UnexpectedClosingParen.ToProblem(ast.Offsets{cursor, cursor + 1}))
			}
			exp = exp[1:]
		default:
			consumed, err := d.consume(exp, cursor, namespace, words)
			if err != nil {
				return err
			}
			exp = exp[consumed:]
		}
	}
	return nil
}

// processOpcode settles the nearest open opcode once its closing paren
// has been consumed.
func (d *RainlangDocument) processOpcode() error {
	d.state.parens.open = d.state.parens.open[:len(d.state.parens.open)-1]
	if len(d.state.parens.close) == 0 {
		return fmt.Errorf("failed to parse, no closing paren")
	}
	endPosition := d.state.parens.close[len(d.state.parens.close)-1]
	d.state.parens.close = d.state.parens.close[:len(d.state.parens.close)-1]

	nodes := &d.state.nodes
	for i := 0; i < d.state.depth-1; i++ {
		if len(*nodes) == 0 {
			return fmt.Errorf("failed to update parse state")
		}
		op, ok := (*nodes)[len(*nodes)-1].(*ast.Opcode)
		if !ok {
			return fmt.Errorf("failed to update parse state")
		}
		nodes = &op.Inputs
	}
	if len(*nodes) == 0 {
		return fmt.Errorf("failed to parse, no open opcode")
	}
	op, ok := (*nodes)[len(*nodes)-1].(*ast.Opcode)
	if !ok {
		return fmt.Errorf("failed to parse, top of state is not an opcode")
	}
	op.Position[1] = endPosition
	op.Parens[1] = endPosition

	kept := d.Problems[:0]
	for _, p := range d.Problems {
		if p.Code == ast.ExpectedClosingParen &&
			p.Position[0] == op.Opcode.Position[0] &&
			p.Position[1] == op.Parens[0]+1 {
			continue
		}
		kept = append(kept, p)
	}
	d.Problems = kept
	return nil
}

// processOperand reads an opcode's <...> operand arguments. It returns
// the number of bytes consumed from exp.
func (d *RainlangDocument) processOperand(exp string, cursor int, op *ast.Opcode, namespace Namespace) int {
	closeIndex := strings.IndexByte(exp, '>')
	if closeIndex < 0 {
		d.Problems = append(d.Problems, ast.ExpectedClosingAngleBracket.ToProblem(ast.Offsets{cursor, cursor + len(exp)}))
		op.OperandArgs = &ast.OperandArg{Position: ast.Offsets{cursor, cursor + len(exp)}}
		return len(exp)
	}
	inner := exp[1:closeIndex]
	op.OperandArgs = &ast.OperandArg{Position: ast.Offsets{cursor, cursor + len(inner) + 2}}
	for _, v := range d.parseRange(inner, cursor+1, true) {
		if !scan.OperandArg.MatchString(v.Text) {
			d.Problems = append(d.Problems, ast.InvalidOperandArg.ToProblem(v.Position, v.Text))
			continue
		}
		if scan.Literal.MatchString(v.Text) {
			op.OperandArgs.Args = append(op.OperandArgs.Args, ast.OperandArgItem{
				Value:    v.Text,
				HasValue: true,
				Name:     "operand arg",
				Position: v.Position,
			})
			continue
		}
		isQuoteRef := strings.HasPrefix(v.Text, "'")
		name := v.Text
		nameOffset := v.Position[0]
		if isQuoteRef {
			name = v.Text[1:]
			nameOffset++
		}
		item := ast.OperandArgItem{
			Name:       "operand arg",
			Position:   v.Position,
			BindingID:  v.Text,
			HasBinding: true,
			IsQuote:    false,
		}
		if binding := d.searchNamespace(name, nameOffset, namespace); binding != nil {
			switch b := binding.Item.(type) {
			case ElidedBindingItem:
				d.Problems = append(d.Problems, ast.ElidedBinding.ToProblem(v.Position, name, b.Msg))
			case LiteralBindingItem:
				if isQuoteRef {
					d.Problems = append(d.Problems, ast.InvalidLiteralQuote.ToProblem(v.Position, name))
				} else {
					item.Value = b.Value
					item.HasValue = true
				}
			case QuoteBindingItem:
				item.IsQuote = true
				for _, p := range binding.Problems {
					d.Problems = append(d.Problems, ast.Problem{Msg: p.Msg, Position: v.Position, Code: p.Code})
				}
				d.Dependencies = append(d.Dependencies, name)
			case ExpBindingItem:
				if isQuoteRef {
					d.Dependencies = append(d.Dependencies, name)
				} else {
					d.Problems = append(d.Problems, ast.InvalidReferenceAll.ToProblem(v.Position, name))
				}
			}
		} else if isQuoteRef {
			d.Problems = append(d.Problems, ast.UndefinedQuote.ToProblem(v.Position, name))
		} else {
			d.Problems = append(d.Problems, ast.UndefinedIdentifier.ToProblem(v.Position, name))
		}
		op.OperandArgs.Args = append(op.OperandArgs.Args, item)
	}
	return closeIndex + 1
}

// parseRange tokenizes a stretch of text, joining string and sub parser
// literals that span whitespace. With validate set, an unterminated
// literal is a problem and voids the whole range.
func (d *RainlangDocument) parseRange(text string, offset int, validate bool) []ast.ParsedItem {
	var result []ast.ParsedItem
	items := scan.Inclusive(text, scan.Any, 0)
	for idx := 0; idx < len(items); idx++ {
		item := items[idx]
		joined, ok := d.joinSpanning(text, items, &idx, item, offset, validate, '"', '"')
		if !ok {
			return nil
		}
		if joined != nil {
			result = append(result, *joined)
			continue
		}
		joined, ok = d.joinSpanning(text, items, &idx, item, offset, validate, '[', ']')
		if !ok {
			return nil
		}
		if joined != nil {
			result = append(result, *joined)
			continue
		}
		result = append(result, ast.ParsedItem{
			Text:     item.Text,
			Position: ast.Offsets{item.Position[0] + offset, item.Position[1] + offset},
		})
	}
	return result
}

// joinSpanning merges the tokens of a whitespace-spanning string or sub
// parser literal into one item. It returns (nil, true) when item does
// not open such a literal.
func (d *RainlangDocument) joinSpanning(text string, items []ast.ParsedItem, idx *int, item ast.ParsedItem, offset int, validate bool, open, close byte) (*ast.ParsedItem, bool) {
	if item.Text[0] != open || (len(item.Text) > 1 && item.Text[len(item.Text)-1] == close) {
		return nil, true
	}
	start := item.Position[0]
	end := len(text)
	hasNoEnd := true
	for *idx+1 < len(items) {
		*idx++
		if items[*idx].Text[len(items[*idx].Text)-1] == close {
			hasNoEnd = false
			end = items[*idx].Position[1]
			break
		}
	}
	pos := ast.Offsets{start + offset, end + offset}
	if hasNoEnd && validate {
		code := ast.UnexpectedStringLiteralEnd
		if open == '[' {
			code = ast.UnexpectedSubParserEnd
		}
		d.Problems = append(d.Problems, code.ToProblem(pos))
		return nil, false
	}
	return &ast.ParsedItem{Text: text[start:end], Position: pos}, true
}

// consume reads the next token of the RHS and turns it into a node.
func (d *RainlangDocument) consume(text string, cursor int, namespace Namespace, words *meta.AuthoringMeta) (int, error) {
	exp := text
	boundary := strings.IndexAny(exp, "()<> \t\r\n")
	next, remaining, offset := exp, "", len(exp)
	if boundary >= 0 {
		next, remaining, offset = exp[:boundary], exp[boundary:], boundary
	}
	nextPos := ast.Offsets{cursor, cursor + len(next)}

	if consumed, handled, err := d.consumeSpanningLiteral(exp, next, remaining, cursor, '"', ast.UnexpectedStringLiteralEnd); handled || err != nil {
		return consumed, err
	}
	if consumed, handled, err := d.consumeSpanningLiteral(exp, next, remaining, cursor, '[', ast.UnexpectedSubParserEnd); handled || err != nil {
		return consumed, err
	}

	if strings.HasPrefix(remaining, "(") || strings.HasPrefix(remaining, "<") {
		op := &ast.Opcode{
			Opcode:   ast.OpcodeDetails{Name: next, Position: nextPos},
			Position: ast.Offsets{nextPos[0], 0},
			Parens:   ast.Offsets{1, 0},
		}
		switch {
		case next == "":
			d.Problems = append(d.Problems, ast.ExpectedOpcode.ToProblem(nextPos))
		case scan.Word.MatchString(next):
			if word, ok := words.FindWord(next); ok {
				op.Opcode.Description = word.Description
			} else if alias, ok := words.FindContextAlias(next); ok {
				op.Opcode.Description = alias.Description
				loc := &ast.ContextLocation{Column: alias.Column}
				if alias.Row >= 0 {
					loc.Row = alias.Row
					loc.HasRow = true
				}
				op.IsCtx = loc
			}
		case strings.Contains(next, "."):
			if loc, desc, ok := resolveContextHead(next, words); ok {
				op.Opcode.Description = desc
				op.IsCtx = loc
			} else {
				d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(nextPos, next))
			}
		default:
			d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(nextPos, next))
		}

		if strings.HasPrefix(remaining, "<") {
			consumed := d.processOperand(remaining, cursor+len(next), op, namespace)
			offset += consumed
			remaining = remaining[consumed:]
		}
		if strings.HasPrefix(remaining, "(") {
			pos := nextPos[1]
			if op.OperandArgs != nil {
				pos = op.OperandArgs.Position[1]
			}
			offset++
			d.state.parens.open = append(d.state.parens.open, pos)
			op.Parens[0] = pos
			if err := d.updateState(op); err != nil {
				return 0, err
			}
			d.state.depth++
			d.Problems = append(d.Problems, ast.ExpectedClosingParen.ToProblem(ast.Offsets{nextPos[0], pos + 1}))
		} else {
			d.Problems = append(d.Problems, ast.ExpectedOpeningParen.ToProblem(nextPos))
		}
		return offset, nil
	}

	switch {
	case strings.Contains(next, "."):
		if binding := d.searchNamespace(next, cursor, namespace); binding != nil {
			switch b := binding.Item.(type) {
			case LiteralBindingItem:
				return offset, d.updateState(&ast.Literal{Value: b.Value, Position: nextPos, ID: next})
			case ElidedBindingItem:
				d.Problems = append(d.Problems, ast.ElidedBinding.ToProblem(nextPos, next, b.Msg))
			default:
				d.Problems = append(d.Problems, ast.InvalidReferenceLiteral.ToProblem(nextPos, next))
			}
		}
		return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
	case scan.Numeric.MatchString(next):
		if scan.Hex.MatchString(next) && len(next)%2 == 1 {
			d.Problems = append(d.Problems, ast.OddLenHex.ToProblem(nextPos))
		}
		if !scan.InRangeU256(next) {
			d.Problems = append(d.Problems, ast.OutOfRangeValue.ToProblem(nextPos))
		}
		return offset, d.updateState(&ast.Literal{Value: next, Position: nextPos})
	case scan.StringLiteral.MatchString(next) || scan.SubParserLiteral.MatchString(next):
		return offset, d.updateState(&ast.Literal{Value: next, Position: nextPos})
	case scan.Word.MatchString(next):
		if d.isInScopeAlias(next) {
			return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
		}
		item, ok := namespace[next]
		if !ok {
			d.Problems = append(d.Problems, ast.UndefinedWord.ToProblem(nextPos, next))
			return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
		}
		leaf, isLeaf := item.(*NamespaceLeaf)
		if !isLeaf {
			d.Problems = append(d.Problems, ast.InvalidNamespaceReference.ToProblem(nextPos, next))
			return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
		}
		switch b := leaf.Element.Item.(type) {
		case LiteralBindingItem:
			return offset, d.updateState(&ast.Literal{Value: b.Value, Position: nextPos, ID: next})
		case ElidedBindingItem:
			d.Problems = append(d.Problems, ast.ElidedBinding.ToProblem(nextPos, next, b.Msg))
		default:
			d.Problems = append(d.Problems, ast.InvalidReferenceLiteral.ToProblem(nextPos, next))
		}
		return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
	default:
		d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(nextPos, next))
		return offset, d.updateState(&ast.Alias{Name: next, Position: nextPos})
	}
}

// consumeSpanningLiteral handles a string or sub parser literal that
// spans token boundaries at the top level of the RHS.
func (d *RainlangDocument) consumeSpanningLiteral(exp, next, remaining string, cursor int, open byte, code ast.ErrorCode) (int, bool, error) {
	if len(next) == 0 || next[0] != open {
		return 0, false, nil
	}
	close := byte('"')
	if open == '[' {
		close = ']'
	}
	if len(next) > 1 && next[len(next)-1] == close {
		return 0, false, nil
	}
	if end := strings.IndexByte(remaining, close); end >= 0 {
		consumed := end + len(next) + 1
		err := d.updateState(&ast.Literal{
			Value:    exp[:consumed],
			Position: ast.Offsets{cursor, cursor + consumed},
		})
		return consumed, true, err
	}
	d.Problems = append(d.Problems, code.ToProblem(ast.Offsets{cursor, cursor + len(exp)}))
	err := d.updateState(&ast.Literal{
		Value:    exp,
		Position: ast.Offsets{cursor, cursor + len(exp)},
	})
	return len(exp), true, err
}

func (d *RainlangDocument) isInScopeAlias(name string) bool {
	if len(d.AST) == 0 {
		return false
	}
	for _, line := range d.AST[len(d.AST)-1].Lines {
		for _, alias := range line.Aliases {
			if alias.Name == name {
				return true
			}
		}
	}
	return false
}

// resolveContextHead resolves a two-component column.row opcode head
// against the known context aliases.
func resolveContextHead(name string, words *meta.AuthoringMeta) (*ast.ContextLocation, string, bool) {
	head, tail, found := strings.Cut(name, ".")
	if !found || strings.Contains(tail, ".") {
		return nil, "", false
	}
	alias, ok := words.FindContextAlias(head)
	if !ok {
		return nil, "", false
	}
	row, err := strconv.Atoi(tail)
	if err != nil || row < 0 {
		return nil, "", false
	}
	return &ast.ContextLocation{Column: alias.Column, Row: row, HasRow: true}, alias.Description, true
}

// searchNamespace resolves a dotted path to a binding, recording a
// problem when the path goes nowhere.
func (d *RainlangDocument) searchNamespace(query string, offset int, namespace Namespace) *Binding {
	segments := scan.Exclusive(query, scan.NamespaceSegment, offset, true)
	if strings.HasPrefix(query, ".") {
		segments = segments[1:]
	}
	if len(segments) > 32 {
		d.Problems = append(d.Problems, ast.DeepNamespace.ToProblem(ast.Offsets{offset, offset + len(query)}))
		return nil
	}
	if len(segments) == 0 || segments[len(segments)-1].Text == "" {
		pos := ast.Offsets{offset, offset + len(query)}
		if len(segments) > 0 {
			pos = segments[len(segments)-1].Position
		}
		d.Problems = append(d.Problems, ast.UnexpectedNamespacePath.ToProblem(pos))
		return nil
	}
	invalid := false
	for _, segment := range segments {
		if !scan.Word.MatchString(segment.Text) {
			d.Problems = append(d.Problems, ast.InvalidWordPattern.ToProblem(segment.Position, segment.Text))
			invalid = true
		}
	}
	if invalid {
		return nil
	}

	item, ok := namespace[segments[0].Text]
	if !ok {
		d.Problems = append(d.Problems, ast.UndefinedNamespaceMember.ToProblem(segments[0].Position, segments[0].Text))
		return nil
	}
	for _, segment := range segments[1:] {
		node, isNode := item.(Namespace)
		if !isNode {
			d.Problems = append(d.Problems, ast.UndefinedNamespaceMember.ToProblem(segment.Position, segment.Text))
			return nil
		}
		item, ok = node[segment.Text]
		if !ok {
			d.Problems = append(d.Problems, ast.UndefinedNamespaceMember.ToProblem(segment.Position, segment.Text))
			return nil
		}
	}
	leaf, isLeaf := item.(*NamespaceLeaf)
	if !isLeaf {
		d.Problems = append(d.Problems, ast.InvalidNamespaceReference.ToProblem(
			ast.Offsets{offset, offset + len(query)}, segments[len(segments)-1].Text))
		return nil
	}
	return &leaf.Element
}

// suppressIgnoredLines drops every problem whose start line is exactly
// one line after a comment carrying the ignore-next-line tag.
func suppressIgnoredLines(text string, comments []ast.Comment, problems []ast.Problem) []ast.Problem {
	for _, cm := range comments {
		if !scan.IgnoreNextLine.MatchString(cm.Comment) {
			continue
		}
		line := scan.LineNumber(text, cm.Position[1])
		kept := problems[:0]
		for _, p := range problems {
			if scan.LineNumber(text, p.Position[0]) == line+1 {
				continue
			}
			kept = append(kept, p)
		}
		problems = kept
	}
	return problems
}
