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

// Package ast contains the parse tree representations of rainlang expressions
// and the positioned problem model shared by the dotrain parsers.
package ast

// Offsets is a half-open [start, end) byte range into the original text.
// Every node of the parse tree records the range it was read from.
type Offsets = [2]int

// ParsedItem is a slice of text together with its absolute position.
type ParsedItem struct {
	Text     string
	Position Offsets
}

// Comment is a single /* ... */ comment.
type Comment struct {
	Comment  string
	Position Offsets
}

// Node is an element of a rainlang line's RHS: a Literal, an Opcode or
// an Alias. The set of implementations is closed.
type Node interface {
	// Pos returns the node's position in the original text.
	Pos() Offsets
	isNode()
}

// Literal is a literal value node. If the value was obtained by resolving a
// named constant, ID holds the name it was resolved from.
type Literal struct {
	Value    string
	Position Offsets
	LHSAlias []Alias
	ID       string
}

// OpcodeDetails carries an opcode's name, description and name position.
type OpcodeDetails struct {
	Name        string
	Description string
	Position    Offsets
}

// OperandArgItem is one item inside an opcode's <...> operand arguments.
// Value is empty when the item is an unresolved or quote reference;
// BindingID then holds the referenced identifier.
type OperandArgItem struct {
	Value       string
	HasValue    bool
	Name        string
	Position    Offsets
	Description string
	BindingID   string
	IsQuote     bool
	HasBinding  bool
}

// OperandArg is the full <...> operand arguments segment of an opcode.
type OperandArg struct {
	Position Offsets
	Args     []OperandArgItem
}

// ContextLocation identifies a context grid cell aliased by an opcode word.
type ContextLocation struct {
	Column int
	Row    int
	HasRow bool
}

// Opcode is an opcode call node with optional operand arguments and inputs.
type Opcode struct {
	Opcode      OpcodeDetails
	Position    Offsets
	Parens      Offsets
	Inputs      []Node
	LHSAlias    []Alias
	OperandArgs *OperandArg
	// IsCtx is set when the opcode word resolved to a context alias.
	IsCtx *ContextLocation
}

// Alias is a reference to an LHS alias, or a placeholder node for names
// that could not be resolved to anything better.
type Alias struct {
	Name     string
	Position Offsets
	LHSAlias []Alias
}

func (l *Literal) Pos() Offsets { return l.Position }
func (o *Opcode) Pos() Offsets  { return o.Position }
func (a *Alias) Pos() Offsets   { return a.Position }

func (*Literal) isNode() {}
func (*Opcode) isNode()  {}
func (*Alias) isNode()   {}

// Line is a single rainlang line: LHS aliases, a ":" and RHS nodes.
// Lines are delimited by "," within a source.
type Line struct {
	Nodes    []Node
	Aliases  []Alias
	Position Offsets
}

// Source is a ";"-terminated sequence of lines.
type Source struct {
	Lines    []Line
	Position Offsets
}

// PragmaStatement is a head-of-text `using-words-from` statement with its
// argument items. A resolved named constant carries its literal value.
type PragmaStatement struct {
	Keyword ParsedItem
	Items   []PragmaItem
}

// PragmaItem is one argument of a pragma statement.
type PragmaItem struct {
	Item ParsedItem
	// Value is the resolved literal value for named references; empty
	// for plain literals and unresolved names.
	Value    string
	HasValue bool
}
