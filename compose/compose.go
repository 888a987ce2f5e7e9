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

// Package compose emits a single rainlang text from a parsed dotrain
// document and a set of entrypoint binding names: it selects the
// transitive expression bindings, assigns each a compact index, rewrites
// quote references to those indices and validates the result by
// re-parsing it.
package compose

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/parse"
	"github.com/rainlanguage/dotrain/rewrite"
	"github.com/rainlanguage/dotrain/scan"
)

// CompileError is the closed failure taxonomy of composition: either a
// structural rejection with a reason, or surfaced problems with
// composer-normalized positions.
type CompileError struct {
	Reject   string
	Problems []ast.Problem
}

// Error renders the failure for operational logs.
func (e *CompileError) Error() string {
	if e.Reject != "" {
		return e.Reject
	}
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = fmt.Sprintf("%s at [%d, %d)", p.Msg, p.Position[0], p.Position[1])
	}
	return strings.Join(msgs, "; ")
}

func reject(format string, args ...any) *CompileError {
	return &CompileError{Reject: fmt.Sprintf(format, args...)}
}

// target is one binding selected into the composition pipeline.
type target struct {
	name        string
	hash        string
	importIndex int
	content     string
	rainlang    *parse.RainlangDocument
}

// Compose builds the rainlang text for the given entrypoints of a parsed
// document. The document must have no top level problems.
func Compose(doc *parse.RainDocument, entrypoints []string) (string, error) {
	if len(entrypoints) == 0 {
		return "", reject("no entrypoints specified")
	}
	if len(doc.Problems) > 0 {
		return "", &CompileError{Problems: append([]ast.Problem{}, doc.Problems...)}
	}

	var targets []target
	for _, ep := range entrypoints {
		t, cerr := selectBinding(doc, ep, false)
		if cerr != nil {
			return "", cerr
		}
		targets = append(targets, *t)
	}

	// close over the quoted dependencies, keeping stable insertion order
	for i := 0; i < len(targets); i++ {
		for _, dep := range targets[i].rainlang.Dependencies {
			if hasTarget(targets, dep) {
				continue
			}
			t, cerr := selectBinding(doc, dep, true)
			if cerr != nil {
				return "", cerr
			}
			targets = append(targets, *t)
		}
	}

	indexes := map[string]int{}
	for i, t := range targets {
		if _, taken := indexes[t.name]; !taken {
			indexes[t.name] = i
		}
	}

	parts := make([]string, len(targets))
	for i, t := range targets {
		script := rewrite.NewScript(t.content)
		for _, src := range t.rainlang.AST {
			for _, line := range src.Lines {
				if err := rewriteNodes(line.Nodes, script, indexes); err != nil {
					return "", err
				}
			}
		}
		parts[i] = script.String()
	}
	composed := strings.Join(parts, "\n")

	// construction guarantees well-formedness; the re-parse is the last
	// safety check
	check := parse.NewRainlangDocument(composed, parse.Namespace{}, doc.KnownWords())
	if len(check.Problems) > 0 {
		return "", &CompileError{Problems: check.Problems}
	}
	return composed, nil
}

// Text parses a text with remote meta search enabled and composes the
// given entrypoints.
func Text(ctx context.Context, text string, entrypoints []string, store *meta.Store, knownWords *meta.AuthoringMeta) (string, error) {
	return Compose(parse.Create(ctx, text, store, knownWords, nil), entrypoints)
}

// TextCached parses a text against cached metas only and composes the
// given entrypoints.
func TextCached(text string, entrypoints []string, store *meta.Store, knownWords *meta.AuthoringMeta) (string, error) {
	return Compose(parse.CreateCached(text, store, knownWords, nil), entrypoints)
}

func hasTarget(targets []target, name string) bool {
	for _, t := range targets {
		if t.name == name {
			return true
		}
	}
	return false
}

// selectBinding resolves a name to an expression binding, re-parses its
// content against its own namespace and surfaces any problems at the
// import site that brought the binding in.
func selectBinding(doc *parse.RainDocument, name string, asDependency bool) (*target, *CompileError) {
	parent, leaf, why := searchNamespace(name, doc.Namespace)
	if why != "" {
		if asDependency {
			return nil, reject("dependency binding: %s", why)
		}
		return nil, reject("%s", why)
	}
	binding := &leaf.Element
	if len(binding.Problems) > 0 {
		return nil, &CompileError{Problems: normalize(binding.Problems, leaf.ImportIndex, doc)}
	}
	rainlang := parse.NewRainlangDocument(binding.Content, parent, doc.KnownWords())
	if len(rainlang.Problems) > 0 {
		return nil, &CompileError{Problems: normalize(rainlang.Problems, leaf.ImportIndex, doc)}
	}
	return &target{
		name:        binding.Name,
		hash:        leaf.Hash,
		importIndex: leaf.ImportIndex,
		content:     binding.Content,
		rainlang:    rainlang,
	}, nil
}

// normalize re-maps problems of an imported binding to the hash position
// of the import that brought it in, so errors land at the import site
// rather than inside an opaque nested document.
func normalize(problems []ast.Problem, importIndex int, doc *parse.RainDocument) []ast.Problem {
	out := make([]ast.Problem, len(problems))
	for i, p := range problems {
		position := p.Position
		if importIndex >= 0 && importIndex < len(doc.Imports) {
			position = doc.Imports[importIndex].HashPosition
		}
		out[i] = ast.Problem{Msg: p.Msg, Position: position, Code: p.Code}
	}
	return out
}

// searchNamespace resolves a dotted entrypoint path to an expression
// binding leaf. The returned string is the rejection reason on failure.
func searchNamespace(name string, namespace parse.Namespace) (parse.Namespace, *parse.NamespaceLeaf, string) {
	path := strings.TrimPrefix(name, ".")
	if path == "" {
		return nil, nil, fmt.Sprintf("undefined identifier: %s", name)
	}
	segments := strings.Split(path, ".")
	if len(segments) > 32 {
		return nil, nil, "namespace too deep"
	}
	if segments[len(segments)-1] == "" {
		return nil, nil, "expected to end with a node"
	}
	for _, segment := range segments {
		if !scan.Word.MatchString(segment) {
			return nil, nil, fmt.Sprintf("invalid word pattern: %s", name)
		}
	}
	current := namespace
	for i, segment := range segments {
		item, ok := current[segment]
		if !ok {
			return nil, nil, fmt.Sprintf("undefined identifier: %s", name)
		}
		if i == len(segments)-1 {
			leaf, isLeaf := item.(*parse.NamespaceLeaf)
			if !isLeaf {
				return nil, nil, fmt.Sprintf("invalid entrypoint: %s, entrypoints must be bindings", name)
			}
			switch b := leaf.Element.Item.(type) {
			case parse.ExpBindingItem:
				return current, leaf, ""
			case parse.ElidedBindingItem:
				return nil, nil, fmt.Sprintf("elided entrypoint: %s, %s", name, b.Msg)
			case parse.LiteralBindingItem:
				return nil, nil, fmt.Sprintf("invalid entrypoint: %s, literals cannot be entrypoints", name)
			default:
				return nil, nil, fmt.Sprintf("invalid entrypoint: %s, quotes cannot be entrypoints", name)
			}
		}
		node, isNode := item.(parse.Namespace)
		if !isNode {
			return nil, nil, fmt.Sprintf("undefined identifier: %s", name)
		}
		current = node
	}
	return nil, nil, fmt.Sprintf("undefined identifier: %s", name)
}

// rewriteNodes applies the composer's edits for a node tree: canonical
// hex, named constants inlined, quote references re-indexed and context
// aliases expanded.
func rewriteNodes(nodes []ast.Node, script *rewrite.Script, indexes map[string]int) *CompileError {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Literal:
			if scan.Hex.MatchString(n.Value) && len(n.Value)%2 == 1 {
				if err := script.Overwrite(n.Position[0], n.Position[1], "0x0"+n.Value[2:]); err != nil {
					return reject("could not build sourcemap")
				}
			} else if n.ID != "" {
				if err := script.Overwrite(n.Position[0], n.Position[1], n.Value); err != nil {
					return reject("could not build sourcemap")
				}
			}
		case *ast.Opcode:
			if cerr := rewriteOpcode(n, script, indexes); cerr != nil {
				return cerr
			}
			if cerr := rewriteNodes(n.Inputs, script, indexes); cerr != nil {
				return cerr
			}
		}
	}
	return nil
}

func rewriteOpcode(op *ast.Opcode, script *rewrite.Script, indexes map[string]int) *CompileError {
	if op.IsCtx != nil {
		if err := script.Overwrite(op.Opcode.Position[0], op.Opcode.Position[1], "context"); err != nil {
			return reject("could not build sourcemap")
		}
		switch {
		case op.OperandArgs != nil && !op.IsCtx.HasRow:
			// slot the column in right after the opening angle bracket
			if err := script.AppendLeft(op.Opcode.Position[1]+1, strconv.Itoa(op.IsCtx.Column)+" "); err != nil {
				return reject("could not build sourcemap")
			}
		case op.OperandArgs == nil && op.IsCtx.HasRow:
			arg := fmt.Sprintf("<%d %d>", op.IsCtx.Column, op.IsCtx.Row)
			if err := script.AppendLeft(op.Opcode.Position[1], arg); err != nil {
				return reject("could not build sourcemap")
			}
		}
	}
	if op.OperandArgs == nil {
		return nil
	}
	for _, arg := range op.OperandArgs.Args {
		if !arg.HasBinding {
			continue
		}
		if arg.HasValue {
			// a named constant reference collapses to its value
			if err := script.Overwrite(arg.Position[0], arg.Position[1], arg.Value); err != nil {
				return reject("could not build sourcemap")
			}
			continue
		}
		name := strings.TrimPrefix(arg.BindingID, "'")
		index, ok := indexes[name]
		if !ok {
			return reject("cannot resolve dependencies")
		}
		if err := script.Overwrite(arg.Position[0], arg.Position[1], strconv.Itoa(index)); err != nil {
			return reject("could not build sourcemap")
		}
	}
	return nil
}
