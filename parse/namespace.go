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
	"strings"

	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/scan"
)

// BindingItem is the content of a binding: a literal, an elision, a
// quote of another binding, or a rainlang expression. The set of
// implementations is closed.
type BindingItem interface {
	isBindingItem()
}

// LiteralBindingItem is a literal-valued binding.
type LiteralBindingItem struct {
	Value string
}

// ElidedBindingItem is a placeholder binding that must be rebound before
// use. Msg is shown when the binding is referenced.
type ElidedBindingItem struct {
	Msg string
}

// QuoteBindingItem refers to another binding by name.
type QuoteBindingItem struct {
	Quote string
}

// ExpBindingItem is a rainlang expression binding.
type ExpBindingItem struct {
	Document *RainlangDocument
}

func (LiteralBindingItem) isBindingItem() {}
func (ElidedBindingItem) isBindingItem()  {}
func (QuoteBindingItem) isBindingItem()   {}
func (ExpBindingItem) isBindingItem()     {}

// Binding is a named element of a document's root namespace.
type Binding struct {
	Name            string
	NamePosition    ast.Offsets
	Content         string
	ContentPosition ast.Offsets
	Position        ast.Offsets
	Problems        []ast.Problem
	Item            BindingItem
}

// IsExp reports whether the binding is an expression binding.
func (b *Binding) IsExp() bool {
	_, ok := b.Item.(ExpBindingItem)
	return ok
}

// NamespaceItem is either a *NamespaceLeaf or a Namespace node.
type NamespaceItem interface {
	isNamespaceItem()
}

// NamespaceLeaf owns a binding together with the import it came from.
// ImportIndex is -1 for bindings declared in the document itself.
type NamespaceLeaf struct {
	Hash        string
	ImportIndex int
	Element     Binding
}

// Namespace maps segment names to leaves and nested namespaces. Keys are
// unique per level; leaves and nodes never share a key.
type Namespace map[string]NamespaceItem

func (*NamespaceLeaf) isNamespaceItem() {}
func (Namespace) isNamespaceItem()      {}

// IsLeaf reports whether a namespace item is a leaf.
func IsLeaf(item NamespaceItem) bool {
	_, ok := item.(*NamespaceLeaf)
	return ok
}

// CopyNamespace deep-copies a namespace, stamping every leaf with the
// importing statement's index. Leaves without a hash inherit the
// importing statement's hash; leaves that already carry one keep it.
func CopyNamespace(ns Namespace, importIndex int, hash string) Namespace {
	out := make(Namespace, len(ns))
	for key, item := range ns {
		switch v := item.(type) {
		case *NamespaceLeaf:
			leafHash := v.Hash
			if leafHash == "" {
				leafHash = hash
			}
			out[key] = &NamespaceLeaf{
				Hash:        leafHash,
				ImportIndex: importIndex,
				Element:     v.Element,
			}
		case Namespace:
			out[key] = CopyNamespace(v, importIndex, hash)
		}
	}
	return out
}

// CheckNamespace reports the collision code preventing new from merging
// into main, if any. An empty main absorbs anything.
func CheckNamespace(new, main Namespace) (ast.ErrorCode, bool) {
	if len(main) == 0 {
		return 0, false
	}
	for key, newItem := range new {
		mainItem, ok := main[key]
		if !ok {
			continue
		}
		newIsLeaf := IsLeaf(newItem)
		mainIsLeaf := IsLeaf(mainItem)
		switch {
		case !newIsLeaf && !mainIsLeaf:
			if code, collides := CheckNamespace(newItem.(Namespace), mainItem.(Namespace)); collides {
				return code, true
			}
		case newIsLeaf && mainIsLeaf:
			return ast.CollidingNamespaceNodes, true
		default:
			return ast.OccupiedNamespace, true
		}
	}
	return 0, false
}

// mergeInto unites new into main: disjoint keys are inserted, matching
// nodes recurse. Callers must have run CheckNamespace first.
func mergeInto(new, main Namespace) {
	if len(main) == 0 {
		for key, item := range new {
			main[key] = item
		}
		return
	}
	for key, item := range new {
		have, ok := main[key]
		if !ok {
			main[key] = item
		} else if !IsLeaf(item) && !IsLeaf(have) {
			mergeInto(item.(Namespace), have.(Namespace))
		}
	}
}

// Rebind is one caller-supplied override: a dotted namespace path and
// the literal or quote value to bind it to.
type Rebind struct {
	Key   string
	Value string
}

// applyRebinds applies runtime rebinds to the namespace. A bad rebind
// aborts the whole application with an error; rebinds are all-or-nothing
// the same way supplied configuration is.
func applyRebinds(rebinds []Rebind, namespace Namespace) error {
	for _, rebind := range rebinds {
		// each rebind's quote gets its own single level of indirection
		limit := 1
		value := strings.TrimSpace(rebind.Value)
		if !scan.NamespacePath.MatchString(rebind.Key) {
			return fmt.Errorf("invalid rebind key: %s", rebind.Key)
		}

		var item BindingItem
		if literal, _, hasErr, ok := isLiteral(value); ok {
			if hasErr {
				return fmt.Errorf("invalid rebind value: %s", value)
			}
			item = LiteralBindingItem{Value: literal}
		} else if quote, rest, ok := isQuote(value, 0); ok {
			if len(rest) > 0 {
				return fmt.Errorf("invalid rebind value: %s", value)
			}
			item = QuoteBindingItem{Quote: quote}
		} else {
			return fmt.Errorf("invalid rebind value: %s", value)
		}

		segments := scan.Exclusive(rebind.Key, scan.NamespaceSegment, 0, true)
		if strings.HasPrefix(rebind.Key, ".") {
			segments = segments[1:]
		}
		if len(segments) == 0 || segments[len(segments)-1].Text == "" {
			return fmt.Errorf("invalid key, expected to end with a node: %s", rebind.Key)
		}
		if len(segments) > 1 {
			return fmt.Errorf("rebind too deep: %s", rebind.Key)
		}
		name := segments[0].Text

		var problems []ast.Problem
		if existing, ok := namespace[name]; ok {
			leaf, isLeaf := existing.(*NamespaceLeaf)
			if !isLeaf {
				return fmt.Errorf("undefined identifier: %s in key: %s", name, rebind.Key)
			}
			if q, isQuoteItem := item.(QuoteBindingItem); isQuoteItem {
				problems = validateQuote(namespace, q, name, leaf.Element.NamePosition, &limit)
			}
			if leaf.Element.IsExp() {
				kind := "quotes"
				if _, isLit := item.(LiteralBindingItem); isLit {
					kind = "literals"
				}
				return fmt.Errorf("invalid rebinding: cannot rebind rainlang expression bindings to %s: %s", kind, rebind.Key)
			}
			leaf.Element.Item = item
			leaf.Element.Problems = problems
			continue
		}
		if q, isQuoteItem := item.(QuoteBindingItem); isQuoteItem {
			problems = validateQuote(namespace, q, name, ast.Offsets{0, 0}, &limit)
		}
		namespace[name] = &NamespaceLeaf{
			Hash:        "",
			ImportIndex: -1,
			Element: Binding{
				Name:     name,
				Content:  value,
				Problems: problems,
				Item:     item,
			},
		}
	}
	return nil
}

// validateQuote checks a quote binding's target chain within the
// indirection limit.
func validateQuote(namespace Namespace, q QuoteBindingItem, key string, position ast.Offsets, limit *int) []ast.Problem {
	if key == q.Quote {
		return []ast.Problem{ast.CircularDependency.ToProblem(position)}
	}
	if p := deepReadQuote(q.Quote, namespace, []string{key, q.Quote}, limit, position); p != nil {
		return []ast.Problem{*p}
	}
	return nil
}

// deepReadQuote follows a quote target through the namespace, failing on
// unknown targets, revisited names, and chains longer than the limit.
func deepReadQuote(target string, namespace Namespace, chain []string, limit *int, position ast.Offsets) *ast.Problem {
	item, ok := namespace[target]
	if !ok {
		p := ast.UndefinedQuote.ToProblem(position, target)
		return &p
	}
	leaf, isLeaf := item.(*NamespaceLeaf)
	if !isLeaf {
		p := ast.UndefinedQuote.ToProblem(position, target)
		return &p
	}
	switch v := leaf.Element.Item.(type) {
	case QuoteBindingItem:
		if *limit <= 0 {
			p := ast.CircularDependency.ToProblem(position)
			return &p
		}
		for _, seen := range chain {
			if seen == v.Quote {
				p := ast.CircularDependency.ToProblem(position)
				return &p
			}
		}
		*limit--
		return deepReadQuote(v.Quote, namespace, append(chain, v.Quote), limit, position)
	default:
		return nil
	}
}

// searchBindingRef resolves a dotted path to a binding without recording
// problems. It is the lookup used by pragma argument resolution.
func searchBindingRef(query string, namespace Namespace) *Binding {
	path := query
	if strings.HasPrefix(path, ".") {
		path = path[1:]
	}
	if path == "" {
		return nil
	}
	segments := strings.Split(path, ".")
	var current NamespaceItem
	ns := namespace
	for i, segment := range segments {
		item, ok := ns[segment]
		if !ok {
			return nil
		}
		current = item
		if i < len(segments)-1 {
			node, isNode := item.(Namespace)
			if !isNode {
				return nil
			}
			ns = node
		}
	}
	if leaf, ok := current.(*NamespaceLeaf); ok {
		return &leaf.Element
	}
	return nil
}
