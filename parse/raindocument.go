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

// Package parse turns dotrain text into its parse tree: front matter,
// comments, imports, bindings and a hierarchical namespace, with every
// problem positioned in the original text. Imports are resolved
// recursively through a shared content-addressed meta store.
package parse

import (
	"context"
	"reflect"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/scan"
)

// maxImportDepth bounds the import recursion. Statements nested deeper
// are recorded as DeepImport problems without being dispatched.
const maxImportDepth = 32

// RainDocument is a parsed .rain text: its building blocks plus the
// namespace built from its own bindings and its resolved imports.
type RainDocument struct {
	Text              string
	FrontMatterOffset int
	Error             string
	Bindings          []Binding
	Imports           []*Import
	Comments          []ast.Comment
	Problems          []ast.Problem
	ImportDepth       int
	Namespace         Namespace

	store      *meta.Store
	knownWords *meta.AuthoringMeta
}

// New returns an unparsed document. A nil store is replaced by a fresh
// default store shared with every sub-document this one imports.
func New(text string, store *meta.Store, importDepth int, knownWords *meta.AuthoringMeta) *RainDocument {
	if store == nil {
		store = meta.NewStore()
	}
	return &RainDocument{
		Text:        text,
		ImportDepth: importDepth,
		Namespace:   Namespace{},
		store:       store,
		knownWords:  knownWords,
	}
}

// Create builds and parses a root document with remote meta search
// enabled. The context bounds in-flight subgraph searches.
func Create(ctx context.Context, text string, store *meta.Store, knownWords *meta.AuthoringMeta, rebinds []Rebind) *RainDocument {
	d := New(text, store, 0, knownWords)
	d.Parse(ctx, true, rebinds)
	return d
}

// CreateCached builds and parses a root document against cached metas
// only. It never suspends on the network.
func CreateCached(text string, store *meta.Store, knownWords *meta.AuthoringMeta, rebinds []Rebind) *RainDocument {
	d := New(text, store, 0, knownWords)
	d.Parse(context.Background(), false, rebinds)
	return d
}

// GetFrontMatter returns the front matter of a dotrain text without
// parsing it, or false when there is no separator.
func GetFrontMatter(text string) (string, bool) {
	if idx := strings.Index(text, scan.FrontMatterSeparator); idx >= 0 {
		return text[:idx], true
	}
	return "", false
}

// FrontMatter returns this document's front matter.
func (d *RainDocument) FrontMatter() string {
	return d.Text[:d.FrontMatterOffset]
}

// Body returns the text after the front matter separator.
func (d *RainDocument) Body() string {
	if d.FrontMatterOffset == 0 && !strings.HasPrefix(d.Text, scan.FrontMatterSeparator) {
		return d.Text
	}
	return d.Text[d.FrontMatterOffset+len(scan.FrontMatterSeparator):]
}

// Store returns the meta store shared with this document's imports.
func (d *RainDocument) Store() *meta.Store { return d.store }

// KnownWords returns the authoring words table, if any.
func (d *RainDocument) KnownWords() *meta.AuthoringMeta { return d.knownWords }

// RuntimeError returns the fatal error message of the last parse, if any.
func (d *RainDocument) RuntimeError() string { return d.Error }

// AllProblems returns top level and binding problems together.
func (d *RainDocument) AllProblems() []ast.Problem {
	all := append([]ast.Problem{}, d.Problems...)
	for _, b := range d.Bindings {
		all = append(all, b.Problems...)
	}
	return all
}

// BindingProblems returns the problems of all bindings.
func (d *RainDocument) BindingProblems() []ast.Problem {
	var all []ast.Problem
	for _, b := range d.Bindings {
		all = append(all, b.Problems...)
	}
	return all
}

// Update replaces the text and re-parses against cached metas only.
func (d *RainDocument) Update(newText string, rebinds []Rebind) {
	d.Text = newText
	d.Parse(context.Background(), false, rebinds)
}

// UpdateAsync replaces the text and re-parses with remote search enabled.
func (d *RainDocument) UpdateAsync(ctx context.Context, newText string, rebinds []Rebind) {
	d.Text = newText
	d.Parse(ctx, true, rebinds)
}

// invalidOverrideError marks a bad caller-supplied rebind; it is
// reported as a problem rather than a fatal error.
type invalidOverrideError struct{ msg string }

func (e invalidOverrideError) Error() string { return e.msg }

// Parse parses this document's text. Non-fatal findings are collected as
// problems; a fatal condition clears the document and records a single
// RuntimeError problem.
func (d *RainDocument) Parse(ctx context.Context, remoteSearch bool, rebinds []Rebind) {
	if !scan.NonEmpty.MatchString(d.Text) {
		d.clear()
		return
	}
	if err := d.parseCore(ctx, remoteSearch, rebinds); err != nil {
		if override, ok := err.(invalidOverrideError); ok {
			d.Problems = append(d.Problems, ast.InvalidSuppliedRebindings.ToProblem(ast.Offsets{0, 0}, override.msg))
			return
		}
		d.clear()
		d.Error = err.Error()
		d.Problems = append(d.Problems, ast.RuntimeError.ToProblem(ast.Offsets{0, 0}, err.Error()))
	}
}

func (d *RainDocument) clear() {
	d.Error = ""
	d.Imports = nil
	d.Problems = nil
	d.Comments = nil
	d.Bindings = nil
	d.Namespace = Namespace{}
	d.FrontMatterOffset = 0
}

// parseCore takes out and processes each section of the text one after
// the other: comments, imports, bindings; then builds the namespace,
// applies rebinds, validates quotes and finally parses the expression
// bindings of the root document.
func (d *RainDocument) parseCore(ctx context.Context, remoteSearch bool, rebinds []Rebind) error {
	d.clear()
	document := []byte(d.Text)
	namespace := Namespace{}

	// an illegal character anywhere ends the parsing right away
	illegal := scan.Inclusive(string(document), scan.IllegalChar, 0)
	if len(illegal) > 0 {
		d.Problems = append(d.Problems, ast.IllegalChar.ToProblem(
			ast.Offsets{illegal[0].Position[0], illegal[0].Position[0]}, illegal[0].Text))
		return nil
	}

	// split the front matter off
	if splitter := strings.Index(d.Text, scan.FrontMatterSeparator); splitter >= 0 {
		d.FrontMatterOffset = splitter
		if err := scan.FillIn(document, ast.Offsets{0, splitter + len(scan.FrontMatterSeparator)}); err != nil {
			return err
		}
	} else {
		d.Problems = append(d.Problems, ast.NoFrontMatterSplitter.ToProblem(ast.Offsets{0, 0}))
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

	// take out import statements; an import may not contain a binding
	// marker, so cut each at any embedded "#"
	importStatements := scan.Exclusive(string(document), scan.Imports, 0, true)
	if len(importStatements) > 0 {
		importStatements = importStatements[1:]
	}
	for i := range importStatements {
		if cut := strings.IndexByte(importStatements[i].Text, '#'); cut >= 0 {
			importStatements[i].Text = importStatements[i].Text[:cut]
			importStatements[i].Position[1] = importStatements[i].Position[0] + cut
		}
		if err := scan.FillIn(document, ast.Offsets{importStatements[i].Position[0] - 1, importStatements[i].Position[1]}); err != nil {
			return err
		}
	}

	// imports may need fetching from subgraphs, so all siblings are
	// dispatched and awaited together; the results keep source order
	// regardless of completion order
	if d.ImportDepth < maxImportDepth {
		results := make([]*Import, len(importStatements))
		g, gctx := errgroup.WithContext(ctx)
		for i, statement := range importStatements {
			i, statement := i, statement
			g.Go(func() error {
				results[i] = d.processImport(gctx, statement, remoteSearch)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, imp := range results {
			if imp.Hash != "" {
				for _, seen := range d.Imports {
					if seen.Hash == imp.Hash {
						d.Problems = append(d.Problems, ast.DuplicateImport.ToProblem(imp.HashPosition))
						break
					}
				}
			}
			d.Problems = append(d.Problems, imp.Problems...)
			if imp.Configuration != nil {
				d.Problems = append(d.Problems, imp.Configuration.Problems...)
			}
			d.Imports = append(d.Imports, imp)
		}
	} else {
		for _, statement := range importStatements {
			d.Problems = append(d.Problems, ast.DeepImport.ToProblem(
				ast.Offsets{statement.Position[0] - 1, statement.Position[1]}))
		}
	}

	// prepare each import's namespace and merge into the local one
	for i, imp := range d.Imports {
		if len(imp.Problems) > 0 {
			continue
		}
		if item, occupied := namespace[imp.Name]; occupied && IsLeaf(item) {
			d.Problems = append(d.Problems, ast.OccupiedNamespace.ToProblem(imp.HashPosition))
			continue
		}
		if isDeepImport(imp) {
			d.Problems = append(d.Problems, ast.DeepImport.ToProblem(imp.HashPosition))
			continue
		}
		if imp.Sequence == nil {
			continue
		}
		prepared := Namespace{}
		if imp.Sequence.Dotrain != nil {
			prepared = CopyNamespace(imp.Sequence.Dotrain.Namespace, i, imp.Hash)
		}
		if imp.Configuration != nil {
			d.Problems = append(d.Problems, applyImportConfigs(imp.Configuration, prepared)...)
		}
		d.mergeNamespace(imp.Name, imp.HashPosition, prepared, namespace)
	}

	// take out bindings
	parsedBindings := scan.Exclusive(string(document), scan.Binding, 0, true)
	if len(parsedBindings) > 0 {
		parsedBindings = parsedBindings[1:]
	}
	for _, parsed := range parsedBindings {
		d.processBinding(parsed, namespace)
		if err := scan.FillIn(document, ast.Offsets{parsed.Position[0] - 1, parsed.Position[1]}); err != nil {
			return err
		}
	}

	// imports below the first binding are not top level anymore
	if len(d.Bindings) > 0 {
		for _, imp := range d.Imports {
			if imp.Position[0] >= d.Bindings[0].NamePosition[0] {
				d.Problems = append(d.Problems, ast.NoneTopLevelImport.ToProblem(imp.Position))
			}
		}
	}

	if len(rebinds) > 0 {
		if err := applyRebinds(rebinds, namespace); err != nil {
			return invalidOverrideError{msg: err.Error()}
		}
	}

	d.Namespace = namespace
	d.validateQuoteBindings()

	// anything left in the working text is an orphan token
	for _, leftover := range scan.Exclusive(string(document), scan.Whitespace, 0, false) {
		d.Problems = append(d.Problems, ast.UnexpectedToken.ToProblem(leftover.Position))
	}

	// expression bindings are parsed only at the root; imported ones are
	// parsed on demand when the document is composed
	if d.ImportDepth == 0 {
		for i := range d.Bindings {
			binding := &d.Bindings[i]
			if !binding.IsExp() {
				continue
			}
			rainlang := NewRainlangDocument(binding.Content, d.Namespace, d.knownWords)
			for _, p := range rainlang.Problems {
				binding.Problems = append(binding.Problems, ast.Problem{
					Msg: p.Msg,
					Position: ast.Offsets{
						p.Position[0] + binding.ContentPosition[0],
						p.Position[1] + binding.ContentPosition[0],
					},
					Code: p.Code,
				})
			}
			binding.Item = ExpBindingItem{Document: rainlang}
			d.Namespace[binding.Name] = &NamespaceLeaf{ImportIndex: -1, Element: *binding}
		}
	}

	d.Problems = suppressIgnoredLines(d.Text, d.Comments, d.Problems)
	return nil
}

// isDeepImport reports whether an import's own parse already ran into
// the depth bound, which the parent surfaces at its own level.
func isDeepImport(imp *Import) bool {
	if imp.Sequence == nil || imp.Sequence.Dotrain == nil {
		return false
	}
	for _, p := range imp.Sequence.Dotrain.Problems {
		if p.Code == ast.DeepImport {
			return true
		}
	}
	return false
}

// mergeNamespace merges a prepared imported namespace into main under
// the import's declared name; "." merges flat into the root.
func (d *RainDocument) mergeNamespace(name string, hashPosition ast.Offsets, new Namespace, main Namespace) {
	if name == "." {
		if code, collides := CheckNamespace(new, main); collides {
			d.Problems = append(d.Problems, code.ToProblem(hashPosition))
			return
		}
		mergeInto(new, main)
		return
	}
	item, ok := main[name]
	if !ok {
		main[name] = new
		return
	}
	node, isNode := item.(Namespace)
	if !isNode {
		d.Problems = append(d.Problems, ast.OccupiedNamespace.ToProblem(hashPosition))
		return
	}
	if code, collides := CheckNamespace(new, node); collides {
		d.Problems = append(d.Problems, code.ToProblem(hashPosition))
		return
	}
	mergeInto(new, node)
}

// validateQuoteBindings follows each local quote binding's target chain
// and attaches the findings to the binding's leaf.
func (d *RainDocument) validateQuoteBindings() {
	for key, item := range d.Namespace {
		leaf, ok := item.(*NamespaceLeaf)
		if !ok || leaf.ImportIndex != -1 {
			continue
		}
		quote, isQuoteBinding := leaf.Element.Item.(QuoteBindingItem)
		if !isQuoteBinding {
			continue
		}
		limit := 1
		if problems := validateQuote(d.Namespace, quote, key, leaf.Element.NamePosition, &limit); len(problems) > 0 {
			leaf.Element.Problems = problems[len(problems)-1:]
		}
	}
}

// Equal compares two documents on their observable parse state.
func (d *RainDocument) Equal(other *RainDocument) bool {
	if other == nil {
		return false
	}
	return d.Text == other.Text &&
		d.FrontMatterOffset == other.FrontMatterOffset &&
		d.ImportDepth == other.ImportDepth &&
		d.Error == other.Error &&
		reflect.DeepEqual(d.Problems, other.Problems) &&
		reflect.DeepEqual(d.Comments, other.Comments) &&
		reflect.DeepEqual(d.Bindings, other.Bindings) &&
		reflect.DeepEqual(d.Imports, other.Imports) &&
		reflect.DeepEqual(d.Namespace, other.Namespace)
}
