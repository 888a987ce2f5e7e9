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
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/scan"
)

var docCmp = cmp.AllowUnexported(RainlangDocument{}, rainlangState{}, parenState{})

// frameDotrain caches a dotrain text in the store and returns its hash.
func frameDotrain(t *testing.T, store *meta.Store, text string) string {
	t.Helper()
	framed, err := meta.Encode([]meta.DocumentItem{meta.DotrainItem(text)})
	if err != nil {
		t.Fatal(err)
	}
	hash := meta.KeccakHash(framed)
	raw, err := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		t.Fatal(err)
	}
	store.UpdateWith(raw, framed)
	return hash
}

func problemCodes(problems []ast.Problem) []ast.ErrorCode {
	var codes []ast.ErrorCode
	for _, p := range problems {
		codes = append(codes, p.Code)
	}
	return codes
}

func TestParseLiteralBinding(t *testing.T) {
	doc := CreateCached("title\n---\n#const-binding 4e18\n", nil, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	if doc.FrontMatterOffset != 6 {
		t.Errorf("FrontMatterOffset = %d, want 6", doc.FrontMatterOffset)
	}
	if got, want := doc.FrontMatter(), "title\n"; got != want {
		t.Errorf("FrontMatter() = %q, want %q", got, want)
	}
	want := []Binding{{
		Name:            "const-binding",
		NamePosition:    ast.Offsets{11, 24},
		Content:         "4e18",
		ContentPosition: ast.Offsets{25, 29},
		Position:        ast.Offsets{11, 30},
		Item:            LiteralBindingItem{Value: "4e18"},
	}}
	if diff := cmp.Diff(want, doc.Bindings, docCmp); diff != "" {
		t.Errorf("bindings diff (-want +got):\n%s", diff)
	}
	leaf, ok := doc.Namespace["const-binding"].(*NamespaceLeaf)
	if !ok {
		t.Fatal("const-binding is not a namespace leaf")
	}
	if leaf.ImportIndex != -1 || leaf.Hash != "" {
		t.Errorf("leaf = %+v, want local leaf", leaf)
	}
}

func TestParseWithoutFrontMatter(t *testing.T) {
	doc := CreateCached("#x 1\n", nil, nil, nil)
	want := []ast.Problem{ast.NoFrontMatterSplitter.ToProblem(ast.Offsets{0, 0})}
	if diff := cmp.Diff(want, doc.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
	if len(doc.Bindings) != 1 || doc.Bindings[0].Name != "x" {
		t.Fatalf("bindings = %+v", doc.Bindings)
	}
	if diff := cmp.Diff(LiteralBindingItem{Value: "1"}, doc.Bindings[0].Item, docCmp); diff != "" {
		t.Errorf("binding item diff (-want +got):\n%s", diff)
	}
	if got, want := doc.Body(), "#x 1\n"; got != want {
		t.Errorf("Body() = %q, want %q", got, want)
	}
}

func TestParseElidedAndComment(t *testing.T) {
	doc := CreateCached("---\n/** doc */\n#elided-binding ! rebind before use\n", nil, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	if len(doc.Comments) != 1 || doc.Comments[0].Comment != "/** doc */" {
		t.Fatalf("comments = %+v", doc.Comments)
	}
	if len(doc.Bindings) != 1 {
		t.Fatalf("bindings = %+v", doc.Bindings)
	}
	item, ok := doc.Bindings[0].Item.(ElidedBindingItem)
	if !ok || item.Msg != "rebind before use" {
		t.Errorf("item = %+v, want elided with message", doc.Bindings[0].Item)
	}
}

func TestDefaultElisionMessage(t *testing.T) {
	doc := CreateCached("---\n#x !\n", nil, nil, nil)
	item, ok := doc.Bindings[0].Item.(ElidedBindingItem)
	if !ok || item.Msg != scan.DefaultElisionMsg {
		t.Errorf("item = %+v, want default elision message", doc.Bindings[0].Item)
	}
}

func TestElidedReferenceSurfacesMessage(t *testing.T) {
	doc := CreateCached("---\n#a ! needs rebind\n#b\n_: a;\n", nil, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected top problems: %v", doc.Problems)
	}
	var b *Binding
	for i := range doc.Bindings {
		if doc.Bindings[i].Name == "b" {
			b = &doc.Bindings[i]
		}
	}
	if b == nil {
		t.Fatal("binding b not found")
	}
	want := []ast.Problem{{Msg: "needs rebind", Position: ast.Offsets{28, 29}, Code: ast.ElidedBinding}}
	if diff := cmp.Diff(want, b.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
}

func TestQuoteCycle(t *testing.T) {
	doc := CreateCached("---\n#q 'q\n", nil, nil, nil)
	leaf, ok := doc.Namespace["q"].(*NamespaceLeaf)
	if !ok {
		t.Fatal("q is not a namespace leaf")
	}
	want := []ast.Problem{ast.CircularDependency.ToProblem(ast.Offsets{5, 6})}
	if diff := cmp.Diff(want, leaf.Element.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
}

func TestQuoteIndirectionLimit(t *testing.T) {
	// one quote-to-quote indirection is fine, a second one is not
	doc := CreateCached("---\n#target 1\n#q1 'target\n#q2 'q1\n#q3 'q2\n", nil, nil, nil)
	for _, clean := range []string{"q1", "q2"} {
		leaf := doc.Namespace[clean].(*NamespaceLeaf)
		if len(leaf.Element.Problems) != 0 {
			t.Errorf("%s problems = %v, want none", clean, leaf.Element.Problems)
		}
	}
	q3 := doc.Namespace["q3"].(*NamespaceLeaf)
	if got := problemCodes(q3.Element.Problems); len(got) != 1 || got[0] != ast.CircularDependency {
		t.Errorf("q3 problems = %v, want CircularDependency", q3.Element.Problems)
	}
}

func TestUndefinedQuote(t *testing.T) {
	doc := CreateCached("---\n#q 'nothing\n", nil, nil, nil)
	leaf := doc.Namespace["q"].(*NamespaceLeaf)
	if got := problemCodes(leaf.Element.Problems); len(got) != 1 || got[0] != ast.UndefinedQuote {
		t.Errorf("problems = %v, want UndefinedQuote", leaf.Element.Problems)
	}
}

func TestIllegalCharStopsParsing(t *testing.T) {
	doc := CreateCached("♥ #x 1", nil, nil, nil)
	want := []ast.Problem{ast.IllegalChar.ToProblem(ast.Offsets{0, 0}, "♥")}
	if diff := cmp.Diff(want, doc.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
	if len(doc.Bindings) != 0 || len(doc.Comments) != 0 {
		t.Error("expected an empty parse tree after an illegal char")
	}
}

func TestEmptyTextClearsState(t *testing.T) {
	doc := CreateCached("---\n#x 1\n", nil, nil, nil)
	doc.Update("  \n\t ", nil)
	if len(doc.Problems) != 0 || doc.Error != "" || len(doc.Bindings) != 0 || len(doc.Namespace) != 0 {
		t.Errorf("document not cleared: %+v", doc)
	}
}

func TestOddLenHexBindingStillAccepted(t *testing.T) {
	doc := CreateCached("---\n#x 0x123\n", nil, nil, nil)
	want := []ast.Problem{ast.OddLenHex.ToProblem(ast.Offsets{7, 12})}
	if diff := cmp.Diff(want, doc.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(LiteralBindingItem{Value: "0x123"}, doc.Bindings[0].Item, docCmp); diff != "" {
		t.Errorf("item diff (-want +got):\n%s", diff)
	}
}

func TestOutOfRangeBindingValue(t *testing.T) {
	doc := CreateCached("---\n#x 99999e99999\n", nil, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.OutOfRangeValue {
		t.Errorf("problems = %v, want OutOfRangeValue", doc.Problems)
	}
}

func TestDuplicateBindingIdentifier(t *testing.T) {
	doc := CreateCached("---\n#x 1\n#x 2\n", nil, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.DuplicateIdentifier {
		t.Errorf("problems = %v, want DuplicateIdentifier", doc.Problems)
	}
	if len(doc.Bindings) != 1 {
		t.Errorf("bindings = %+v, want only the first one", doc.Bindings)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	text := "---\n/* note */\n#a 1\n#b\n_: a;\n"
	first := CreateCached(text, nil, nil, nil)
	second := CreateCached(text, first.Store(), nil, nil)
	second.Update(text, nil)
	if !first.Equal(second) {
		t.Error("repeated parse of the same text differs from the first")
	}
}

func TestImportMergesNamedNamespace(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "---\n#c 2\n")
	doc := CreateCached("---\n@lib "+hash+"\n", store, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	if len(doc.Imports) != 1 {
		t.Fatalf("imports = %+v", doc.Imports)
	}
	imp := doc.Imports[0]
	if imp.Name != "lib" || imp.Hash != hash || imp.Sequence == nil || imp.Sequence.Dotrain == nil {
		t.Fatalf("import = %+v", imp)
	}
	node, ok := doc.Namespace["lib"].(Namespace)
	if !ok {
		t.Fatal("lib is not a namespace node")
	}
	leaf, ok := node["c"].(*NamespaceLeaf)
	if !ok {
		t.Fatal("lib.c is not a leaf")
	}
	if leaf.Hash != hash || leaf.ImportIndex != 0 {
		t.Errorf("leaf = %+v, want hash %s import index 0", leaf, hash)
	}
	if diff := cmp.Diff(LiteralBindingItem{Value: "2"}, leaf.Element.Item, docCmp); diff != "" {
		t.Errorf("item diff (-want +got):\n%s", diff)
	}
}

func TestImportRootMerge(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "---\n#c 2\n")
	doc := CreateCached("---\n@"+hash+"\n#exp\n_: c;\n", store, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	if _, ok := doc.Namespace["c"].(*NamespaceLeaf); !ok {
		t.Fatal("c was not merged into the root namespace")
	}
	// the expression binding resolves the imported constant
	exp := doc.Bindings[0].Item.(ExpBindingItem).Document
	lit, ok := exp.AST[0].Lines[0].Nodes[0].(*ast.Literal)
	if !ok || lit.Value != "2" || lit.ID != "c" {
		t.Errorf("node = %+v, want literal 2 resolved from c", exp.AST[0].Lines[0].Nodes[0])
	}
}

func TestDuplicateImport(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "---\n#c 2\n")
	doc := CreateCached("---\n@lib "+hash+"\n@other "+hash+"\n", store, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.DuplicateImport {
		t.Errorf("problems = %v, want DuplicateImport", doc.Problems)
	}
}

func TestImportedDocumentWithProblems(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "#c 2\n") // missing front matter splitter
	doc := CreateCached("---\n@lib "+hash+"\n", store, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.InvalidRainDocument {
		t.Errorf("problems = %v, want InvalidRainDocument", doc.Problems)
	}
	if doc.Imports[0].Sequence == nil || doc.Imports[0].Sequence.Dotrain == nil {
		t.Error("child document should still be attached")
	}
}

func TestUnresolvableImport(t *testing.T) {
	store := meta.NewBareStore()
	hash := "0x" + strings.Repeat("ab", 32)
	doc := CreateCached("---\n@lib "+hash+"\n", store, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.UndefinedImport {
		t.Errorf("problems = %v, want UndefinedImport", doc.Problems)
	}
	if doc.Imports[0].Sequence != nil {
		t.Error("sequence should be absent for an unresolved import")
	}
}

func TestCorruptCachedMeta(t *testing.T) {
	store := meta.NewBareStore()
	data := []byte("definitely not cbor")
	hash := meta.KeccakHash(data)
	raw, _ := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	store.UpdateWith(raw, data)
	doc := CreateCached("---\n@lib "+hash+"\n", store, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.CorruptMeta {
		t.Errorf("problems = %v, want CorruptMeta", doc.Problems)
	}
}

func TestImportAfterBinding(t *testing.T) {
	store := meta.NewBareStore()
	hash := "0x" + strings.Repeat("cd", 32)
	doc := CreateCached("---\n#x 1\n@"+hash+"\n", store, nil, nil)
	got := problemCodes(doc.Problems)
	if len(got) != 2 || got[0] != ast.UndefinedImport || got[1] != ast.NoneTopLevelImport {
		t.Errorf("problems = %v, want UndefinedImport then NoneTopLevelImport", doc.Problems)
	}
}

func TestDeepImportBound(t *testing.T) {
	hash := "0x" + strings.Repeat("ef", 32)
	doc := New("---\n@"+hash+"\n", meta.NewBareStore(), maxImportDepth, nil)
	doc.Parse(context.Background(), false, nil)
	want := []ast.Problem{ast.DeepImport.ToProblem(ast.Offsets{4, 4 + 1 + 66 + 1})}
	if diff := cmp.Diff(want, doc.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
	if len(doc.Imports) != 0 {
		t.Error("no import should be processed past the depth bound")
	}
}

func TestImportConfigRename(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "---\n#c 2\n")
	doc := CreateCached("---\n@lib "+hash+" 'c renamed\n", store, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	node := doc.Namespace["lib"].(Namespace)
	if _, ok := node["renamed"]; !ok {
		t.Error("renamed key missing from imported namespace")
	}
	if _, ok := node["c"]; ok {
		t.Error("old key still present after rename")
	}
}

func TestImportConfigElideAndRebind(t *testing.T) {
	store := meta.NewBareStore()
	hash := frameDotrain(t, store, "---\n#c 2\n#d 3\n")
	doc := CreateCached("---\n@lib "+hash+" c ! d 42\n", store, nil, nil)
	if len(doc.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", doc.Problems)
	}
	node := doc.Namespace["lib"].(Namespace)
	if _, ok := node["c"]; ok {
		t.Error("elided key still present")
	}
	leaf := node["d"].(*NamespaceLeaf)
	if diff := cmp.Diff(LiteralBindingItem{Value: "42"}, leaf.Element.Item, docCmp); diff != "" {
		t.Errorf("rebind diff (-want +got):\n%s", diff)
	}
}

func TestProcessImportConfigGrammar(t *testing.T) {
	text := " 'item1 renamed-item1 \n  \n\n\t item2 0x1234 \n"
	doc := New(text, meta.NewBareStore(), 0, nil)
	pieces := scan.Exclusive(text, scan.Whitespace, 0, false)
	got := doc.processImportConfig(pieces)
	item2Value := ast.ParsedItem{Text: "0x1234", Position: ast.Offsets{35, 41}}
	renamed := ast.ParsedItem{Text: "renamed-item1", Position: ast.Offsets{8, 21}}
	want := &ImportConfiguration{
		Groups: []ConfigGroup{
			{Key: ast.ParsedItem{Text: "'item1", Position: ast.Offsets{1, 7}}, Value: &renamed},
			{Key: ast.ParsedItem{Text: "item2", Position: ast.Offsets{29, 34}}, Value: &item2Value},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config diff (-want +got):\n%s", diff)
	}

	text = "'item1 renamed-item1 . "
	doc = New(text, meta.NewBareStore(), 0, nil)
	got = doc.processImportConfig(scan.Exclusive(text, scan.Whitespace, 0, false))
	if len(got.Groups) != 2 || got.Groups[1].Value != nil {
		t.Fatalf("groups = %+v", got.Groups)
	}
	wantProblems := []ast.Problem{ast.ExpectedElisionOrRebinding.ToProblem(ast.Offsets{21, 22})}
	if diff := cmp.Diff(wantProblems, got.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}

	text = "Bad-name 0x1234"
	doc = New(text, meta.NewBareStore(), 0, nil)
	got = doc.processImportConfig(scan.Exclusive(text, scan.Whitespace, 0, false))
	wantProblems = []ast.Problem{ast.UnexpectedToken.ToProblem(ast.Offsets{0, 8})}
	if diff := cmp.Diff(wantProblems, got.Problems); diff != "" {
		t.Errorf("problems diff (-want +got):\n%s", diff)
	}
}

func TestRebindElisionToLiteral(t *testing.T) {
	doc := CreateCached("---\n#x ! fill me in\n", nil, nil, []Rebind{{Key: "x", Value: "123"}})
	leaf := doc.Namespace["x"].(*NamespaceLeaf)
	if diff := cmp.Diff(LiteralBindingItem{Value: "123"}, leaf.Element.Item, docCmp); diff != "" {
		t.Errorf("item diff (-want +got):\n%s", diff)
	}
}

func TestRebindCreatesSyntheticLeaf(t *testing.T) {
	doc := CreateCached("---\n#x 1\n", nil, nil, []Rebind{{Key: "extra", Value: "7"}})
	leaf, ok := doc.Namespace["extra"].(*NamespaceLeaf)
	if !ok {
		t.Fatal("synthetic leaf missing")
	}
	if leaf.ImportIndex != -1 || leaf.Hash != "" {
		t.Errorf("leaf = %+v, want synthetic leaf", leaf)
	}
}

func TestRebindQuoteIndirectionIsPerRebind(t *testing.T) {
	// every rebind gets its own indirection budget: two independent
	// quote-valued rebinds, each one level deep, must both apply
	doc := CreateCached("---\n#target 1\n#mid 'target\n#a !\n#b !\n", nil, nil, []Rebind{
		{Key: "a", Value: "'mid"},
		{Key: "b", Value: "'mid"},
	})
	if got := problemCodes(doc.Problems); len(got) != 0 {
		t.Fatalf("problems = %v, want none", doc.Problems)
	}
	for _, name := range []string{"a", "b"} {
		leaf, ok := doc.Namespace[name].(*NamespaceLeaf)
		if !ok {
			t.Fatalf("%s is not a namespace leaf", name)
		}
		if quote, ok := leaf.Element.Item.(QuoteBindingItem); !ok || quote.Quote != "mid" {
			t.Errorf("%s item = %+v, want quote of mid", name, leaf.Element.Item)
		}
		if len(leaf.Element.Problems) != 0 {
			t.Errorf("%s problems = %v, want none", name, leaf.Element.Problems)
		}
	}
}

func TestRebindExpressionIsRejected(t *testing.T) {
	doc := CreateCached("---\n#e\n_: 1;\n", nil, nil, []Rebind{{Key: "e", Value: "2"}})
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.InvalidSuppliedRebindings {
		t.Errorf("problems = %v, want InvalidSuppliedRebindings", doc.Problems)
	}
}

func TestRebindDeepPathIsRejected(t *testing.T) {
	doc := CreateCached("---\n#x 1\n", nil, nil, []Rebind{{Key: "a.b", Value: "2"}})
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.InvalidSuppliedRebindings {
		t.Errorf("problems = %v, want InvalidSuppliedRebindings", doc.Problems)
	}
}

func TestIsLiteral(t *testing.T) {
	value, _, hasErr, ok := isLiteral("1234")
	if !ok || value != "1234" || hasErr {
		t.Errorf("isLiteral(1234) = (%q, %v, %v)", value, hasErr, ok)
	}
	value, _, hasErr, ok = isLiteral("99999e99999")
	if !ok || !hasErr {
		t.Errorf("isLiteral(99999e99999) = (%q, %v, %v)", value, hasErr, ok)
	}
	value, _, hasErr, ok = isLiteral(`" some literal "`)
	if !ok || hasErr || value != `" some literal "` {
		t.Errorf("isLiteral(string) = (%q, %v, %v)", value, hasErr, ok)
	}
	_, _, hasErr, ok = isLiteral(`" with no end `)
	if !ok || !hasErr {
		t.Errorf("isLiteral(unterminated) = (%v, %v)", hasErr, ok)
	}
	if _, _, _, ok := isLiteral("999 234"); ok {
		t.Error("isLiteral(999 234) = true, want false")
	}
}

func TestIsElided(t *testing.T) {
	msg, ok := isElided(" ! \n some msg \n\t")
	if !ok || msg != "some msg" {
		t.Errorf("isElided = (%q, %v)", msg, ok)
	}
	if msg, ok := isElided(" ! \n\t"); !ok || msg != "" {
		t.Errorf("isElided(bare) = (%q, %v)", msg, ok)
	}
	if _, ok := isElided("some msg"); ok {
		t.Error("isElided(some msg) = true, want false")
	}
}

func TestCheckAndMergeNamespace(t *testing.T) {
	leaf := func(name string) *NamespaceLeaf {
		return &NamespaceLeaf{ImportIndex: -1, Element: Binding{Name: name, Item: LiteralBindingItem{Value: "1"}}}
	}
	main := Namespace{"a": leaf("a")}
	if code, collides := CheckNamespace(Namespace{"a": leaf("a")}, main); !collides || code != ast.CollidingNamespaceNodes {
		t.Errorf("leaf/leaf = (%v, %v), want colliding", code, collides)
	}
	if _, collides := CheckNamespace(Namespace{"b": leaf("b")}, main); collides {
		t.Error("disjoint keys reported as colliding")
	}
	if code, collides := CheckNamespace(Namespace{"a": Namespace{}}, main); !collides || code != ast.OccupiedNamespace {
		t.Errorf("node/leaf = (%v, %v), want occupied", code, collides)
	}

	mergeInto(Namespace{"b": leaf("b")}, main)
	if len(main) != 2 {
		t.Errorf("merged namespace = %v", main)
	}
	nested := Namespace{"x": Namespace{"inner": leaf("inner")}}
	mergeInto(Namespace{"x": Namespace{"other": leaf("other")}}, nested)
	inner := nested["x"].(Namespace)
	if len(inner) != 2 {
		t.Errorf("nested merge = %v", inner)
	}
}

func TestCopyNamespaceStampsLeaves(t *testing.T) {
	source := Namespace{
		"plain": &NamespaceLeaf{ImportIndex: -1, Element: Binding{Name: "plain"}},
		"owned": &NamespaceLeaf{Hash: "0xowned", ImportIndex: 3, Element: Binding{Name: "owned"}},
		"deep":  Namespace{"leaf": &NamespaceLeaf{ImportIndex: -1, Element: Binding{Name: "leaf"}}},
	}
	copied := CopyNamespace(source, 7, "0xabc")
	if got := copied["plain"].(*NamespaceLeaf); got.Hash != "0xabc" || got.ImportIndex != 7 {
		t.Errorf("plain leaf = %+v", got)
	}
	if got := copied["owned"].(*NamespaceLeaf); got.Hash != "0xowned" || got.ImportIndex != 7 {
		t.Errorf("owned leaf = %+v", got)
	}
	if got := copied["deep"].(Namespace)["leaf"].(*NamespaceLeaf); got.Hash != "0xabc" {
		t.Errorf("deep leaf = %+v", got)
	}
}

func TestIgnoreNextLineSuppression(t *testing.T) {
	doc := CreateCached("---\n/* ignore-next-line */\n#x 0x123\n", nil, nil, nil)
	if len(doc.Problems) != 0 {
		t.Errorf("problems = %v, want suppressed", doc.Problems)
	}
	// the suppression only reaches the very next line
	doc = CreateCached("---\n/* ignore-next-line */\n\n#x 0x123\n", nil, nil, nil)
	if got := problemCodes(doc.Problems); len(got) != 1 || got[0] != ast.OddLenHex {
		t.Errorf("problems = %v, want OddLenHex to survive", doc.Problems)
	}
}
