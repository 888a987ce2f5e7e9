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
	"unicode/utf8"

	log "github.com/golang/glog"
	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/scan"
)

// ConfigGroup is one parsed configuration piece of an import statement:
// a key and, for complete pairs, its companion value.
type ConfigGroup struct {
	Key   ast.ParsedItem
	Value *ast.ParsedItem
}

// ImportConfiguration is the parsed rename/rebind/elide list trailing an
// import statement.
type ImportConfiguration struct {
	Groups   []ConfigGroup
	Problems []ast.Problem
}

// ImportSequence holds the parsed contents an import hash settled to.
type ImportSequence struct {
	Dotrain *RainDocument
}

// Import is one @-statement of a document.
type Import struct {
	Name          string
	NamePosition  ast.Offsets
	Hash          string
	HashPosition  ast.Offsets
	Position      ast.Offsets
	Problems      []ast.Problem
	Configuration *ImportConfiguration
	Sequence      *ImportSequence
}

// processImport parses a single import statement and resolves its hash
// through the store, recursing into the fetched dotrain.
func (d *RainDocument) processImport(ctx context.Context, statement ast.ParsedItem, remoteSearch bool) *Import {
	atPos := ast.Offsets{statement.Position[0] - 1, statement.Position[0] - 1}
	result := &Import{
		Name:         ".",
		NamePosition: atPos,
		HashPosition: atPos,
		Position:     ast.Offsets{statement.Position[0] - 1, statement.Position[1]},
	}

	isValid := false
	pieces := scan.Exclusive(statement.Text, scan.Whitespace, statement.Position[0], false)
	if len(pieces) == 0 {
		result.Problems = append(result.Problems, ast.InvalidImport.ToProblem(atPos))
		return result
	}

	configStart := 1
	nameOrHash := pieces[0]
	if scan.Hex.MatchString(nameOrHash.Text) {
		result.Name = "."
		result.NamePosition = nameOrHash.Position
		result.Hash = strings.ToLower(nameOrHash.Text)
		result.HashPosition = nameOrHash.Position
		if len(nameOrHash.Text)%2 == 1 {
			result.Problems = append(result.Problems, ast.OddLenHex.ToProblem(nameOrHash.Position))
		} else {
			isValid = true
		}
	} else {
		result.Name = nameOrHash.Text
		result.NamePosition = nameOrHash.Position
		if !scan.Word.MatchString(nameOrHash.Text) {
			result.Problems = append(result.Problems, ast.InvalidWordPattern.ToProblem(nameOrHash.Position, nameOrHash.Text))
		}
	}
	if result.Name != "." {
		if len(pieces) > 1 {
			configStart = 2
			hash := pieces[1]
			if scan.Hex.MatchString(hash.Text) {
				result.Hash = strings.ToLower(hash.Text)
				result.HashPosition = hash.Position
				if len(hash.Text)%2 == 1 {
					result.Problems = append(result.Problems, ast.OddLenHex.ToProblem(hash.Position))
				} else {
					isValid = true
				}
			} else {
				result.Problems = append(result.Problems, ast.ExpectedHexLiteral.ToProblem(hash.Position))
			}
		} else {
			result.Problems = append(result.Problems, ast.ExpectedHexLiteral.ToProblem(atPos))
		}
	}
	if len(pieces) > configStart {
		result.Configuration = d.processImportConfig(pieces[configStart:])
	}

	if !isValid {
		return result
	}

	hashBytes, err := hex.DecodeString(strings.TrimPrefix(result.Hash, "0x"))
	if err != nil {
		result.Problems = append(result.Problems, ast.CorruptMeta.ToProblem(result.HashPosition))
		return result
	}
	subgraphs := d.store.Subgraphs()

	items := d.fetchImportContents(ctx, subgraphs, hashBytes, result, remoteSearch)
	if items != nil {
		d.processMetaImport(ctx, items, result, remoteSearch)
		return result
	}
	for _, p := range result.Problems {
		if p.Code == ast.CorruptMeta {
			return result
		}
	}
	result.Problems = append(result.Problems, ast.UndefinedImport.ToProblem(result.HashPosition, result.Hash))
	return result
}

// fetchImportContents reads a hash from the store, optionally falling
// back to a remote subgraph search on a cache miss. The store lock is
// only held for the cache accesses, never across the search.
func (d *RainDocument) fetchImportContents(ctx context.Context, subgraphs []string, hashBytes []byte, result *Import, remoteSearch bool) []meta.DocumentItem {
	if cached := d.store.GetMeta(hashBytes); cached != nil {
		items, err := meta.Decode(cached)
		if err == nil {
			if meta.IsConsumable(items) {
				return items
			}
			result.Problems = append(result.Problems, ast.InconsumableMeta.ToProblem(result.HashPosition))
		} else {
			result.Problems = append(result.Problems, ast.CorruptMeta.ToProblem(result.HashPosition))
		}
	}
	if !remoteSearch {
		return nil
	}
	searched, err := meta.Search(ctx, result.Hash, subgraphs)
	if err != nil {
		log.V(1).Infof("import %s: remote search failed: %v", result.Hash, err)
		return nil
	}
	d.store.UpdateWith(hashBytes, searched.Bytes)
	items, err := meta.Decode(searched.Bytes)
	if err != nil {
		result.Problems = append(result.Problems, ast.CorruptMeta.ToProblem(result.HashPosition))
		return nil
	}
	if !meta.IsConsumable(items) {
		result.Problems = append(result.Problems, ast.InconsumableMeta.ToProblem(result.HashPosition))
		return nil
	}
	return items
}

// processMetaImport parses each consumable dotrain item of a settled
// meta sequence as a child document one level deeper.
func (d *RainDocument) processMetaImport(ctx context.Context, items []meta.DocumentItem, result *Import, remoteSearch bool) {
	result.Sequence = &ImportSequence{}
	for _, item := range items {
		payload, err := item.Unpack()
		if err != nil {
			result.Sequence = nil
			result.Problems = append(result.Problems, ast.CorruptMeta.ToProblem(result.HashPosition))
			return
		}
		if item.Magic != meta.DotrainV1 {
			continue
		}
		if !utf8.Valid(payload) {
			result.Sequence = nil
			result.Problems = append(result.Problems, ast.CorruptMeta.ToProblem(result.HashPosition))
			return
		}
		child := New(string(payload), d.store, d.ImportDepth+1, d.knownWords)
		child.Parse(ctx, remoteSearch, nil)
		if len(child.Problems) > 0 {
			result.Problems = append(result.Problems, ast.InvalidRainDocument.ToProblem(result.HashPosition))
		}
		result.Sequence.Dotrain = child
	}
}

// processImportConfig parses the configuration pieces trailing an import
// with a pair-or-single grammar. String and sub parser values spanning
// whitespace are joined back together from the original text.
func (d *RainDocument) processImportConfig(pieces []ast.ParsedItem) *ImportConfiguration {
	config := &ImportConfiguration{}
	for i := 0; i < len(pieces); i++ {
		first := pieces[i]
		if i+1 >= len(pieces) {
			config.Groups = append(config.Groups, ConfigGroup{Key: first})
			if strings.HasPrefix(first.Text, "'") {
				config.Problems = append(config.Problems, ast.ExpectedRename.ToProblem(first.Position))
			} else {
				config.Problems = append(config.Problems, ast.ExpectedElisionOrRebinding.ToProblem(first.Position))
			}
			continue
		}
		i++
		complement := pieces[i]
		complement = d.joinConfigLiteral(complement, pieces, &i, '"', ast.UnexpectedStringLiteralEnd, config)
		complement = d.joinConfigLiteral(complement, pieces, &i, '[', ast.UnexpectedSubParserEnd, config)

		switch {
		case scan.Word.MatchString(first.Text):
			if scan.Literal.MatchString(complement.Text) || complement.Text == "!" || scan.Quote.MatchString(complement.Text) {
				if configHasGroup(config, first.Text, complement.Text) {
					config.Problems = append(config.Problems, ast.DuplicateImportStatement.ToProblem(
						ast.Offsets{first.Position[0], complement.Position[1]}))
				}
			} else {
				config.Problems = append(config.Problems, ast.UnexpectedToken.ToProblem(complement.Position))
			}
		case strings.HasPrefix(first.Text, "'"):
			quoted := first.Text[1:]
			if scan.Word.MatchString(quoted) {
				if scan.Word.MatchString(complement.Text) {
					if configHasGroup(config, first.Text, complement.Text) {
						config.Problems = append(config.Problems, ast.DuplicateImportStatement.ToProblem(
							ast.Offsets{first.Position[0], complement.Position[1]}))
					}
				} else {
					config.Problems = append(config.Problems, ast.InvalidWordPattern.ToProblem(complement.Position, complement.Text))
				}
			} else {
				config.Problems = append(config.Problems, ast.InvalidWordPattern.ToProblem(first.Position, first.Text))
			}
		default:
			config.Problems = append(config.Problems, ast.UnexpectedToken.ToProblem(first.Position))
		}
		value := complement
		config.Groups = append(config.Groups, ConfigGroup{Key: first, Value: &value})
	}
	return config
}

// joinConfigLiteral rebuilds a whitespace-spanning string or sub parser
// configuration value from the original document text.
func (d *RainDocument) joinConfigLiteral(item ast.ParsedItem, pieces []ast.ParsedItem, idx *int, open byte, code ast.ErrorCode, config *ImportConfiguration) ast.ParsedItem {
	close := byte('"')
	if open == '[' {
		close = ']'
	}
	if item.Text == "" || item.Text[0] != open {
		return item
	}
	if len(item.Text) > 1 && item.Text[len(item.Text)-1] == close {
		return item
	}
	start := item.Position[0]
	end := item.Position[1]
	hasNoEnd := true
	for *idx+1 < len(pieces) {
		*idx++
		end = pieces[*idx].Position[1]
		if p := pieces[*idx].Text; len(p) > 0 && p[len(p)-1] == close {
			hasNoEnd = false
			break
		}
	}
	if hasNoEnd {
		config.Problems = append(config.Problems, code.ToProblem(ast.Offsets{start, end}))
	}
	return ast.ParsedItem{Text: d.Text[start:end], Position: ast.Offsets{start, end}}
}

func configHasGroup(config *ImportConfiguration, key, value string) bool {
	for _, g := range config.Groups {
		if g.Value != nil && g.Key.Text == key && g.Value.Text == value {
			return true
		}
	}
	return false
}

// applyImportConfigs applies an import's configuration to its prepared,
// not yet merged namespace, returning the problems found.
func applyImportConfigs(config *ImportConfiguration, ns Namespace) []ast.Problem {
	var problems []ast.Problem
	for _, group := range config.Groups {
		if group.Value == nil {
			continue
		}
		old, value := group.Key, *group.Value
		if value.Text == "!" {
			if _, ok := ns[old.Text]; !ok {
				problems = append(problems, ast.UndefinedIdentifier.ToProblem(old.Position, old.Text))
				continue
			}
			delete(ns, old.Text)
			continue
		}
		key := strings.TrimPrefix(old.Text, "'")
		item, ok := ns[key]
		if !ok {
			problems = append(problems, ast.UndefinedIdentifier.ToProblem(old.Position, key))
			continue
		}
		if strings.HasPrefix(old.Text, "'") {
			if _, taken := ns[value.Text]; taken {
				problems = append(problems, ast.UnexpectedRename.ToProblem(value.Position, value.Text))
			} else {
				delete(ns, key)
				ns[value.Text] = item
			}
			continue
		}
		leaf, isLeaf := item.(*NamespaceLeaf)
		if !isLeaf {
			problems = append(problems, ast.UnexpectedRebinding.ToProblem(
				ast.Offsets{old.Position[0], value.Position[1]}))
			continue
		}
		if strings.HasPrefix(value.Text, "'") {
			leaf.Element.Item = QuoteBindingItem{Quote: strings.TrimPrefix(value.Text, "'")}
		} else {
			leaf.Element.Item = LiteralBindingItem{Value: value.Text}
		}
	}
	return problems
}
