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

package meta

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

func hashOf(t *testing.T, data []byte) []byte {
	t.Helper()
	raw, err := hex.DecodeString(strings.TrimPrefix(KeccakHash(data), "0x"))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestUpdateWithVerifiesHash(t *testing.T) {
	store := NewBareStore()
	data := []byte("some meta bytes")
	hash := hashOf(t, data)

	store.UpdateWith(hash, data)
	if got := store.GetMeta(hash); !bytes.Equal(got, data) {
		t.Errorf("GetMeta after valid update = %v, want %v", got, data)
	}

	other := hashOf(t, []byte("different bytes"))
	store.UpdateWith(other, data)
	if got := store.GetMeta(other); got != nil {
		t.Errorf("GetMeta after mismatched update = %v, want nil", got)
	}
}

func TestSetDotrain(t *testing.T) {
	store := NewBareStore()
	hash, err := store.SetDotrain("---\n#x 1\n", "lib/x.rain", false)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := store.DotrainHash("lib/x.rain")
	if !ok || got != hash {
		t.Errorf("DotrainHash = (%q, %v), want (%q, true)", got, ok, hash)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		t.Fatal(err)
	}
	framed := store.GetMeta(raw)
	if framed == nil {
		t.Fatal("framed dotrain meta not cached")
	}
	items, err := Decode(framed)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || string(items[0].Payload) != "---\n#x 1\n" {
		t.Errorf("decoded dotrain meta = %+v", items)
	}

	// replacing the record drops the old meta unless asked to keep it
	next, err := store.SetDotrain("---\n#x 2\n", "lib/x.rain", false)
	if err != nil {
		t.Fatal(err)
	}
	if next == hash {
		t.Fatal("expected a different hash for different text")
	}
	if store.GetMeta(raw) != nil {
		t.Error("old meta still cached after replacement")
	}

	store.DeleteDotrain("lib/x.rain", false)
	if _, ok := store.DotrainHash("lib/x.rain"); ok {
		t.Error("record still present after delete")
	}
}

func TestMergeSkipsDuplicates(t *testing.T) {
	a := NewBareStore()
	b := NewBareStore()
	data := []byte("payload")
	hash := hashOf(t, data)
	b.UpdateWith(hash, data)
	b.AddSubgraphs([]string{"https://example.com/subgraph"})

	a.Merge(b)
	if got := a.GetMeta(hash); !bytes.Equal(got, data) {
		t.Errorf("merged meta = %v, want %v", got, data)
	}
	if got := a.Subgraphs(); len(got) != 1 {
		t.Errorf("merged subgraphs = %v", got)
	}

	// merging again must not duplicate endpoints
	a.Merge(b)
	if got := a.Subgraphs(); len(got) != 1 {
		t.Errorf("subgraphs after re-merge = %v", got)
	}
}
