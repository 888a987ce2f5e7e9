// Copyright 2024 Rain Language
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

package rainconfig

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rainlanguage/dotrain/meta"
)

func TestReadAndBuildStore(t *testing.T) {
	dir := t.TempDir()
	rain := filepath.Join(dir, "lib.rain")
	if err := os.WriteFile(rain, []byte("---\n#c 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data := []byte("meta payload")
	hash := meta.KeccakHash(data)
	cfgPath := filepath.Join(dir, "rainconfig.yaml")
	cfgText := "include:\n" +
		"  - " + rain + "\n" +
		"subgraphs:\n" +
		"  - https://example.com/subgraph\n" +
		"meta:\n" +
		"  - hash: " + hash + "\n" +
		"    bytes: 0x" + hex.EncodeToString(data) + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgText), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Read(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Include:   []string{rain},
		Subgraphs: []string{"https://example.com/subgraph"},
		Meta:      []MetaEntry{{Hash: hash, Bytes: "0x" + hex.EncodeToString(data)}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config diff (-want +got):\n%s", diff)
	}

	store, err := cfg.BuildStore()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.DotrainHash(rain); !ok {
		t.Error("included dotrain not cached")
	}
	raw, _ := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if store.GetMeta(raw) == nil {
		t.Error("meta entry not cached")
	}
	found := false
	for _, sg := range store.Subgraphs() {
		if sg == "https://example.com/subgraph" {
			found = true
		}
	}
	if !found {
		t.Error("config subgraph missing from the store")
	}
}

func TestBuildStoreDirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a.rain"), []byte("---\n#a 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "ignored.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{Include: []string{dir}}
	store, err := cfg.BuildStore()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.DotrainHash(filepath.Join(sub, "a.rain")); !ok {
		t.Error("nested dotrain not cached")
	}
}

func TestBuildStoreFailsFast(t *testing.T) {
	cfg := &Config{Include: []string{"does/not/exist"}}
	if _, err := cfg.BuildStore(); err == nil {
		t.Error("missing include: got nil error")
	}
	// the forced build carries on and reports the failure at the end
	store, err := cfg.ForceBuildStore()
	if store == nil {
		t.Error("forced build returned no store")
	}
	if err == nil {
		t.Error("forced build swallowed the failure")
	}
}

func TestBadMetaEntry(t *testing.T) {
	cfg := &Config{Meta: []MetaEntry{{Hash: "0x1234", Bytes: "0xabcd"}}}
	if _, err := cfg.BuildStore(); err == nil {
		t.Error("short hash: got nil error")
	}
	data := []byte("payload")
	cfg = &Config{Meta: []MetaEntry{{Hash: meta.KeccakHash([]byte("other")), Bytes: "0x" + hex.EncodeToString(data)}}}
	if _, err := cfg.BuildStore(); err == nil {
		t.Error("mismatched hash: got nil error")
	}
}
