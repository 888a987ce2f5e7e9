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

// Package rainconfig reads the rainconfig file that assembles the meta
// store a compose run works against: local dotrain files to pre-seed,
// extra subgraph endpoints, and meta hash/bytes pairs to cache.
package rainconfig

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"

	"github.com/rainlanguage/dotrain/meta"
)

// DefaultPath is the rainconfig looked up when none is given.
const DefaultPath = "rainconfig.yaml"

// MetaEntry is one pre-cached meta: its hash and hex-encoded bytes.
type MetaEntry struct {
	Hash  string `koanf:"hash"`
	Bytes string `koanf:"bytes"`
}

// Config is the parsed rainconfig.
type Config struct {
	// Include lists files and directories whose .rain files are seeded
	// into the store as dotrain metas. Directories are walked
	// recursively.
	Include []string `koanf:"include"`
	// Subgraphs are additional endpoint URLs searched for metas.
	Subgraphs []string `koanf:"subgraphs"`
	// Meta holds hash/bytes pairs cached verbatim.
	Meta []MetaEntry `koanf:"meta"`
}

// Read loads a rainconfig from a YAML file.
func Read(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading rainconfig %s: %w", path, err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding rainconfig %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildStore assembles a store from the config, failing on the first
// problem encountered.
func (c *Config) BuildStore() (*meta.Store, error) {
	return c.buildStore(false)
}

// ForceBuildStore assembles a store from the config, collecting
// problems and carrying on past them.
func (c *Config) ForceBuildStore() (*meta.Store, error) {
	store, err := c.buildStore(true)
	return store, err
}

func (c *Config) buildStore(force bool) (*meta.Store, error) {
	store := meta.NewStore()
	store.AddSubgraphs(c.Subgraphs)

	var errs error
	for _, include := range c.Include {
		err := seedDotrains(store, include)
		if err == nil {
			continue
		}
		if !force {
			return nil, err
		}
		errs = multierr.Append(errs, err)
	}
	for _, entry := range c.Meta {
		err := seedMeta(store, entry)
		if err == nil {
			continue
		}
		if !force {
			return nil, err
		}
		errs = multierr.Append(errs, err)
	}
	return store, errs
}

// seedDotrains loads a .rain file, or every .rain file under a
// directory, into the store as dotrain metas.
func seedDotrains(store *meta.Store, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("including %s: %w", path, err)
	}
	if !info.IsDir() {
		return seedDotrainFile(store, path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".rain") {
			return nil
		}
		return seedDotrainFile(store, p)
	})
}

func seedDotrainFile(store *meta.Store, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if _, err := store.SetDotrain(string(text), path, false); err != nil {
		return fmt.Errorf("caching %s: %w", path, err)
	}
	return nil
}

func seedMeta(store *meta.Store, entry MetaEntry) error {
	hashBytes, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(entry.Hash), "0x"))
	if err != nil || len(hashBytes) != 32 {
		return fmt.Errorf("invalid meta hash %q", entry.Hash)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(entry.Bytes), "0x"))
	if err != nil {
		return fmt.Errorf("invalid meta bytes for %q: %w", entry.Hash, err)
	}
	if meta.KeccakHash(data) != "0x"+hex.EncodeToString(hashBytes) {
		return fmt.Errorf("meta bytes for %q do not match their hash", entry.Hash)
	}
	store.UpdateWith(hashBytes, data)
	return nil
}
