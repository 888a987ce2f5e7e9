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
	"context"
	"encoding/hex"
	"strings"
	"sync"

	log "github.com/golang/glog"
	"golang.org/x/crypto/sha3"
)

// DefaultSubgraphs are the public endpoints searched when a store is
// created with the default endpoint set.
var DefaultSubgraphs = []string{
	"https://api.thegraph.com/subgraphs/name/rainprotocol/interpreter-registry",
	"https://api.thegraph.com/subgraphs/name/rainprotocol/interpreter-registry-polygon",
}

// Store is the content-addressed meta cache shared by a root document and
// all of its imported sub-documents. Reads are frequent and concurrent;
// writes are rarer (cache fills after a remote fetch, dotrain records,
// merges). The lock is never held across a network call.
type Store struct {
	mu           sync.RWMutex
	cache        map[string][]byte
	dotrainCache map[string]string
	subgraphs    []string
}

// NewStore returns an empty store seeded with the default subgraphs.
func NewStore() *Store {
	s := &Store{
		cache:        map[string][]byte{},
		dotrainCache: map[string]string{},
	}
	s.subgraphs = append(s.subgraphs, DefaultSubgraphs...)
	return s
}

// NewBareStore returns an empty store with no subgraph endpoints.
func NewBareStore() *Store {
	return &Store{
		cache:        map[string][]byte{},
		dotrainCache: map[string]string{},
	}
}

// KeccakHash returns the lowercase 0x-prefixed keccak256 of data.
func KeccakHash(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

func hashKey(hashBytes []byte) string {
	return "0x" + strings.ToLower(hex.EncodeToString(hashBytes))
}

// Subgraphs returns a snapshot of the endpoint list.
func (s *Store) Subgraphs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.subgraphs))
	copy(out, s.subgraphs)
	return out
}

// AddSubgraphs appends endpoints, skipping ones already present.
func (s *Store) AddSubgraphs(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		known := false
		for _, have := range s.subgraphs {
			if have == u {
				known = true
				break
			}
		}
		if !known {
			s.subgraphs = append(s.subgraphs, u)
		}
	}
}

// GetMeta returns the cached bytes for a hash, or nil.
func (s *Store) GetMeta(hashBytes []byte) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[hashKey(hashBytes)]
}

// UpdateWith caches bytes under their hash. The pair is dropped if the
// bytes do not hash to the given key.
func (s *Store) UpdateWith(hashBytes, data []byte) {
	key := hashKey(hashBytes)
	if KeccakHash(data) != key {
		log.V(1).Infof("store: rejecting update for %s, bytes do not match hash", key)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = data
}

// Update searches the subgraphs for a hash and caches the result. It
// returns the fetched bytes, or an error if no endpoint settles it.
func (s *Store) Update(ctx context.Context, hash string) ([]byte, error) {
	result, err := Search(ctx, hash, s.Subgraphs())
	if err != nil {
		return nil, err
	}
	s.UpdateWith(result.HashBytes(), result.Bytes)
	return result.Bytes, nil
}

// UpdateCheck returns the cached bytes for a hash, searching remotely
// only on a cache miss.
func (s *Store) UpdateCheck(ctx context.Context, hashBytes []byte) ([]byte, error) {
	if cached := s.GetMeta(hashBytes); cached != nil {
		return cached, nil
	}
	return s.Update(ctx, hashKey(hashBytes))
}

// SetDotrain frames the given dotrain text as meta, caches it and maps
// the uri to its hash. An existing record for the uri is replaced; its
// old meta is kept only when keepOld is set.
func (s *Store) SetDotrain(text, uri string, keepOld bool) (string, error) {
	framed, err := Encode([]DocumentItem{DotrainItem(text)})
	if err != nil {
		return "", err
	}
	key := KeccakHash(framed)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.dotrainCache[uri]; ok && old != key && !keepOld {
		delete(s.cache, old)
	}
	s.dotrainCache[uri] = key
	s.cache[key] = framed
	return key, nil
}

// DeleteDotrain removes a dotrain record by uri. The underlying meta is
// kept when keepMeta is set.
func (s *Store) DeleteDotrain(uri string, keepMeta bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hash, ok := s.dotrainCache[uri]; ok {
		if !keepMeta {
			delete(s.cache, hash)
		}
		delete(s.dotrainCache, uri)
	}
}

// DotrainHash returns the cached meta hash of a dotrain uri.
func (s *Store) DotrainHash(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.dotrainCache[uri]
	return hash, ok
}

// Merge lazily copies another store's records into this one, skipping
// hashes and uris already present.
func (s *Store) Merge(other *Store) {
	if other == nil || other == s {
		return
	}
	other.mu.RLock()
	cache := make(map[string][]byte, len(other.cache))
	for k, v := range other.cache {
		cache[k] = v
	}
	dotrains := make(map[string]string, len(other.dotrainCache))
	for k, v := range other.dotrainCache {
		dotrains[k] = v
	}
	subgraphs := make([]string, len(other.subgraphs))
	copy(subgraphs, other.subgraphs)
	other.mu.RUnlock()

	s.mu.Lock()
	for k, v := range cache {
		if _, ok := s.cache[k]; !ok {
			s.cache[k] = v
		}
	}
	for k, v := range dotrains {
		if _, ok := s.dotrainCache[k]; !ok {
			s.dotrainCache[k] = v
		}
	}
	s.mu.Unlock()
	s.AddSubgraphs(subgraphs)
}
