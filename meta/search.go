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
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/golang/glog"
)

// SearchResult is a settled meta lookup: the hash that was searched and
// the bytes a subgraph returned for it.
type SearchResult struct {
	Hash  string
	Bytes []byte
}

// HashBytes returns the raw bytes of the result's hash.
func (r SearchResult) HashBytes() []byte {
	b, _ := hex.DecodeString(strings.TrimPrefix(strings.ToLower(r.Hash), "0x"))
	return b
}

const searchTimeout = 12 * time.Second

var httpClient = &http.Client{Timeout: searchTimeout}

type graphqlResponse struct {
	Data struct {
		Meta struct {
			RawBytes string `json:"rawBytes"`
		} `json:"meta"`
	} `json:"data"`
}

// Search races a meta lookup for hash across the given subgraph
// endpoints and returns the first settlement. It returns an error when
// every endpoint fails or none carries the hash.
func Search(ctx context.Context, hash string, subgraphs []string) (SearchResult, error) {
	if len(subgraphs) == 0 {
		return SearchResult{}, fmt.Errorf("no subgraph endpoints to search")
	}
	hash = strings.ToLower(hash)
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	type settled struct {
		data []byte
		err  error
	}
	results := make(chan settled, len(subgraphs))
	for _, url := range subgraphs {
		go func(url string) {
			data, err := searchOne(ctx, url, hash)
			results <- settled{data, err}
		}(url)
	}
	var lastErr error
	for range subgraphs {
		select {
		case r := <-results:
			if r.err == nil {
				return SearchResult{Hash: hash, Bytes: r.data}, nil
			}
			lastErr = r.err
			log.V(2).Infof("meta search miss for %s: %v", hash, r.err)
		case <-ctx.Done():
			return SearchResult{}, ctx.Err()
		}
	}
	return SearchResult{}, fmt.Errorf("searching %s: %w", hash, lastErr)
}

func searchOne(ctx context.Context, url, hash string) ([]byte, error) {
	query := map[string]string{
		"query": fmt.Sprintf(`{ meta( id: "%s" ) { rawBytes } }`, hash),
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", url, err)
	}
	raw := decoded.Data.Meta.RawBytes
	if raw == "" {
		return nil, fmt.Errorf("%s has no meta for %s", url, hash)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid raw bytes from %s: %w", url, err)
	}
	return data, nil
}
