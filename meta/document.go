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

// Package meta implements the content-addressed metadata store consumed
// by the dotrain import resolver: a shared hash to bytes cache, the CBOR
// meta sequence framing, and remote search over subgraph endpoints.
package meta

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Magic is an 8-byte self-describing prefix identifying a meta kind.
type Magic uint64

// Known magic numbers.
const (
	// RainMetaDocumentV1 prefixes a CBOR sequence of meta items.
	RainMetaDocumentV1 Magic = 0xff0a89c674ee7874
	// DotrainV1 marks a meta item whose payload is dotrain text.
	DotrainV1 Magic = 0xffdac2f2f37be894
	// AuthoringMetaV1 marks a meta item carrying authoring words.
	AuthoringMetaV1 Magic = 0xffe5ffb4a3ff2cde
)

// Prefix returns the magic as its 8 wire bytes.
func (m Magic) Prefix() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(m))
	return b[:]
}

// DocumentItem is a single item of a rain meta document: a payload plus
// the fields describing how to consume it. The integer keys are fixed by
// the wire format.
type DocumentItem struct {
	Payload         []byte `cbor:"0,keyasint"`
	Magic           Magic  `cbor:"1,keyasint"`
	ContentType     string `cbor:"2,keyasint"`
	ContentEncoding string `cbor:"3,keyasint,omitempty"`
	ContentLanguage string `cbor:"4,keyasint,omitempty"`
}

// Decode decodes a RainMetaDocumentV1-prefixed CBOR sequence into its
// items. Data that is not a well-formed meta document returns an error.
func Decode(data []byte) ([]DocumentItem, error) {
	prefix := RainMetaDocumentV1.Prefix()
	if !bytes.HasPrefix(data, prefix) {
		return nil, fmt.Errorf("missing rain meta document prefix")
	}
	var items []DocumentItem
	dec := cbor.NewDecoder(bytes.NewReader(data[len(prefix):]))
	for {
		var item DocumentItem
		if err := dec.Decode(&item); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decoding meta item %d: %w", len(items), err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty meta sequence")
	}
	return items, nil
}

// Encode frames the given items as a RainMetaDocumentV1 CBOR sequence.
func Encode(items []DocumentItem) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(RainMetaDocumentV1.Prefix())
	enc := cbor.NewEncoder(&buf)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return nil, fmt.Errorf("encoding meta item %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// IsConsumable reports whether a decoded meta sequence has only items the
// dotrain pipeline knows how to consume.
func IsConsumable(items []DocumentItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Magic != DotrainV1 && item.Magic != AuthoringMetaV1 {
			return false
		}
	}
	return true
}

// Unpack returns an item's payload with its content encoding undone.
func (d DocumentItem) Unpack() ([]byte, error) {
	switch d.ContentEncoding {
	case "", "identity":
		return d.Payload, nil
	case "deflate":
		r := flate.NewReader(bytes.NewReader(d.Payload))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("inflating payload: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown content encoding %q", d.ContentEncoding)
	}
}

// DotrainItem frames dotrain text as a meta document item.
func DotrainItem(text string) DocumentItem {
	return DocumentItem{
		Payload:     []byte(text),
		Magic:       DotrainV1,
		ContentType: "application/cbor",
	}
}
