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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := []DocumentItem{DotrainItem("---\n#x 1\n")}
	framed, err := Encode(items)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(framed)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(items, decoded); diff != "" {
		t.Errorf("round trip diff (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a meta document")); err == nil {
		t.Error("missing prefix: got nil error")
	}
	bad := append(RainMetaDocumentV1.Prefix(), 0xff, 0x00)
	if _, err := Decode(bad); err == nil {
		t.Error("truncated cbor: got nil error")
	}
	if _, err := Decode(RainMetaDocumentV1.Prefix()); err == nil {
		t.Error("empty sequence: got nil error")
	}
}

func TestIsConsumable(t *testing.T) {
	if IsConsumable(nil) {
		t.Error("empty sequence considered consumable")
	}
	if !IsConsumable([]DocumentItem{DotrainItem("---\n#x 1\n")}) {
		t.Error("dotrain item considered inconsumable")
	}
	unknown := []DocumentItem{{Payload: []byte{1}, Magic: Magic(0x1234)}}
	if IsConsumable(unknown) {
		t.Error("unknown magic considered consumable")
	}
}

func TestUnpackEncodings(t *testing.T) {
	item := DocumentItem{Payload: []byte("abc"), Magic: DotrainV1}
	got, err := item.Unpack()
	if err != nil || string(got) != "abc" {
		t.Errorf("identity unpack = (%q, %v)", got, err)
	}
	item.ContentEncoding = "gzip2"
	if _, err := item.Unpack(); err == nil {
		t.Error("unknown encoding: got nil error")
	}
}
