// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"fmt"
	"strings"
)

const (
	collectionIndexPrefix = "colidx"
	collectionPrefix      = "col"
	recordSegment         = "rec"
	manifestSegment       = "manifest"
)

// makeCollectionIndexKey generates the key marking a collection as existing.
// Format: colidx:name
func makeCollectionIndexKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionIndexPrefix, name))
}

// collectionNameFromIndexKey is the inverse of makeCollectionIndexKey.
func collectionNameFromIndexKey(key []byte) string {
	return strings.TrimPrefix(string(key), collectionIndexPrefix+":")
}

// makeRecordPrefix generates the prefix shared by every record of a collection.
// Format: col:name:rec:
func makeRecordPrefix(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", collectionPrefix, name, recordSegment))
}

// makeRecordKey generates a key for a record by ID.
// Format: col:name:rec:id
func makeRecordKey(name, id string) []byte {
	prefix := makeRecordPrefix(name)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// makeManifestKey generates the key holding a collection's manifest.
// Format: col:name:manifest
func makeManifestKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", collectionPrefix, name, manifestSegment))
}
