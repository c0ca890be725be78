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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docrag/core"
)

// RecordMUS encodes core.Record values.
//
// Layout: ID, Text, Source (ord strings), Chunk (varint), vector length
// (varint) followed by raw float32 components, UpdatedAt as varint Unix
// microseconds.
var RecordMUS = recordMUS{}

// ManifestMUS encodes core.Manifest values.
//
// Layout: Collection, EmbeddingModel (ord strings), Dimensions (varint),
// CreatedAt and UpdatedAt as varint Unix microseconds.
var ManifestMUS = manifestMUS{}

type recordMUS struct{}

func (recordMUS) Marshal(r core.Record, bs []byte) (n int) {
	n = ord.String.Marshal(r.ID, bs)
	n += ord.String.Marshal(r.Text, bs[n:])
	n += ord.String.Marshal(r.Metadata.Source, bs[n:])
	n += varint.Int.Marshal(r.Metadata.Chunk, bs[n:])
	n += marshalVector(r.Vector, bs[n:])
	n += marshalTime(r.UpdatedAt, bs[n:])
	return n
}

func (recordMUS) Unmarshal(bs []byte) (r core.Record, n int, err error) {
	var n1 int
	if r.ID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if r.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Metadata.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Metadata.Chunk, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (recordMUS) Size(r core.Record) (size int) {
	size = ord.String.Size(r.ID)
	size += ord.String.Size(r.Text)
	size += ord.String.Size(r.Metadata.Source)
	size += varint.Int.Size(r.Metadata.Chunk)
	size += sizeVector(r.Vector)
	size += sizeTime(r.UpdatedAt)
	return
}

type manifestMUS struct{}

func (manifestMUS) Marshal(m core.Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(m.Collection, bs)
	n += ord.String.Marshal(m.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(m.Dimensions, bs[n:])
	n += marshalTime(m.CreatedAt, bs[n:])
	n += marshalTime(m.UpdatedAt, bs[n:])
	return n
}

func (manifestMUS) Unmarshal(bs []byte) (m core.Manifest, n int, err error) {
	var n1 int
	if m.Collection, n1, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if m.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.Dimensions, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (manifestMUS) Size(m core.Manifest) (size int) {
	size = ord.String.Size(m.Collection)
	size += ord.String.Size(m.EmbeddingModel)
	size += varint.Int.Size(m.Dimensions)
	size += sizeTime(m.CreatedAt)
	size += sizeTime(m.UpdatedAt)
	return
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, x := range v {
		n += raw.Float32.Marshal(x, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Each raw float32 takes four bytes.
	if length < 0 || length > (len(bs)-n)/4 {
		return nil, n, fmt.Errorf("%w: vector length %d", ErrTruncatedData, length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := range v {
		var n1 int
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, x := range v {
		size += raw.Float32.Size(x)
	}
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeMicros(t), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeMicros(t))
}

// timeMicros maps the zero time to 0 so it survives a round trip.
func timeMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

// MarshalRecord serializes a Record to bytes.
func MarshalRecord(record *core.Record) []byte {
	buf := make([]byte, RecordMUS.Size(*record))
	RecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRecord deserializes a Record from bytes.
func UnmarshalRecord(data []byte) (*core.Record, error) {
	record, _, err := RecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, ManifestMUS.Size(*manifest))
	ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
