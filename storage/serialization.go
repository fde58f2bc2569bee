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
	"encoding/binary"
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/assessor/core"
)

// float32Size is the encoded width of one raw float32.
const float32Size = 4

// MarshalKey serializes a Key to 8 big-endian bytes.
func MarshalKey(key core.Key) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(key))
	return buf
}

// UnmarshalKey deserializes a Key.
func UnmarshalKey(data []byte) (core.Key, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: key has %d bytes", ErrTruncatedData, len(data))
	}
	return core.Key(binary.BigEndian.Uint64(data)), nil
}

// VectorSize returns the encoded size of vector.
func VectorSize(vector []float32) int {
	size := varint.Int.Size(len(vector))
	for _, v := range vector {
		size += raw.Float32.Size(v)
	}
	return size
}

// MarshalVector serializes a vector as a varint length followed by raw float32 values.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, VectorSize(vector))
	n := varint.Int.Marshal(len(vector), buf)
	for _, v := range vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVector deserializes a vector produced by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	length, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative vector length %d", ErrSerializationFailed, length)
	}
	if len(data)-n < length*float32Size {
		return nil, fmt.Errorf("%w: want %d values, have %d bytes", ErrTruncatedData, length, len(data)-n)
	}

	vector := make([]float32, length)
	for i := range vector {
		v, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", ErrSerializationFailed, i, err)
		}
		vector[i] = v
		n += m
	}
	return vector, nil
}
