package badger

import (
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const vectorPrefix = "vec:"

// makeVectorKey generates the badger key for a cached vector.
// Format: prefix + 8 big-endian key bytes
func makeVectorKey(key core.Key) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+8)
	buf = append(buf, vectorPrefix...)
	return append(buf, storage.MarshalKey(key)...)
}
