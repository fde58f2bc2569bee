package onnx

import (
	"github.com/poiesic/assessor/similarity"
)

// meanPool averages token states whose mask is set and L2-normalizes the result.
// hidden is laid out [batch][seq][dim] in row-major order.
func meanPool(hidden []float32, mask []int64, batch, seq, dim int) [][]float32 {
	out := make([][]float32, batch)
	for b := range batch {
		sum := make([]float32, dim)
		var count float32
		for s := range seq {
			if mask[b*seq+s] == 0 {
				continue
			}
			count++
			offset := (b*seq + s) * dim
			for d := range dim {
				sum[d] += hidden[offset+d]
			}
		}
		if count > 0 {
			for d := range sum {
				sum[d] /= count
			}
		}
		out[b] = similarity.Normalize(sum)
	}
	return out
}

// truncate limits ids to maxLen, keeping the trailing special token.
func truncate(ids []int, maxLen int) []int {
	if len(ids) <= maxLen {
		return ids
	}
	out := make([]int, maxLen)
	copy(out, ids[:maxLen-1])
	out[maxLen-1] = ids[len(ids)-1]
	return out
}

// batchInputs pads encoded sequences to a common length and flattens them.
func batchInputs(encoded [][]int, typeIDs [][]int) (ids, mask, types []int64, seq int) {
	for _, e := range encoded {
		seq = max(seq, len(e))
	}
	n := len(encoded) * seq
	ids = make([]int64, n)
	mask = make([]int64, n)
	types = make([]int64, n)
	for b, e := range encoded {
		for s, id := range e {
			ids[b*seq+s] = int64(id)
			mask[b*seq+s] = 1
			if s < len(typeIDs[b]) {
				types[b*seq+s] = int64(typeIDs[b][s])
			}
		}
	}
	return ids, mask, types, seq
}
