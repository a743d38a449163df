package grouplayout

import "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"

const bytesPerMB = 1024 * 1024

// SizeFunc reports the size of a node in bytes. ok is false when no size data
// exists; such nodes count as zero.
type SizeFunc func(asset.ID) (size int64, ok bool)

// MBToBytes converts a megabyte budget to bytes. Non-positive budgets mean
// "no limit" and return 0.
func MBToBytes(mb float64) int64 {
	if mb <= 0 {
		return 0
	}
	return int64(mb * bytesPerMB)
}

// Chunk is one size-bounded slice of a node list.
type Chunk struct {
	Nodes     []asset.ID
	SizeBytes int64
	// Oversized is set when the chunk holds a single node that alone exceeds
	// the budget.
	Oversized bool
}

// Split cuts nodes into consecutive chunks whose accumulated size stays within
// maxBytes. A node that would push the running total past the budget starts
// a new chunk, but every chunk receives at least one node, so a single node
// larger than the budget gets a chunk of its own.
//
// maxBytes <= 0 disables splitting. Node order is preserved and every node
// appears in exactly one chunk.
func Split(nodes []asset.ID, size SizeFunc, maxBytes int64) []Chunk {
	if len(nodes) == 0 {
		return nil
	}
	var (
		chunks []Chunk
		cur    Chunk
	)
	for _, n := range nodes {
		s := nodeSize(size, n)
		if maxBytes > 0 && len(cur.Nodes) > 0 && cur.SizeBytes+s > maxBytes {
			chunks = append(chunks, cur)
			cur = Chunk{}
		}
		cur.Nodes = append(cur.Nodes, n)
		cur.SizeBytes += s
		if maxBytes > 0 && len(cur.Nodes) == 1 && s > maxBytes {
			cur.Oversized = true
		}
	}
	return append(chunks, cur)
}

func nodeSize(size SizeFunc, n asset.ID) int64 {
	if size == nil {
		return 0
	}
	s, ok := size(n)
	if !ok || s < 0 {
		return 0
	}
	return s
}
