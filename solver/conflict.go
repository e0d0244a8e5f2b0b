package solver

import "github.com/somasolver/somas/pkg/bitset"

// ConflictModel is the shared, read-only reuse matrix queried by every
// member of the portfolio. It is built once by pkg/ingest and never
// mutated again.
type ConflictModel = bitset.Matrix

// NewConflictModel allocates an n x n reuse matrix with every bit clear.
func NewConflictModel(n int) *ConflictModel {
	return bitset.NewMatrix(n)
}

// Chain is an ordered sequence of tensor ids that must be laid out
// back-to-back, head first.
type Chain []int

// LinkChains installs Left/Right contiguity links into m for every chain,
// following the spec's "last writer wins" policy: a tensor that already
// has a neighbour before linking keeps getting overwritten, and onWarning
// is invoked instead of failing. A chain referencing an id absent from m
// is reported via onInvalid and the whole installation is considered
// failed by the caller (Portfolio fails the entire solve in that case).
func LinkChains(m TensorMap, chains []Chain, onWarning func(msg string), onInvalid func(id int)) bool {
	ok := true
	for _, chain := range chains {
		for i, id := range chain {
			if _, present := m[id]; !present {
				if onInvalid != nil {
					onInvalid(id)
				}
				ok = false
				continue
			}
			if i+1 >= len(chain) {
				continue
			}
			nextID := chain[i+1]
			if _, present := m[nextID]; !present {
				if onInvalid != nil {
					onInvalid(nextID)
				}
				ok = false
				continue
			}
			cur := m[id]
			next := m[nextID]
			if cur.Right != nil && onWarning != nil {
				onWarning("tensor already has a right neighbour, overwriting")
			}
			if next.Left != nil && onWarning != nil {
				onWarning("tensor already has a left neighbour, overwriting")
			}
			r := nextID
			cur.Right = &r
			l := id
			next.Left = &l
		}
	}
	return ok
}
