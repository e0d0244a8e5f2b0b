// Package bitset provides the fixed-size bit vector used to back the
// tensor reuse ("can-share") matrix and the solver's verification sweep.
package bitset

import "math/bits"

// Set is a fixed-size bit vector. One row of the reuse matrix is one Set;
// bit j of row i means tensor i and tensor j may share an offset.
type Set struct {
	words []uint64
	size  int
}

// New creates a Set able to hold size bits, all initially clear.
func New(size int) *Set {
	if size <= 0 {
		size = 64
	}
	return &Set{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets bit i.
func (s *Set) Set(i int) {
	if i < 0 || i >= s.size {
		return
	}
	s.words[i/64] |= 1 << uint(i%64)
}

// Clear clears bit i.
func (s *Set) Clear(i int) {
	if i < 0 || i >= s.size {
		return
	}
	s.words[i/64] &^= 1 << uint(i%64)
}

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	if i < 0 || i >= s.size {
		return false
	}
	return s.words[i/64]&(1<<uint(i%64)) != 0
}

// SetAll sets every bit up to size.
func (s *Set) SetAll() {
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	s.maskTail()
}

// ClearAll clears every bit.
func (s *Set) ClearAll() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Count returns the population count.
func (s *Set) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Size returns the number of addressable bits.
func (s *Set) Size() int {
	return s.size
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return &Set{words: words, size: s.size}
}

// And intersects s with other in place.
func (s *Set) And(other *Set) {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		s.words[i] &= other.words[i]
	}
	for i := n; i < len(s.words); i++ {
		s.words[i] = 0
	}
}

// Or unions other into s in place.
func (s *Set) Or(other *Set) {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		s.words[i] |= other.words[i]
	}
}

// AndNot clears from s every bit that is set in other.
func (s *Set) AndNot(other *Set) {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		s.words[i] &^= other.words[i]
	}
}

// Iterate calls fn for each set bit in ascending order, stopping early if
// fn returns false.
func (s *Set) Iterate(fn func(i int) bool) {
	for wi, w := range s.words {
		base := wi * 64
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			if !fn(base + tz) {
				return
			}
			w &= w - 1
		}
	}
}

// maskTail clears any bits beyond size in the final word, so Count and
// Iterate never report phantom bits introduced by SetAll.
func (s *Set) maskTail() {
	if s.size%64 == 0 {
		return
	}
	last := len(s.words) - 1
	s.words[last] &= (uint64(1) << uint(s.size%64)) - 1
}

// Matrix is the symmetric NxN "can-share" relation between tensors: row i,
// bit j set means tensors i and j may occupy the same memory. It is built
// once by pkg/ingest and read concurrently by every member of the solver
// portfolio, so all mutation happens before the portfolio starts and rows
// are never mutated afterward.
type Matrix struct {
	rows []*Set
	n    int
}

// NewMatrix allocates an n x n matrix with every bit clear.
func NewMatrix(n int) *Matrix {
	rows := make([]*Set, n)
	for i := range rows {
		rows[i] = New(n)
	}
	return &Matrix{rows: rows, n: n}
}

// MarkShareable records that tensors i and j may share memory. The matrix
// is symmetric, so both (i, j) and (j, i) are set; the diagonal is left
// untouched since a tensor never needs to "share" with itself.
func (m *Matrix) MarkShareable(i, j int) {
	if i == j {
		return
	}
	m.rows[i].Set(j)
	m.rows[j].Set(i)
}

// CanShare reports whether tensors i and j may occupy the same memory.
func (m *Matrix) CanShare(i, j int) bool {
	if i == j {
		return true
	}
	return m.rows[i].Test(j)
}

// Row returns the raw reuse row for tensor i. Callers must not mutate it.
func (m *Matrix) Row(i int) *Set {
	return m.rows[i]
}

// N returns the matrix dimension.
func (m *Matrix) N() int {
	return m.n
}

// NumConstraints returns N-1 minus the number of tensors i may share with,
// i.e. how many other tensors i conflicts with (the diagonal is never
// stored, so i itself is not counted). This mirrors the original solver's
// ordering key: tensors with more conflicts are placed first by several
// sort strategies.
func (m *Matrix) NumConstraints(i int) int {
	return m.n - 1 - m.rows[i].Count()
}
