package solver

import "sort"

// SortStrategy is one of the six deterministic total orders used to pick
// the placement order for tensors (and contiguity chain units).
type SortStrategy int

const (
	// SortGreaterSizeSmallerConstraints (S0): size desc, then constraints asc.
	SortGreaterSizeSmallerConstraints SortStrategy = iota
	// SortGreaterSizeGreaterConstraints (S1): size desc, constraints desc.
	SortGreaterSizeGreaterConstraints
	// SortGreaterSize (S2): size desc only.
	SortGreaterSize
	// SortSmallerConstraintsGreaterSize (S3): constraints asc, size desc.
	SortSmallerConstraintsGreaterSize
	// SortGreaterConstraintsSmallerSize (S4): constraints desc, size asc.
	SortGreaterConstraintsSmallerSize
	// SortSmallerConstraints (S5): constraints asc only.
	SortSmallerConstraints
)

// AllSortStrategies lists every sorting strategy in submission order.
var AllSortStrategies = []SortStrategy{
	SortGreaterSizeSmallerConstraints,
	SortGreaterSizeGreaterConstraints,
	SortGreaterSize,
	SortSmallerConstraintsGreaterSize,
	SortGreaterConstraintsSmallerSize,
	SortSmallerConstraints,
}

func (s SortStrategy) String() string {
	switch s {
	case SortGreaterSizeSmallerConstraints:
		return "GreaterSizeSmallerConstraints"
	case SortGreaterSizeGreaterConstraints:
		return "GreaterSizeGreaterConstraints"
	case SortGreaterSize:
		return "GreaterSize"
	case SortSmallerConstraintsGreaterSize:
		return "SmallerConstraintsGreaterSize"
	case SortGreaterConstraintsSmallerSize:
		return "GreaterConstraintsSmallerSize"
	case SortSmallerConstraints:
		return "SmallerConstraints"
	default:
		return "Unknown"
	}
}

// FitStrategy picks which feasible offset to accept for a unit.
type FitStrategy int

const (
	// FitBestFit (F0) minimizes the resulting peak, tie-break smaller offset.
	FitBestFit FitStrategy = iota
	// FitWorstFit (F1) maximizes the offset, for fragmentation headroom.
	FitWorstFit
)

// AllFitStrategies lists every fitting strategy in submission order.
var AllFitStrategies = []FitStrategy{FitBestFit, FitWorstFit}

func (f FitStrategy) String() string {
	if f == FitWorstFit {
		return "WorstFit"
	}
	return "BestFit"
}

// Algorithm is the packing strategy used within a SolverCore pass.
type Algorithm int

const (
	// AlgoSingleObject packs everything into one growing pool.
	AlgoSingleObject Algorithm = iota
	// AlgoManyObjects maintains multiple disjoint growing stacks.
	AlgoManyObjects
)

// AllAlgorithms lists every algorithm variant in submission order.
var AllAlgorithms = []Algorithm{AlgoSingleObject, AlgoManyObjects}

func (a Algorithm) String() string {
	if a == AlgoManyObjects {
		return "ManyObjects"
	}
	return "SingleObject"
}

// IsManyObjects reports whether a is the many-objects variant; used by
// the Selector's algorithm-bias tie-break.
func (a Algorithm) IsManyObjects() bool {
	return a == AlgoManyObjects
}

// placementUnit is either a standalone tensor or a whole contiguity
// chain, treated as one item during ordering and placement.
type placementUnit struct {
	headID         int
	members        []int
	totalSize      int64
	numConstraints int
}

// buildUnits groups m's non-lifelong-all tensors into placement units:
// one per chain (ordered head-first) and one per standalone tensor.
func buildUnits(m TensorMap) []placementUnit {
	var units []placementUnit
	for id, t := range m {
		if t.Lifelong == LifelongAll {
			continue
		}
		if t.Left != nil {
			continue // not a chain head; will be visited via its head
		}
		members := m.ChainMembers(id)
		var total int64
		for _, mid := range members {
			total += m[mid].Size
		}
		units = append(units, placementUnit{
			headID:         id,
			members:        members,
			totalSize:      total,
			numConstraints: t.NumConstraints,
		})
	}
	return units
}

// orderUnits sorts units in place per the active sorting strategy, with
// ties always broken by ascending head id for determinism.
func orderUnits(units []placementUnit, strategy SortStrategy) {
	less := func(i, j int) bool {
		a, b := units[i], units[j]
		switch strategy {
		case SortGreaterSizeSmallerConstraints:
			if a.totalSize != b.totalSize {
				return a.totalSize > b.totalSize
			}
			if a.numConstraints != b.numConstraints {
				return a.numConstraints < b.numConstraints
			}
		case SortGreaterSizeGreaterConstraints:
			if a.totalSize != b.totalSize {
				return a.totalSize > b.totalSize
			}
			if a.numConstraints != b.numConstraints {
				return a.numConstraints > b.numConstraints
			}
		case SortGreaterSize:
			if a.totalSize != b.totalSize {
				return a.totalSize > b.totalSize
			}
		case SortSmallerConstraintsGreaterSize:
			if a.numConstraints != b.numConstraints {
				return a.numConstraints < b.numConstraints
			}
			if a.totalSize != b.totalSize {
				return a.totalSize > b.totalSize
			}
		case SortGreaterConstraintsSmallerSize:
			if a.numConstraints != b.numConstraints {
				return a.numConstraints > b.numConstraints
			}
			if a.totalSize != b.totalSize {
				return a.totalSize < b.totalSize
			}
		case SortSmallerConstraints:
			if a.numConstraints != b.numConstraints {
				return a.numConstraints < b.numConstraints
			}
		}
		return a.headID < b.headID
	}
	sort.SliceStable(units, less)
}
