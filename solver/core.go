package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/somasolver/somas/pkg/collections"
	somaserrors "github.com/somasolver/somas/pkg/errors"
)

// placementsPool amortizes the placements-slice allocation across the
// portfolio's many concurrent passes; each Core.Run borrows one, grows it,
// and returns it once the pass (and its verification sweep) is done.
var placementsPool = collections.NewSlicePool[placedBlock](64)

// placedBlock is one occupied byte range, owned by a single placement
// unit (a standalone tensor or a whole contiguity chain).
type placedBlock struct {
	offset  int64
	size    int64
	members []int
}

func (b placedBlock) end() int64 { return b.offset + b.size }

func intersects(offA, szA, offB, szB int64) bool {
	return offA < offB+szB && offB < offA+szA
}

// stack is one growing region used by the many-objects algorithm.
type stack struct {
	top int64
}

// Core runs a single (sort, fit, algorithm) heuristic pass over a private
// TensorDesc clone against a shared, read-only ConflictModel.
type Core struct {
	Sort      SortStrategy
	Fit       FitStrategy
	Algorithm Algorithm
	Verify    bool
}

// Result is the outcome of one Core.Run pass.
type Result struct {
	Sort           SortStrategy
	Fit            FitStrategy
	Algorithm      Algorithm
	Tensors        TensorMap
	UpperBound     int64
	LifelongMemory int64
	Elapsed        time.Duration
	Failed         bool
	Err            error
}

// Run executes the pass: lifelong pre-reservation, ordering, placement,
// and (if configured) verification. It mutates tensors' Offset fields
// in-place and never touches model.
func (c Core) Run(tensors TensorMap, model *ConflictModel) Result {
	start := time.Now()
	res := Result{Sort: c.Sort, Fit: c.Fit, Algorithm: c.Algorithm, Tensors: tensors}

	placementsSlot := placementsPool.Get()
	defer placementsPool.Put(placementsSlot)
	placements := *placementsSlot
	var stacks []*stack
	var currentUpper int64

	placeBlock := func(offset, size int64, members []int, newStack bool) {
		placements = append(placements, placedBlock{offset: offset, size: size, members: members})
		if offset+size > currentUpper {
			currentUpper = offset + size
		}
		if c.Algorithm == AlgoManyObjects {
			if newStack {
				stacks = append(stacks, &stack{top: offset + size})
			}
		}
	}

	// Phase 1: lifelong-all pre-reservation, ascending id for determinism.
	var lifelongIDs []int
	for id, t := range tensors {
		if t.Lifelong == LifelongAll {
			lifelongIDs = append(lifelongIDs, id)
		}
	}
	sort.Ints(lifelongIDs)
	var lifelongMemory int64
	for _, id := range lifelongIDs {
		t := tensors[id]
		t.Offset = lifelongMemory
		placeBlock(lifelongMemory, t.Size, []int{id}, true)
		lifelongMemory += t.Size
	}
	res.LifelongMemory = lifelongMemory

	// Phase 2: order remaining units.
	units := buildUnits(tensors)
	orderUnits(units, c.Sort)

	// Phase 3: place each unit.
	for _, unit := range units {
		offset, usedStack, opensNew, err := c.chooseOffset(unit, placements, stacks, currentUpper, model)
		if err != nil {
			res.Failed = true
			res.Err = err
			break
		}
		cur := offset
		for _, mid := range unit.members {
			t := tensors[mid]
			t.Offset = cur
			cur += t.Size
		}
		if c.Algorithm == AlgoManyObjects && !opensNew {
			usedStack.top = offset + unit.totalSize
			placements = append(placements, placedBlock{offset: offset, size: unit.totalSize, members: unit.members})
			if offset+unit.totalSize > currentUpper {
				currentUpper = offset + unit.totalSize
			}
		} else {
			placeBlock(offset, unit.totalSize, unit.members, true)
		}
	}

	res.UpperBound = currentUpper
	res.Elapsed = time.Since(start)

	if res.Failed {
		return res
	}

	if c.Verify {
		if err := verify(tensors, placements, model); err != nil {
			res.Failed = true
			res.Err = err
		}
	}
	return res
}

// chooseOffset picks the offset for unit, dispatching on the algorithm
// variant. It returns the stack a many-objects placement landed on (nil
// for single-object) and whether a brand new stack had to be opened.
func (c Core) chooseOffset(unit placementUnit, placements []placedBlock, stacks []*stack, currentUpper int64, model *ConflictModel) (int64, *stack, bool, error) {
	feasible := func(offset int64) bool {
		for _, b := range placements {
			if !intersects(offset, unit.totalSize, b.offset, b.size) {
				continue
			}
			for _, m := range unit.members {
				for _, id := range b.members {
					if !model.CanShare(m, id) {
						return false
					}
				}
			}
		}
		return true
	}

	switch c.Algorithm {
	case AlgoManyObjects:
		type candidate struct {
			offset int64
			s      *stack
		}
		var candidates []candidate
		for _, s := range stacks {
			if feasible(s.top) {
				candidates = append(candidates, candidate{offset: s.top, s: s})
			}
		}
		if len(candidates) == 0 {
			return currentUpper, nil, true, nil
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].offset > candidates[j].offset })
		if c.Fit == FitWorstFit {
			return candidates[0].offset, candidates[0].s, false, nil
		}
		best := candidates[0]
		bestPeak := peakAt(best.offset, unit.totalSize, currentUpper)
		for _, cand := range candidates[1:] {
			peak := peakAt(cand.offset, unit.totalSize, currentUpper)
			if peak < bestPeak || (peak == bestPeak && cand.offset < best.offset) {
				best = cand
				bestPeak = peak
			}
		}
		return best.offset, best.s, false, nil

	default: // AlgoSingleObject
		candSet := map[int64]bool{0: true}
		for _, b := range placements {
			candSet[b.end()] = true
		}
		var cands []int64
		for o := range candSet {
			if feasible(o) {
				cands = append(cands, o)
			}
		}
		if len(cands) == 0 {
			return currentUpper, nil, true, nil
		}
		sort.Slice(cands, func(i, j int) bool { return cands[i] < cands[j] })
		if c.Fit == FitWorstFit {
			return cands[len(cands)-1], nil, true, nil
		}
		best := cands[0]
		bestPeak := peakAt(best, unit.totalSize, currentUpper)
		for _, o := range cands[1:] {
			peak := peakAt(o, unit.totalSize, currentUpper)
			if peak < bestPeak || (peak == bestPeak && o < best) {
				best = o
				bestPeak = peak
			}
		}
		return best, nil, true, nil
	}
}

func peakAt(offset, size, currentUpper int64) int64 {
	end := offset + size
	if end > currentUpper {
		return end
	}
	return currentUpper
}

// verify re-checks every placed pair against the conflict model and every
// chain's contiguity invariant, per spec invariants 1 and 2.
func verify(tensors TensorMap, placements []placedBlock, model *ConflictModel) error {
	sorted := make([]placedBlock, len(placements))
	copy(sorted, placements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset < sorted[j].offset })

	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].offset >= sorted[i].end() {
				break
			}
			if !intersects(sorted[i].offset, sorted[i].size, sorted[j].offset, sorted[j].size) {
				continue
			}
			for _, m := range sorted[i].members {
				for _, n := range sorted[j].members {
					if m == n {
						continue
					}
					if !model.CanShare(m, n) {
						return somaserrors.Wrap(somaserrors.CodeVerificationFailed,
							fmt.Sprintf("tensors %d and %d overlap but cannot share", m, n), nil)
					}
				}
			}
		}
	}

	for _, t := range tensors {
		if t.Right == nil {
			continue
		}
		next := tensors[*t.Right]
		if next.Offset != t.Offset+t.Size {
			return somaserrors.Wrap(somaserrors.CodeVerificationFailed,
				fmt.Sprintf("chain contiguity broken between %d and %d", t.ID, next.ID), nil)
		}
	}
	return nil
}
