package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interval struct {
	id           int
	lower, upper int64
	size         int64
}

func buildFixture(intervals []interval) (TensorMap, *ConflictModel) {
	tensors := make(TensorMap, len(intervals))
	for _, iv := range intervals {
		tensors[iv.id] = NewTensorDesc(iv.id, iv.size, LifelongNone)
	}
	model := NewConflictModel(len(intervals))
	for i, a := range intervals {
		for j := i + 1; j < len(intervals); j++ {
			b := intervals[j]
			overlap := a.lower < b.upper && b.lower < a.upper
			if !overlap {
				model.MarkShareable(a.id, b.id)
			}
		}
	}
	for _, iv := range intervals {
		tensors[iv.id].NumConstraints = model.NumConstraints(iv.id)
	}
	return tensors, model
}

func TestSolve_E1_SingleTensor(t *testing.T) {
	tensors, model := buildFixture([]interval{{0, 0, 10, 100}})
	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tensors[0].Offset)
	assert.Equal(t, int64(100), summary.BestBytes)
}

func TestSolve_E2_DisjointLifetimesShareOffset(t *testing.T) {
	tensors, model := buildFixture([]interval{
		{0, 0, 5, 100},
		{1, 5, 10, 100},
	})
	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tensors[0].Offset)
	assert.Equal(t, int64(0), tensors[1].Offset)
	assert.Equal(t, int64(100), summary.BestBytes)
}

func TestSolve_E3_OverlappingLifetimesDisjointRanges(t *testing.T) {
	tensors, model := buildFixture([]interval{
		{0, 0, 10, 100},
		{1, 0, 10, 100},
	})
	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.NotEqual(t, tensors[0].Offset, tensors[1].Offset)
	assert.Equal(t, int64(200), summary.BestBytes)
}

func TestSolve_E5_ContiguityChain(t *testing.T) {
	tensors, model := buildFixture([]interval{
		{0, 0, 10, 128},
		{1, 0, 10, 64},
		{2, 0, 10, 64},
	})
	chains := []Chain{{1, 2}}
	summary, err := Solve(context.Background(), tensors, model, chains)
	require.NoError(t, err)
	assert.Equal(t, tensors[1].Offset+tensors[1].Size, tensors[2].Offset)
	assert.Equal(t, int64(256), summary.BestBytes)
}

func TestSolve_E6_LifelongAllPreReserved(t *testing.T) {
	tensors, model := buildFixture([]interval{
		{0, 0, 10, 512},
		{1, 0, 10, 128},
	})
	tensors[0].Lifelong = LifelongAll
	// Recompute conflict rows: lifelong-all shares with nothing.
	model = NewConflictModel(2)
	for id, t := range tensors {
		t.NumConstraints = model.NumConstraints(id)
	}

	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tensors[0].Offset)
	assert.Equal(t, int64(512), summary.LifelongBytes)
	assert.Equal(t, int64(640), summary.BestBytes)
}

func TestSolve_EmptyInput(t *testing.T) {
	tensors := TensorMap{}
	model := NewConflictModel(0)
	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.BestBytes)
}

func TestSolve_ZeroSizeTensorDoesNotAffectMax(t *testing.T) {
	tensors, model := buildFixture([]interval{
		{0, 0, 10, 100},
		{1, 0, 10, 0},
	})
	summary, err := Solve(context.Background(), tensors, model, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), summary.BestBytes)
}

func TestSolve_Deterministic(t *testing.T) {
	intervals := []interval{
		{0, 0, 10, 256},
		{1, 0, 10, 128},
		{2, 5, 15, 128},
		{3, 20, 30, 64},
	}
	t1, m1 := buildFixture(intervals)
	s1, err := Solve(context.Background(), t1, m1, nil)
	require.NoError(t, err)

	t2, m2 := buildFixture(intervals)
	s2, err := Solve(context.Background(), t2, m2, nil)
	require.NoError(t, err)

	assert.Equal(t, s1.BestBytes, s2.BestBytes)
	for id := range t1 {
		assert.Equal(t, t1[id].Offset, t2[id].Offset)
	}
}

func TestSolve_InvalidContiguityNeighbourFails(t *testing.T) {
	tensors, model := buildFixture([]interval{{0, 0, 10, 100}})
	chains := []Chain{{0, 99}}
	_, err := Solve(context.Background(), tensors, model, chains)
	assert.Error(t, err)
}

func TestSelector_PrefersManyObjectsUnderThreshold(t *testing.T) {
	results := []*Result{
		{Algorithm: AlgoManyObjects, UpperBound: 1000},
		{Algorithm: AlgoSingleObject, UpperBound: 990},
	}
	sel := Selector{ThresholdBytes: 100}
	out := sel.Select(results)
	assert.Equal(t, AlgoManyObjects, out.Best.Algorithm)
}

func TestSelector_SwitchesWhenGainExceedsThreshold(t *testing.T) {
	results := []*Result{
		{Algorithm: AlgoManyObjects, UpperBound: 1000},
		{Algorithm: AlgoSingleObject, UpperBound: 800},
	}
	sel := Selector{ThresholdBytes: 100}
	out := sel.Select(results)
	assert.Equal(t, AlgoSingleObject, out.Best.Algorithm)
}

func TestSelector_AllFailedYieldsNilBest(t *testing.T) {
	results := []*Result{
		{Failed: true},
		{Failed: true},
	}
	sel := Selector{}
	out := sel.Select(results)
	assert.Nil(t, out.Best)
}

func TestSelector_MonotonicBounds(t *testing.T) {
	results := []*Result{
		{Algorithm: AlgoSingleObject, UpperBound: 500},
		{Algorithm: AlgoSingleObject, UpperBound: 900},
		{Algorithm: AlgoSingleObject, UpperBound: 300},
	}
	sel := Selector{}
	out := sel.Select(results)
	assert.LessOrEqual(t, out.Best.UpperBound, out.WorstSize)
	for _, r := range results {
		assert.LessOrEqual(t, out.Best.UpperBound, r.UpperBound)
	}
}
