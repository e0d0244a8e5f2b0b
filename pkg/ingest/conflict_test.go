package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildModel_DisjointLifetimesCanShare(t *testing.T) {
	records := []Record{
		{ID: 0, Lower: 0, Upper: 5, Size: 100},
		{ID: 1, Lower: 5, Upper: 10, Size: 200},
	}
	tensors, model := BuildModel(context.Background(), records, 2)

	assert.True(t, model.CanShare(0, 1))
	assert.Equal(t, int64(100), tensors[0].Size)
	assert.Equal(t, int64(200), tensors[1].Size)
}

func TestBuildModel_OverlappingLifetimesCannotShare(t *testing.T) {
	records := []Record{
		{ID: 0, Lower: 0, Upper: 10, Size: 100},
		{ID: 1, Lower: 5, Upper: 15, Size: 200},
	}
	_, model := BuildModel(context.Background(), records, 2)

	assert.False(t, model.CanShare(0, 1))
}

func TestBuildModel_NumConstraintsReflectsRowPopulation(t *testing.T) {
	records := []Record{
		{ID: 0, Lower: 0, Upper: 5, Size: 100},
		{ID: 1, Lower: 5, Upper: 10, Size: 100},
		{ID: 2, Lower: 0, Upper: 10, Size: 100},
	}
	tensors, model := BuildModel(context.Background(), records, 1)

	assert.Equal(t, model.NumConstraints(0), tensors[0].NumConstraints)
	assert.Equal(t, model.NumConstraints(1), tensors[1].NumConstraints)
	assert.Equal(t, model.NumConstraints(2), tensors[2].NumConstraints)
	assert.True(t, model.CanShare(0, 1))
	assert.False(t, model.CanShare(0, 2))
	assert.False(t, model.CanShare(1, 2))
}

func TestBuildModel_EmptyInput(t *testing.T) {
	tensors, model := BuildModel(context.Background(), nil, 2)
	assert.Empty(t, tensors)
	assert.Equal(t, 1, model.N())
}

func TestBuildModel_SingleWorkerMatchesMultiWorker(t *testing.T) {
	records := []Record{
		{ID: 0, Lower: 0, Upper: 5, Size: 100},
		{ID: 1, Lower: 5, Upper: 10, Size: 100},
		{ID: 2, Lower: 0, Upper: 10, Size: 100},
		{ID: 3, Lower: 20, Upper: 30, Size: 50},
	}
	_, single := BuildModel(context.Background(), records, 1)
	_, multi := BuildModel(context.Background(), records, 4)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, single.CanShare(i, j), multi.CanShare(i, j))
		}
	}
}
