package ingest

import (
	"context"

	"github.com/somasolver/somas/pkg/parallel"
	"github.com/somasolver/somas/solver"
)

type edge struct {
	i, j int
}

// BuildModel turns records into a TensorDesc map and its conflict matrix.
// The O(n^2) pairwise lifetime scan is split into chunks and run over a
// worker pool; each worker only appends to its own local edge slice, and
// the shared matrix is mutated once, sequentially, after every chunk has
// finished — so there is no concurrent writer on any bitset row.
func BuildModel(ctx context.Context, records []Record, workers int) (solver.TensorMap, *solver.ConflictModel) {
	n := len(records)
	tensors := make(solver.TensorMap, n)
	for _, rec := range records {
		tensors[rec.ID] = solver.NewTensorDesc(rec.ID, rec.Size, solver.LifelongNone)
	}
	model := solver.NewConflictModel(maxID(records) + 1)

	cfg := parallel.DefaultPoolConfig()
	if workers > 0 {
		cfg = cfg.WithWorkers(workers)
	}
	processor := parallel.NewChunkProcessor[Record, []edge](cfg)

	edges := processor.ProcessChunks(ctx, records,
		func(ctx context.Context, chunk []Record, workerID int) []edge {
			var local []edge
			for _, a := range chunk {
				for _, b := range records {
					if b.ID <= a.ID {
						continue
					}
					if disjoint(a, b) {
						local = append(local, edge{i: a.ID, j: b.ID})
					}
				}
			}
			return local
		},
		func(results [][]edge) []edge {
			var all []edge
			for _, r := range results {
				all = append(all, r...)
			}
			return all
		},
	)

	for _, e := range edges {
		model.MarkShareable(e.i, e.j)
	}

	for id, t := range tensors {
		t.NumConstraints = model.NumConstraints(id)
	}

	return tensors, model
}

// disjoint reports whether a and b's half-open lifetime intervals do not
// overlap, i.e. they may share memory.
func disjoint(a, b Record) bool {
	return a.Upper <= b.Lower || b.Upper <= a.Lower
}

func maxID(records []Record) int {
	max := 0
	for _, r := range records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}
