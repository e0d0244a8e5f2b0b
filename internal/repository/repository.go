package repository

import "context"

// SolveRunRepository persists the outcome of solve invocations for later
// audit and trend queries.
type SolveRunRepository interface {
	Create(ctx context.Context, run *SolveRun) error
	GetByID(ctx context.Context, id uint) (*SolveRun, error)
	ListByTrace(ctx context.Context, traceName string, limit int) ([]*SolveRun, error)
}
