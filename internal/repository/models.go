package repository

import "time"

// SolveRun is one audit row for a completed SOMAS solve invocation. It
// records enough of the winning candidate's shape to answer "what did we
// pick and why" without re-running the portfolio.
type SolveRun struct {
	ID        uint   `gorm:"primarykey"`
	TraceName string `gorm:"index;size:255"`

	TensorCount  int
	BestBytes    int64
	LifelongBytes int64
	Algorithm    string `gorm:"size:32"`
	SortStrategy string `gorm:"size:32"`
	FitStrategy  string `gorm:"size:32"`
	ElapsedMicros int64
	SpreadPercent float64
	Verified     bool

	CreatedAt time.Time
}

func (SolveRun) TableName() string {
	return "solve_runs"
}
