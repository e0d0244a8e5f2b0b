package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormSolveRunRepository is the GORM-backed SolveRunRepository.
type GormSolveRunRepository struct {
	db *gorm.DB
}

// NewGormSolveRunRepository wires a SolveRunRepository on top of db. It runs
// AutoMigrate so callers never have to ship a separate migration step for
// this single table.
func NewGormSolveRunRepository(db *gorm.DB) (*GormSolveRunRepository, error) {
	if err := db.AutoMigrate(&SolveRun{}); err != nil {
		return nil, fmt.Errorf("automigrate solve_runs: %w", err)
	}
	return &GormSolveRunRepository{db: db}, nil
}

func (r *GormSolveRunRepository) Create(ctx context.Context, run *SolveRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *GormSolveRunRepository) GetByID(ctx context.Context, id uint) (*SolveRun, error) {
	var run SolveRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *GormSolveRunRepository) ListByTrace(ctx context.Context, traceName string, limit int) ([]*SolveRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*SolveRun
	err := r.db.WithContext(ctx).
		Where("trace_name = ?", traceName).
		Order("created_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
