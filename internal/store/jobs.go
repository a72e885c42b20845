package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"portfolio-intel/internal/types"
)

// CreateJob inserts a new batch job in the pending state.
func (s *Store) CreateJob(ctx context.Context) (*types.BatchJob, error) {
	job := types.BatchJob{Status: types.JobPending}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// RunningJob returns the currently running job, or nil when none is running.
// This store query is the authoritative single-running-job check.
func (s *Store) RunningJob(ctx context.Context) (*types.BatchJob, error) {
	var job types.BatchJob
	err := s.db.WithContext(ctx).Where("status = ?", types.JobRunning).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// LatestJob returns the most recently created job, or nil when no job has
// ever been created.
func (s *Store) LatestJob(ctx context.Context) (*types.BatchJob, error) {
	var job types.BatchJob
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Job returns a batch job by id, or nil when it does not exist.
func (s *Store) Job(ctx context.Context, id uint) (*types.BatchJob, error) {
	var job types.BatchJob
	err := s.db.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkJobRunning transitions a job to running and stamps its start time.
func (s *Store) MarkJobRunning(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&types.BatchJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     types.JobRunning,
			"started_at": now,
		}).Error
}

// SetJobTotal records the size of the eligible-holdings set. Set exactly
// once, before any per-item work begins.
func (s *Store) SetJobTotal(ctx context.Context, id uint, total int) error {
	return s.db.WithContext(ctx).
		Model(&types.BatchJob{}).
		Where("id = ?", id).
		Update("total_holdings", total).Error
}

// RecordItemSuccess bumps the processed and successful counters together in
// one statement so the processed == successful + failed invariant holds
// after every increment.
func (s *Store) RecordItemSuccess(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&types.BatchJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed_holdings":  gorm.Expr("processed_holdings + 1"),
			"successful_holdings": gorm.Expr("successful_holdings + 1"),
		}).Error
}

// RecordItemFailure bumps the processed and failed counters together.
func (s *Store) RecordItemFailure(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&types.BatchJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed_holdings": gorm.Expr("processed_holdings + 1"),
			"failed_holdings":    gorm.Expr("failed_holdings + 1"),
		}).Error
}

// CompleteJob transitions a job to completed regardless of how many
// individual tickers failed.
func (s *Store) CompleteJob(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&types.BatchJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       types.JobCompleted,
			"completed_at": now,
		}).Error
}
