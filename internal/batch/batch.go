// Package batch orchestrates portfolio-wide news analysis: one job at a
// time, holdings processed sequentially.
package batch

import (
	"context"
	"fmt"
	"math"
	"sync"

	"portfolio-intel/internal/analyzer"
	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// ErrAlreadyRunning reports a start attempt while a job is in flight.
// JobID identifies the job that blocked the start.
type ErrAlreadyRunning struct {
	JobID uint
}

func (e *ErrAlreadyRunning) Error() string {
	return fmt.Sprintf("batch job %d is already running", e.JobID)
}

// Orchestrator starts batch jobs and reports their progress. The mutex
// makes the running-job check and job creation atomic, so concurrent start
// requests cannot both pass the guard; the store query remains the source
// of truth for what counts as running.
type Orchestrator struct {
	store    *store.Store
	analyzer *analyzer.Analyzer
	cfg      *store.Config

	mu sync.Mutex
	wg sync.WaitGroup
}

// New creates an Orchestrator.
func New(st *store.Store, an *analyzer.Analyzer, cfg *store.Config) *Orchestrator {
	return &Orchestrator{store: st, analyzer: an, cfg: cfg}
}

// Start creates a new batch job and begins processing it in the background.
// If a job is already running it returns ErrAlreadyRunning with that job's
// ID and creates nothing.
func (o *Orchestrator) Start(ctx context.Context) (*types.BatchJob, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	running, err := o.store.RunningJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for running job: %w", err)
	}
	if running != nil {
		return nil, &ErrAlreadyRunning{JobID: running.ID}
	}

	job, err := o.store.CreateJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch job: %w", err)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(context.Background(), job.ID)
	}()

	return job, nil
}

// Wait blocks until all background jobs started by this orchestrator have
// finished. Used during shutdown and in tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, jobID uint) {
	logger.Batch(ctx, jobID, "started")

	if err := o.store.MarkJobRunning(ctx, jobID); err != nil {
		logger.ErrorWithErr(ctx, "Failed to mark job running", err, "job_id", jobID)
		return
	}

	holdings, err := o.store.EligibleHoldings(ctx, o.cfg.Batch.QtyEpsilon)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load holdings", err, "job_id", jobID)
		o.finish(ctx, jobID)
		return
	}
	if err := o.store.SetJobTotal(ctx, jobID, len(holdings)); err != nil {
		logger.ErrorWithErr(ctx, "Failed to set job total", err, "job_id", jobID)
	}
	logger.Batch(ctx, jobID, "processing", "holdings", len(holdings))

	for idx, holding := range holdings {
		logger.Info(ctx, "Processing holding",
			"job_id", jobID,
			"position", fmt.Sprintf("%d/%d", idx+1, len(holdings)),
			"ticker", holding.Ticker,
		)
		o.processOne(ctx, holding, jobID)
	}

	o.finish(ctx, jobID)
}

// processOne isolates a panic in one holding so the rest of the batch
// still runs; the panicking ticker is counted as failed.
func (o *Orchestrator) processOne(ctx context.Context, holding types.Holding, jobID uint) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Panic while analyzing holding",
				"job_id", jobID, "ticker", holding.Ticker, "panic", fmt.Sprint(r))
			if err := o.store.FailAnalysis(ctx, holding.Ticker, fmt.Sprintf("internal error: %v", r)); err != nil {
				logger.ErrorWithErr(ctx, "Failed to record panic failure", err, "ticker", holding.Ticker)
			}
			if err := o.store.RecordItemFailure(ctx, jobID); err != nil {
				logger.ErrorWithErr(ctx, "Failed to update job counters", err, "job_id", jobID)
			}
		}
	}()
	o.analyzer.Analyze(ctx, holding, jobID)
}

func (o *Orchestrator) finish(ctx context.Context, jobID uint) {
	if err := o.store.CompleteJob(ctx, jobID); err != nil {
		logger.ErrorWithErr(ctx, "Failed to complete job", err, "job_id", jobID)
		return
	}
	if job, err := o.store.Job(ctx, jobID); err == nil && job != nil {
		logger.Batch(ctx, jobID, "completed",
			"processed", job.ProcessedHoldings,
			"total", job.TotalHoldings,
			"successful", job.SuccessfulHoldings,
			"failed", job.FailedHoldings,
		)
	}
}

// Status returns a snapshot of the most recent batch job, or nil when no
// job has ever been created.
func (o *Orchestrator) Status(ctx context.Context) (*types.JobSnapshot, error) {
	job, err := o.store.LatestJob(ctx)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	return Snapshot(job), nil
}

// Snapshot converts a job record into its status view, computing progress
// as a percentage rounded to one decimal place.
func Snapshot(job *types.BatchJob) *types.JobSnapshot {
	var progress float64
	if job.TotalHoldings > 0 {
		progress = math.Round(float64(job.ProcessedHoldings)/float64(job.TotalHoldings)*1000) / 10
	}
	return &types.JobSnapshot{
		ID:                 job.ID,
		Status:             job.Status,
		CreatedAt:          job.CreatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
		TotalHoldings:      job.TotalHoldings,
		ProcessedHoldings:  job.ProcessedHoldings,
		SuccessfulHoldings: job.SuccessfulHoldings,
		FailedHoldings:     job.FailedHoldings,
		ErrorMessage:       job.ErrorMessage,
		ProgressPct:        progress,
	}
}
