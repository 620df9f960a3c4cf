package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanshika/addrlink/internal/domain"
)

// TaskError accumulates multiple errors produced during a batch run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BatchResult is the outcome of one address group. Err is set instead of
// Report when the group was rejected.
type BatchResult struct {
	Addresses []string       `json:"addresses"`
	Report    *domain.Report `json:"report,omitempty"`
	Err       error          `json:"-"`
	Error     string         `json:"error,omitempty"`
}

// BatchAnalyzer runs many address groups on a bounded worker pool.
type BatchAnalyzer struct {
	analyzer Analyzer
	workers  int
}

// NewBatchAnalyzer creates a BatchAnalyzer with the provided concurrency.
func NewBatchAnalyzer(analyzer Analyzer, workers int) *BatchAnalyzer {
	if workers <= 0 {
		workers = 4
	}
	return &BatchAnalyzer{
		analyzer: analyzer,
		workers:  workers,
	}
}

// Run analyzes every group. Results keep the order of groups; per-group
// failures are collected into a TaskError.
func (ba *BatchAnalyzer) Run(ctx context.Context, groups [][]string, lookbackDays int) ([]BatchResult, error) {
	results := make([]BatchResult, len(groups))
	err := ba.run(ctx, len(groups), func(idx int) error {
		res := BatchResult{Addresses: groups[idx]}
		report, err := ba.analyzer.Analyze(ctx, groups[idx], lookbackDays)
		if err != nil {
			res.Err = err
			res.Error = err.Error()
			results[idx] = res
			return fmt.Errorf("group %d: %w", idx, err)
		}
		res.Report = &report
		results[idx] = res
		return nil
	})
	return results, err
}

func (ba *BatchAnalyzer) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < min(ba.workers, total); i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
