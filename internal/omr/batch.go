package omr

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one sheet of a batch.
type BatchItem struct {
	Path           string `json:"file_path"`
	TotalQuestions int    `json:"total_questions"`

	// Choices is the number of choices per question; zero uses the
	// configured default.
	Choices int `json:"number_of_choices,omitempty"`

	// Timeout bounds the wall-clock time of this item; zero means no limit.
	Timeout time.Duration `json:"-"`
}

// ProcessBatch processes independent sheets with at most concurrency running
// at once (the configured BatchConcurrency when concurrency is not positive).
// Results are returned in item order. Items still waiting when ctx is done
// fail with an internal_error Result; an item that exceeds its Timeout is
// reported as failed while its run finishes in the background.
func (p *Processor) ProcessBatch(ctx context.Context, items []BatchItem, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = p.cfg.BatchConcurrency
	}
	results := make([]Result, len(items))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = p.processItem(ctx, item)
			return nil
		})
	}
	// workers never return errors
	_ = g.Wait()

	return results
}

func (p *Processor) processItem(ctx context.Context, item BatchItem) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return failure(fmt.Errorf("batch cancelled: %w", err), item.Path, start)
	}

	choices := item.Choices
	if choices == 0 {
		choices = p.cfg.DefaultChoices
	}

	if item.Timeout <= 0 {
		return p.Process(item.Path, item.TotalQuestions, choices)
	}

	done := make(chan Result, 1)
	go func() {
		done <- p.Process(item.Path, item.TotalQuestions, choices)
	}()

	timer := time.NewTimer(item.Timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		p.logger.Printf("Processing %s timed out after %s", item.Path, item.Timeout)
		return failure(fmt.Errorf("processing timed out after %s", item.Timeout), item.Path, start)
	case <-ctx.Done():
		return failure(fmt.Errorf("batch cancelled: %w", ctx.Err()), item.Path, start)
	}
}
