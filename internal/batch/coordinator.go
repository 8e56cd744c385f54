// Package batch fans independent calculation requests out to the engine,
// isolating per-item failures. Results come back in request order,
// addressed by index rather than accumulated.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
)

// MaxItems is the per-batch request limit.
const MaxItems = 10

// Item is one (value, type) calculation request.
type Item struct {
	Value float64
	Type  engine.CalcType
}

// Outcome holds either a completed calculation or the error that stopped
// it. Exactly one of Result/Err is set.
type Outcome struct {
	Item    Item
	Result  *engine.Result
	Metrics analysis.ConvergenceMetrics
	Err     error
}

// Coordinator runs batches against one engine with a bounded worker pool.
type Coordinator struct {
	engine  *engine.Engine
	workers int
}

func New(e *engine.Engine, workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{engine: e, workers: workers}
}

// Run evaluates every item independently. A failing item (bad input,
// numeric overflow, even a panic) never aborts or reorders its siblings.
func (c *Coordinator) Run(ctx context.Context, items []Item, cfg config.Calculator) ([]Outcome, error) {
	if len(items) > MaxItems {
		return nil, fmt.Errorf("%w: batch size %d exceeds limit %d",
			engine.ErrInvalidInput, len(items), MaxItems)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(items))

	workers := c.workers
	if workers > len(items) {
		workers = len(items)
	}
	sem := make(chan struct{}, max(workers, 1))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, it Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[idx] = c.runOne(ctx, it, cfg)
		}(i, item)
	}
	wg.Wait()

	return outcomes, nil
}

func (c *Coordinator) runOne(ctx context.Context, item Item, cfg config.Calculator) (out Outcome) {
	out.Item = item

	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("calculation panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	res, err := c.engine.Evolve(item.Value, item.Type, cfg)
	if err != nil {
		out.Err = err
		return out
	}

	metrics, err := analysis.Convergence(res, cfg)
	if err != nil {
		out.Err = err
		return out
	}

	out.Result = res
	out.Metrics = metrics
	return out
}
