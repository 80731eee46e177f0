// Package estimator checks a program's static envelope, then samples it
// size*ObsFactor times to build a histogram over that envelope. Sampling is
// embarrassingly parallel — each worker owns an independent RNG — so it
// fans out across goroutines with golang.org/x/sync/errgroup the way
// sentra's job runner fans work across its own worker pool.
package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sudice/internal/checker"
	"sudice/internal/config"
	"sudice/internal/interp"
	"sudice/internal/ir"
	"sudice/internal/rng"
)

// Results is one completed estimation run.
type Results struct {
	RunID uuid.UUID

	Min, Max int64
	// Hist[i] counts samples equal to Min+i; it always has Max-Min+1 slots.
	Hist  []uint64
	Total int64

	EV float64
	SD float64
}

// Estimate checks prog, then draws Total = (Max-Min+1) * cfg.ObsFactor
// independent samples split evenly across cfg.Workers goroutines, merging
// their partial histograms into one Results.
func Estimate(ctx context.Context, prog *ir.Program, cfg config.EstimatorConfig) (*Results, error) {
	min, max, err := checker.Check(prog)
	if err != nil {
		return nil, err
	}
	size := max - min + 1
	if size <= 0 {
		return nil, fmt.Errorf("estimator: degenerate range [%d, %d]", min, max)
	}
	total := size * int64(cfg.ObsFactor)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if int64(workers) > total {
		workers = int(total)
	}

	partials := make([][]uint64, workers)
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		share := total / int64(workers)
		if w == workers-1 {
			share += total % int64(workers)
		}
		g.Go(func() (err error) {
			// The checker is supposed to have already ruled out any shape
			// violation in prog; a panic here means that guarantee broke,
			// not that the input was bad. Recover it into an error anyway,
			// the way sentra's own job pool converts a worker panic rather
			// than taking the whole process down with it.
			defer func() {
				if r := recover(); r != nil {
					if sv, ok := r.(*interp.ShapeViolation); ok {
						err = fmt.Errorf("estimator: %w", sv)
						return
					}
					panic(r)
				}
			}()
			src := rng.New(cfg.Seed + int64(w))
			hist := make([]uint64, size)
			for i := int64(0); i < share; i++ {
				sample := interp.Interpret(prog, src)
				hist[sample-min]++
			}
			partials[w] = hist
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hist := make([]uint64, size)
	for _, p := range partials {
		for i, c := range p {
			hist[i] += c
		}
	}

	ev, sd := moments(hist, min)

	return &Results{
		RunID: uuid.New(),
		Min:   min,
		Max:   max,
		Hist:  hist,
		Total: total,
		EV:    ev,
		SD:    sd,
	}, nil
}

// moments computes the sample mean and standard deviation of a histogram
// whose bucket i represents the value min+i.
func moments(hist []uint64, min int64) (ev, sd float64) {
	var total float64
	for i, c := range hist {
		v := float64(min + int64(i))
		total += float64(c)
		ev += v * float64(c)
	}
	if total == 0 {
		return 0, 0
	}
	ev /= total
	for i, c := range hist {
		v := float64(min + int64(i))
		d := v - ev
		sd += d * d * float64(c)
	}
	sd /= total
	return ev, math.Sqrt(sd)
}
