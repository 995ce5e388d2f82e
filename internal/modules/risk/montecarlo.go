package risk

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// cancelCheckInterval is how many trials a batch runs between context checks
const cancelCheckInterval = 1000

// Simulate generates the configured number of simulated one-day portfolio
// P&L outcomes and returns them sorted ascending.
//
// Each trial draws an independent standard normal per currency, scales it by
// that currency's daily volatility and exposure, and sums across currencies.
// Draws are independent across currencies; the correlation matrix is not
// applied through a Cholesky factor. Correlation effects are captured by the
// parametric method instead.
//
// Trials are split into independent batches running on their own goroutines.
// Batch b seeds its own generator from MonteCarloSeed+b, so results are
// reproducible for a fixed seed regardless of scheduling. Cancellation is
// checked between blocks of trials; a superseded run returns ctx.Err().
func (e *Engine) Simulate(
	ctx context.Context,
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
) ([]float64, error) {
	if len(exposures) == 0 {
		return nil, nil
	}

	trials := e.params.MonteCarloTrials
	batches := e.params.MonteCarloBatches
	if batches < 1 {
		batches = 1
	}
	if batches > trials {
		batches = trials
	}
	batchSize := trials / batches

	// Flatten inputs once; batches share them read-only
	amounts := make([]float64, len(exposures))
	vols := make([]float64, len(exposures))
	for i, exp := range exposures {
		amounts[i] = exp.AmountBase
		vols[i] = profiles[exp.Currency].Daily
	}

	type batchResult struct {
		index    int
		outcomes []float64
		err      error
	}
	results := make(chan batchResult, batches)

	for b := 0; b < batches; b++ {
		size := batchSize
		if b == batches-1 {
			size = trials - batchSize*(batches-1)
		}
		go func(batch, size int) {
			outcomes, err := e.runBatch(ctx, batch, size, amounts, vols)
			results <- batchResult{index: batch, outcomes: outcomes, err: err}
		}(b, size)
	}

	sample := make([]float64, 0, trials)
	var firstErr error
	for i := 0; i < batches; i++ {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			continue
		}
		sample = append(sample, res.outcomes...)
	}
	close(results)

	if firstErr != nil {
		return nil, fmt.Errorf("monte carlo simulation aborted: %w", firstErr)
	}

	sort.Float64s(sample)
	return sample, nil
}

// runBatch executes one seeded simulation batch
func (e *Engine) runBatch(ctx context.Context, batch, size int, amounts, vols []float64) ([]float64, error) {
	seed := uint64(e.params.MonteCarloSeed) + uint64(batch)
	normal := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewSource(seed),
	}

	outcomes := make([]float64, size)
	for trial := 0; trial < size; trial++ {
		if trial%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		pnl := 0.0
		for i := range amounts {
			pnl += amounts[i] * vols[i] * normal.Rand()
		}
		outcomes[trial] = pnl
	}
	return outcomes, nil
}
