package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/modules/risk"
)

// ReassessJob periodically refreshes the risk assessment for every
// portfolio the service has seen since startup.
type ReassessJob struct {
	service *risk.Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewReassessJob creates a new reassessment job
func NewReassessJob(service *risk.Service, log zerolog.Logger) *ReassessJob {
	return &ReassessJob{
		service: service,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "risk_reassess").Logger(),
	}
}

// Name returns the job name
func (j *ReassessJob) Name() string {
	return "risk_reassess"
}

// Run reassesses all known portfolios. A failure on one portfolio does not
// stop the rest; a run superseded by a live request is not an error.
func (j *ReassessJob) Run() error {
	portfolios := j.service.Portfolios()
	if len(portfolios) == 0 {
		j.log.Debug().Msg("No portfolios to reassess")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	var failed int
	for _, portfolio := range portfolios {
		if _, err := j.service.Calculate(ctx, portfolio); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			failed++
			j.log.Error().
				Err(err).
				Str("user_id", portfolio.UserID).
				Msg("Reassessment failed")
		}
	}

	j.log.Info().
		Int("portfolios", len(portfolios)).
		Int("failed", failed).
		Msg("Reassessment sweep complete")

	return nil
}
