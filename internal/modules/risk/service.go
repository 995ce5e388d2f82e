package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/cache"
	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/events"
	"github.com/aristath/fx-sentinel/internal/marketdata"
	"github.com/aristath/fx-sentinel/internal/modules/exposure"
	"github.com/aristath/fx-sentinel/internal/modules/volatility"
)

// Outcome bundles an assessment with the intermediate statistics the
// hedging pipeline reuses, so strategy generation does not refetch history.
type Outcome struct {
	Assessment *domain.RiskAssessment
	Profiles   map[domain.Currency]domain.VolatilityProfile
	Matrix     *domain.CorrelationMatrix
}

// Service orchestrates the risk pipeline: exposures, volatility and
// correlation estimation, the synchronization barrier into the risk-measure
// stage, scoring, caching and observer notification.
type Service struct {
	calculator *exposure.Calculator
	estimator  *volatility.Estimator
	analyzer   *volatility.Analyzer
	engine     *Engine
	cache      cache.AssessmentCache
	events     *events.Manager
	params     config.RiskParams
	log        zerolog.Logger

	mu         sync.Mutex
	inflight   map[string]*inflightRun
	portfolios map[string]domain.Portfolio
}

type inflightRun struct {
	cancel context.CancelFunc
}

// NewService creates a new risk service
func NewService(
	provider marketdata.Provider,
	assessmentCache cache.AssessmentCache,
	eventManager *events.Manager,
	params config.RiskParams,
	log zerolog.Logger,
) *Service {
	return &Service{
		calculator: exposure.NewCalculator(provider, log),
		estimator:  volatility.NewEstimator(provider, params, log),
		analyzer:   volatility.NewAnalyzer(log),
		engine:     NewEngine(params, log),
		cache:      assessmentCache,
		events:     eventManager,
		params:     params,
		log:        log.With().Str("service", "risk").Logger(),
	}
}

// Calculate runs the full risk pipeline for a portfolio. A new calculation
// for the same user cancels any in-flight one; the superseded run returns
// a context error and never reaches the cache.
func (s *Service) Calculate(ctx context.Context, portfolio domain.Portfolio) (*Outcome, error) {
	runCtx, run := s.beginRun(ctx, portfolio)
	defer s.endRun(portfolio.UserID, run)

	started := time.Now()
	outcome, err := s.calculate(runCtx, portfolio)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Info().Str("user_id", portfolio.UserID).Msg("Assessment superseded, run cancelled")
			return nil, err
		}
		return nil, err
	}

	if err := s.cache.Put(portfolio.UserID, outcome.Assessment); err != nil {
		// The assessment is still valid; a cache failure only costs reuse
		s.log.Error().Err(err).Str("user_id", portfolio.UserID).Msg("Failed to cache assessment")
	}

	s.events.EmitRiskCalculated(outcome.Assessment)
	if outcome.Assessment.RiskScore >= s.params.RiskAlertScore {
		s.events.EmitRiskAlert(portfolio.UserID, outcome.Assessment.RiskScore, outcome.Assessment.Recommendations)
	}

	s.log.Info().
		Str("user_id", portfolio.UserID).
		Float64("risk_score", outcome.Assessment.RiskScore).
		Int("currencies", len(outcome.Assessment.Exposures)).
		Dur("elapsed", time.Since(started)).
		Msg("Risk assessment completed")

	return outcome, nil
}

// calculate is the pipeline body, free of lifecycle concerns
func (s *Service) calculate(ctx context.Context, portfolio domain.Portfolio) (*Outcome, error) {
	expResult, err := s.calculator.Calculate(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, len(expResult.Exposures))
	for i, exp := range expResult.Exposures {
		currencies[i] = exp.Currency
	}

	// Per-currency estimation fans out concurrently; the risk-measure stage
	// below needs all profiles and the full matrix, forming the barrier
	profiles := s.estimator.EstimateAll(ctx, currencies, portfolio.BaseCurrency)
	matrix := s.analyzer.Analyze(profiles)

	assessment := &domain.RiskAssessment{
		ID:             uuid.New().String(),
		UserID:         portfolio.UserID,
		Timestamp:      time.Now().UTC(),
		BaseCurrency:   portfolio.BaseCurrency,
		TotalExposure:  expResult.TotalExposure,
		PortfolioValue: expResult.PortfolioValue,
		Exposures:      expResult.Exposures,
		Correlations:   matrix.Snapshot(),
	}

	if len(expResult.Exposures) > 0 {
		sample, err := s.engine.Simulate(ctx, expResult.Exposures, profiles)
		if err != nil {
			return nil, err
		}

		confidences := append([]float64(nil), s.params.ConfidenceLevels...)
		sort.Float64s(confidences)
		for _, confidence := range confidences {
			assessment.VaR = append(assessment.VaR,
				domain.VaRResult{
					Method:     domain.VaRHistorical,
					Confidence: confidence,
					Value:      s.engine.HistoricalVaR(expResult.Exposures, profiles, confidence),
				},
				domain.VaRResult{
					Method:     domain.VaRParametric,
					Confidence: confidence,
					Value:      s.engine.ParametricVaR(expResult.Exposures, profiles, matrix, confidence),
				},
				domain.VaRResult{
					Method:     domain.VaRMonteCarlo,
					Confidence: confidence,
					Value:      VaRFromSample(sample, confidence),
				},
			)
		}
		if len(confidences) > 0 {
			assessment.ExpectedShortfall = ExpectedShortfallFromSample(sample, confidences[0])
		}

		assessment.Concentration = s.engine.Concentration(expResult.Exposures)
		assessment.RiskFactors = s.engine.DecomposeRiskFactors(expResult.Exposures, profiles, matrix)
		assessment.StressTests = s.engine.RunStressTests(expResult.Exposures, expResult.TotalExposure)
	}

	assessment.RiskScore = s.engine.Score(expResult.Exposures, profiles, assessment.Concentration)
	assessment.Recommendations = s.engine.Recommendations(
		assessment.RiskScore, expResult.Exposures, profiles, assessment.Concentration, assessment.RiskFactors)

	if err := validate(assessment); err != nil {
		return nil, domain.NewCalculationError("risk_assessment", portfolio.UserID, err)
	}

	return &Outcome{Assessment: assessment, Profiles: profiles, Matrix: matrix}, nil
}

// validate rejects unrepresentable results before they reach the cache
func validate(a *domain.RiskAssessment) error {
	if math.IsNaN(a.RiskScore) || math.IsInf(a.RiskScore, 0) {
		return fmt.Errorf("risk score is not a finite number")
	}
	for _, v := range a.VaR {
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return fmt.Errorf("%s VaR at %.2f is not a finite number", v.Method, v.Confidence)
		}
	}
	return nil
}

// beginRun registers a run for the user, cancelling any in-flight one
func (s *Service) beginRun(ctx context.Context, portfolio domain.Portfolio) (context.Context, *inflightRun) {
	runCtx, cancel := context.WithCancel(ctx)
	run := &inflightRun{cancel: cancel}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]*inflightRun)
		s.portfolios = make(map[string]domain.Portfolio)
	}
	if prev, ok := s.inflight[portfolio.UserID]; ok {
		prev.cancel()
	}
	s.inflight[portfolio.UserID] = run
	s.portfolios[portfolio.UserID] = portfolio
	return runCtx, run
}

// endRun clears the run registration unless a newer run replaced it
func (s *Service) endRun(userID string, run *inflightRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.inflight[userID]; ok && current == run {
		delete(s.inflight, userID)
	}
	run.cancel()
}

// Latest returns the cached most-recent assessment for a user
func (s *Service) Latest(userID string) (*domain.RiskAssessment, bool, error) {
	return s.cache.Get(userID)
}

// Portfolios returns a snapshot of every portfolio seen so far, for the
// periodic reassessment job
func (s *Service) Portfolios() []domain.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
