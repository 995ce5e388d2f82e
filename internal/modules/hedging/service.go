package hedging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/events"
)

// Service runs the full hedging pipeline: need analysis, strategy
// generation, ratio optimization, cost/benefit ranking and planning.
type Service struct {
	needs     *NeedAnalyzer
	generator *Generator
	optimizer *Optimizer
	analyzer  *Analyzer
	planner   *Planner
	events    *events.Manager
	log       zerolog.Logger
}

// NewService wires the hedging pipeline
func NewService(params config.RiskParams, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		needs:     NewNeedAnalyzer(params, log),
		generator: NewGenerator(params, NewSimplePricer(), log),
		optimizer: NewOptimizer(params, log),
		analyzer:  NewAnalyzer(params, log),
		planner:   NewPlanner(params),
		events:    eventManager,
		log:       log.With().Str("service", "hedging").Logger(),
	}
}

// Recommend produces the ranked strategy bundle for a completed risk
// assessment. The result always carries the needs list; strategies and the
// plan are present only when at least one need exists.
func (s *Service) Recommend(
	ctx context.Context,
	assessment *domain.RiskAssessment,
	profiles map[domain.Currency]domain.VolatilityProfile,
	matrix *domain.CorrelationMatrix,
) (*domain.RecommendationBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &domain.RecommendationBundle{UserID: assessment.UserID}

	bundle.Needs = s.needs.Analyze(assessment, profiles)
	if len(bundle.Needs) == 0 {
		s.log.Debug().Str("user_id", assessment.UserID).Msg("no hedging needs identified")
		return bundle, nil
	}

	candidates := s.generator.Generate(bundle.Needs, profiles, matrix)
	if len(candidates) == 0 {
		return bundle, nil
	}

	s.optimizeAll(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle.Strategies = s.analyzer.Rank(candidates, bundle.Needs, assessment)
	bundle.Plan = s.planner.Plan(&bundle.Strategies[0])

	s.events.EmitStrategiesGenerated(assessment.UserID, bundle.Strategies)

	s.log.Info().
		Str("user_id", assessment.UserID).
		Int("needs", len(bundle.Needs)).
		Int("strategies", len(bundle.Strategies)).
		Str("top_strategy", bundle.Strategies[0].ID).
		Msg("hedging recommendations ready")

	return bundle, nil
}

// optimizeAll optimizes each candidate's hedge ratio concurrently.
// Candidates are independent, so each goroutine owns one slice element.
func (s *Service) optimizeAll(ctx context.Context, candidates []domain.StrategyCandidate) {
	done := make(chan int, len(candidates))

	for i := range candidates {
		go func(idx int) {
			s.optimizer.Optimize(ctx, &candidates[idx])
			done <- idx
		}(i)
	}
	for range candidates {
		<-done
	}
}
