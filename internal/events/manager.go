package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// Observer receives pipeline notifications. Callbacks run synchronously on
// the calculating goroutine, so implementations should hand work off rather
// than block.
type Observer interface {
	RiskCalculated(assessment *domain.RiskAssessment)
	StrategiesGenerated(userID string, strategies []domain.StrategyCandidate)
	RiskAlert(userID string, score float64, recommendations []string)
}

// EventType labels logged pipeline events
type EventType string

const (
	RiskCalculated      EventType = "RISK_CALCULATED"
	StrategiesGenerated EventType = "STRATEGIES_GENERATED"
	RiskAlert           EventType = "RISK_ALERT"
)

// Manager fans notifications out to registered observers and logs every
// event. It replaces a global publish/subscribe bus with explicit
// registration.
type Manager struct {
	mu        sync.RWMutex
	observers []Observer
	log       zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Register adds an observer. There is no unregister; observers live as long
// as the process.
func (m *Manager) Register(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// EmitRiskCalculated notifies observers of a completed assessment
func (m *Manager) EmitRiskCalculated(assessment *domain.RiskAssessment) {
	m.logEvent(RiskCalculated, assessment.UserID)
	for _, o := range m.snapshot() {
		o.RiskCalculated(assessment)
	}
}

// EmitStrategiesGenerated notifies observers of a ranked strategy list
func (m *Manager) EmitStrategiesGenerated(userID string, strategies []domain.StrategyCandidate) {
	m.logEvent(StrategiesGenerated, userID)
	for _, o := range m.snapshot() {
		o.StrategiesGenerated(userID, strategies)
	}
}

// EmitRiskAlert notifies observers that a risk score crossed the alert threshold
func (m *Manager) EmitRiskAlert(userID string, score float64, recommendations []string) {
	m.log.Warn().
		Str("event_type", string(RiskAlert)).
		Str("user_id", userID).
		Float64("score", score).
		Msg("Risk alert")
	for _, o := range m.snapshot() {
		o.RiskAlert(userID, score, recommendations)
	}
}

func (m *Manager) snapshot() []Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Observer, len(m.observers))
	copy(out, m.observers)
	return out
}

func (m *Manager) logEvent(eventType EventType, userID string) {
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("user_id", userID).
		Time("timestamp", time.Now()).
		Msg("Event emitted")
}
