package cache

import (
	"sync"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// AssessmentCache retains the most recent risk assessment per user.
// Last write wins; no history is kept. Implementations must be safe for
// concurrent use.
type AssessmentCache interface {
	Put(userID string, assessment *domain.RiskAssessment) error
	Get(userID string) (*domain.RiskAssessment, bool, error)
	Delete(userID string) error
	Close() error
}

// Memory is the in-process implementation of AssessmentCache
type Memory struct {
	mu          sync.RWMutex
	assessments map[string]*domain.RiskAssessment
}

// NewMemory creates an empty in-memory assessment cache
func NewMemory() *Memory {
	return &Memory{assessments: make(map[string]*domain.RiskAssessment)}
}

// Put stores the assessment, replacing any previous one for the user
func (c *Memory) Put(userID string, assessment *domain.RiskAssessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assessments[userID] = assessment
	return nil
}

// Get returns the most recent assessment for the user
func (c *Memory) Get(userID string) (*domain.RiskAssessment, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assessments[userID]
	return a, ok, nil
}

// Delete evicts the user's assessment
func (c *Memory) Delete(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.assessments, userID)
	return nil
}

// Close is a no-op for the in-memory cache
func (c *Memory) Close() error {
	return nil
}
