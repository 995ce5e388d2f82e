package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/fx-sentinel/internal/database"
	"github.com/aristath/fx-sentinel/internal/domain"
)

// SQLite stores assessments as msgpack blobs so the latest assessment per
// user survives a restart. The upsert keeps the last-write-wins contract.
type SQLite struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSQLite creates a sqlite-backed assessment cache
func NewSQLite(db *database.DB, log zerolog.Logger) *SQLite {
	return &SQLite{
		db:  db,
		log: log.With().Str("component", "assessment_cache").Logger(),
	}
}

// Put stores the assessment, replacing any previous one for the user
func (c *SQLite) Put(userID string, assessment *domain.RiskAssessment) error {
	blob, err := msgpack.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO risk_assessments (user_id, assessment, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			assessment = excluded.assessment,
			updated_at = excluded.updated_at`,
		userID, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store assessment: %w", err)
	}

	c.log.Debug().Str("user_id", userID).Int("bytes", len(blob)).Msg("Assessment cached")
	return nil
}

// Get returns the most recent assessment for the user
func (c *SQLite) Get(userID string) (*domain.RiskAssessment, bool, error) {
	var blob []byte
	err := c.db.QueryRow(
		`SELECT assessment FROM risk_assessments WHERE user_id = ?`, userID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load assessment: %w", err)
	}

	var assessment domain.RiskAssessment
	if err := msgpack.Unmarshal(blob, &assessment); err != nil {
		return nil, false, fmt.Errorf("failed to decode assessment: %w", err)
	}
	return &assessment, true, nil
}

// Delete evicts the user's assessment
func (c *SQLite) Delete(userID string) error {
	_, err := c.db.Exec(`DELETE FROM risk_assessments WHERE user_id = ?`, userID)
	return err
}

// Close is a no-op; the database connection is owned by the caller
func (c *SQLite) Close() error {
	return nil
}
