package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CatchRecord is one analyzed catch upload. The agent reads these through
// the catch-history tools; the analysis pipeline that writes them is a
// separate system.
type CatchRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Species        string    `json:"species"`
	Location       string    `json:"location,omitempty"`
	Confidence     float64   `json:"confidence"` // 0-1
	WeightKg       float64   `json:"weight_kg"`
	PricePerKg     int       `json:"price_per_kg"` // INR
	QualityGrade   string    `json:"quality_grade,omitempty"`
	Sustainable    bool      `json:"sustainable"`
	AnalysisStatus string    `json:"analysis_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// AddCatch inserts a catch record. Used by seeding and tests; the live
// analysis pipeline writes through the same table.
func (s *Store) AddCatch(c *CatchRecord) error {
	if c.ID == "" {
		c.ID = "catch_" + uuid.NewString()[:12]
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.AnalysisStatus == "" {
		c.AnalysisStatus = "completed"
	}
	_, err := s.db.Exec(`
		INSERT INTO catches (id, user_id, species, location, confidence, weight_kg, price_per_kg, quality_grade, sustainable, analysis_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Species, c.Location, c.Confidence, c.WeightKg,
		c.PricePerKg, c.QualityGrade, c.Sustainable, c.AnalysisStatus,
		c.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert catch: %w", err)
	}
	return nil
}

// ListCatches returns a user's catches, newest first, with offset-based
// pagination.
func (s *Store) ListCatches(userID string, limit, offset int) ([]*CatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, species, location, confidence, weight_kg, price_per_kg, quality_grade, sustainable, analysis_status, created_at
		FROM catches WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query catches: %w", err)
	}
	defer rows.Close()

	var catches []*CatchRecord
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, err
		}
		catches = append(catches, c)
	}
	return catches, rows.Err()
}

// GetCatch retrieves one catch record by id.
func (s *Store) GetCatch(id string) (*CatchRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, species, location, confidence, weight_kg, price_per_kg, quality_grade, sustainable, analysis_status, created_at
		FROM catches WHERE id = ?
	`, id)
	return scanCatch(row)
}

func scanCatch(row rowScanner) (*CatchRecord, error) {
	var c CatchRecord
	var location, grade sql.NullString
	var createdStr string

	err := row.Scan(&c.ID, &c.UserID, &c.Species, &location, &c.Confidence,
		&c.WeightKg, &c.PricePerKg, &grade, &c.Sustainable, &c.AnalysisStatus, &createdStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan catch: %w", err)
	}
	if location.Valid {
		c.Location = location.String
	}
	if grade.Valid {
		c.QualityGrade = grade.String
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &c, nil
}
