package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Recognition is one reported classification.
type Recognition struct {
	ID         string
	SessionID  string
	Gesture    string
	Confidence float64
	Action     string // empty when no action fired
	Handedness string
	CreatedAt  time.Time
}

// GestureStats aggregates recognitions of one gesture.
type GestureStats struct {
	Gesture       string  `json:"gesture"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// RecognitionRepository records and queries the recognition log.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create inserts a recognition, assigning an ID and timestamp when unset.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Handedness == "" {
		rec.Handedness = "Unknown"
	}

	_, err := r.db.Exec(
		`INSERT INTO recognitions (id, session_id, gesture, confidence, action, handedness, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Gesture, rec.Confidence, rec.Action, rec.Handedness, rec.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit recognitions, newest first.
func (r *RecognitionRepository) ListRecent(limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, gesture, confidence, action, handedness, created_at
		 FROM recognitions ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Gesture, &rec.Confidence,
			&rec.Action, &rec.Handedness, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// Stats returns per-gesture counts and the mean confidence, ordered by count
// descending.
func (r *RecognitionRepository) Stats() ([]GestureStats, error) {
	rows, err := r.db.Query(
		`SELECT gesture, COUNT(*), AVG(confidence)
		 FROM recognitions GROUP BY gesture ORDER BY COUNT(*) DESC, gesture`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []GestureStats
	for rows.Next() {
		var s GestureStats
		if err := rows.Scan(&s.Gesture, &s.Count, &s.AvgConfidence); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteBefore removes recognitions older than t and returns how many were
// removed.
func (r *RecognitionRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM recognitions WHERE created_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
