package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists risk analyses in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed analysis store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, a *Analysis) error {
	factorsJSON, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_analyses
			(id, user_id, z_score, abs_z_score, risk_level, decision,
			 compliance_score, location_match, unusual_time, mean, std_dev,
			 estimated, factors, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		a.ID,
		a.UserID,
		a.ZScore,
		a.AbsZScore,
		string(a.Level),
		string(a.Outcome),
		a.ComplianceScore,
		a.LocationMatch,
		a.UnusualTime,
		a.Mean,
		a.StdDev,
		a.Estimated,
		factorsJSON,
		a.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record risk analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, z_score, abs_z_score, risk_level, decision,
		       compliance_score, location_match, unusual_time, mean, std_dev,
		       estimated, factors, evaluated_at
		FROM risk_analyses
		WHERE user_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Analysis
	for rows.Next() {
		var a Analysis
		var factorsJSON []byte

		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ZScore, &a.AbsZScore, &a.Level, &a.Outcome,
			&a.ComplianceScore, &a.LocationMatch, &a.UnusualTime, &a.Mean,
			&a.StdDev, &a.Estimated, &factorsJSON, &a.EvaluatedAt,
		); err != nil {
			continue
		}
		a.Action = a.Outcome.Action()
		_ = json.Unmarshal(factorsJSON, &a.Factors)
		result = append(result, &a)
	}
	return result, rows.Err()
}
