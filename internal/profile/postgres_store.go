package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists profiles in PostgreSQL. Scalar statistics get
// their own columns so dashboards can query them; the hour histogram and
// trusted locations ride along as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	var histogram, locations []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, learning_enabled, amount_mean, amount_std_dev, amount_count,
		       hour_histogram, transaction_count, trusted_locations, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`, userID).Scan(
		&p.UserID, &p.LearningEnabled, &p.AmountMean, &p.AmountStdDev, &p.AmountCount,
		&histogram, &p.TransactionCount, &locations, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := json.Unmarshal(histogram, &p.HourHistogram); err != nil {
		return nil, fmt.Errorf("failed to decode hour histogram: %w", err)
	}
	if err := json.Unmarshal(locations, &p.TrustedLocations); err != nil {
		return nil, fmt.Errorf("failed to decode trusted locations: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Put(ctx context.Context, p *Profile) error {
	histogram, err := json.Marshal(p.HourHistogram)
	if err != nil {
		return fmt.Errorf("failed to encode hour histogram: %w", err)
	}
	locations, err := json.Marshal(p.TrustedLocations)
	if err != nil {
		return fmt.Errorf("failed to encode trusted locations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (
			user_id, learning_enabled, amount_mean, amount_std_dev, amount_count,
			hour_histogram, transaction_count, trusted_locations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			learning_enabled = $2, amount_mean = $3, amount_std_dev = $4, amount_count = $5,
			hour_histogram = $6, transaction_count = $7, trusted_locations = $8, updated_at = NOW()
	`, p.UserID, p.LearningEnabled, p.AmountMean, p.AmountStdDev, p.AmountCount,
		histogram, p.TransactionCount, locations, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM user_profiles WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
