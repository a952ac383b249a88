package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists policies in PostgreSQL as one JSONB document per
// user. Policies are small and always read whole, so a document column
// beats a table per rule type.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed policy store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Policy, error) {
	var doc []byte
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT policy, updated_at FROM user_policies WHERE user_id = $1
	`, userID).Scan(&doc, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	var p Policy
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}
	p.UserID = userID
	p.UpdatedAt = updatedAt
	return &p, nil
}

func (s *PostgresStore) Put(ctx context.Context, p *Policy) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_policies (user_id, policy, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET policy = $2, updated_at = NOW()
	`, p.UserID, doc)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM user_policies WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
