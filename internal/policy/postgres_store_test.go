package policy

import (
	"testing"

	"github.com/mbd888/fraudguard/internal/testutil"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	s := NewPostgresStore(db)
	ctx := t.Context()

	if _, err := s.Get(ctx, "pg_user"); err != ErrNotFound {
		t.Errorf("missing policy should return ErrNotFound, got %v", err)
	}

	max := 2500.0
	pol := &Policy{
		UserID:                "pg_user",
		MaxAmount:             &max,
		AllowedLocations:      []string{"Mumbai", "Pune"},
		BlockUnknownLocations: true,
		AllowedTimeRange:      &TimeRange{Start: "09:00", End: "21:00"},
	}
	if err := s.Put(ctx, pol); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "pg_user")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.MaxAmount != 2500 || len(got.AllowedLocations) != 2 || !got.BlockUnknownLocations {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.AllowedTimeRange == nil || got.AllowedTimeRange.Start != "09:00" {
		t.Errorf("time range mismatch: %+v", got.AllowedTimeRange)
	}

	// Upsert replaces.
	pol.AllowedLocations = []string{"Delhi"}
	if err := s.Put(ctx, pol); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = s.Get(ctx, "pg_user")
	if len(got.AllowedLocations) != 1 || got.AllowedLocations[0] != "Delhi" {
		t.Errorf("upsert mismatch: %v", got.AllowedLocations)
	}

	if err := s.Delete(ctx, "pg_user"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "pg_user"); err != ErrNotFound {
		t.Errorf("double delete should return ErrNotFound, got %v", err)
	}
}
