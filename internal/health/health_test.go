package health

import (
	"context"
	"sync"
	"testing"
)

func TestEmptyRegistryIsHealthy(t *testing.T) {
	healthy, statuses := NewRegistry().CheckAll(context.Background())
	if !healthy {
		t.Fatal("registry with no checkers should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("statuses = %d, want 0", len(statuses))
	}
}

func TestAggregateHealth(t *testing.T) {
	ok := func(_ context.Context) Status { return Status{Healthy: true} }
	bad := func(_ context.Context) Status {
		return Status{Healthy: false, Detail: "connection refused"}
	}

	r := NewRegistry()
	r.Register("database", ok)
	r.Register("enrichment", ok)
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("all probes pass, aggregate should be healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}

	r.Register("broker", bad)
	healthy, statuses = r.CheckAll(context.Background())
	if healthy {
		t.Fatal("one failing probe must fail the aggregate")
	}
	if statuses[2].Detail != "connection refused" {
		t.Fatalf("detail = %q", statuses[2].Detail)
	}
}

func TestRegistrationNameWins(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) Status {
		return Status{Name: "something-else", Healthy: true}
	})

	_, statuses := r.CheckAll(context.Background())
	if statuses[0].Name != "database" {
		t.Fatalf("name = %q, want the registration name", statuses[0].Name)
	}
}

func TestConcurrentRegisterAndCheck(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register("probe", func(_ context.Context) Status {
				return Status{Healthy: true}
			})
		}()
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}
	wg.Wait()
}
