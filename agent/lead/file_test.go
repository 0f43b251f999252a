package lead

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

func newTestLedger(t *testing.T) *FileLedger {
	t.Helper()
	l, err := NewFileLedger(filepath.Join(t.TempDir(), "leads.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l
}

func TestAppendAssignsFields(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	stored, err := l.Append(context.Background(), contractx.Lead{
		Name:            "Dana",
		ServiceInterest: "HVAC",
		Message:         "AC is down",
		Urgency:         contractx.UrgencyNormal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID != 1 {
		t.Fatalf("expected id 1, got %d", stored.ID)
	}
	if stored.Status != contractx.LeadStatusNew {
		t.Fatalf("expected status new, got %s", stored.Status)
	}
	if stored.Timestamp.IsZero() {
		t.Fatal("expected assigned timestamp")
	}

	leads, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != 1 {
		t.Fatalf("unexpected list: %+v", leads)
	}
}

func TestListInsertionOrder(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	for i := 0; i < 3; i++ {
		_, err := l.Append(context.Background(), contractx.Lead{
			Name:            fmt.Sprintf("c%d", i),
			ServiceInterest: "Plumbing",
			Message:         "m",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	leads, _ := l.List(context.Background())
	for i, lead := range leads {
		if lead.ID != int64(i+1) {
			t.Fatalf("expected monotonic ids, got %+v", leads)
		}
		if lead.Name != fmt.Sprintf("c%d", i) {
			t.Fatalf("expected insertion order, got %+v", leads)
		}
	}
}

func TestConcurrentAppends(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	const k = 64

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Append(context.Background(), contractx.Lead{
				Name:            fmt.Sprintf("c%d", i),
				ServiceInterest: "HVAC",
				Message:         "m",
			})
			if err != nil {
				t.Errorf("append %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	leads, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != k {
		t.Fatalf("expected %d leads, got %d", k, len(leads))
	}

	seen := make(map[int64]bool, k)
	for _, lead := range leads {
		if seen[lead.ID] {
			t.Fatalf("duplicate id %d", lead.ID)
		}
		seen[lead.ID] = true
	}
}

func TestReloadFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "leads.json")
	l, err := NewFileLedger(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.Append(context.Background(), contractx.Lead{
		Name:            "Dana",
		ServiceInterest: "HVAC",
		Message:         "m",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := NewFileLedger(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leads, _ := reopened.List(context.Background())
	if len(leads) != 1 || leads[0].Name != "Dana" {
		t.Fatalf("unexpected reloaded leads: %+v", leads)
	}

	// Ids keep climbing after a reload.
	stored, err := reopened.Append(context.Background(), contractx.Lead{
		Name:            "Sam",
		ServiceInterest: "Controls",
		Message:         "m",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID != 2 {
		t.Fatalf("expected id 2 after reload, got %d", stored.ID)
	}
}
