package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

// FileLedger keeps leads in a single JSON file, append-only in insertion
// order. All mutation happens under one mutex, so concurrent captures cannot
// lose records to a read-modify-write race.
type FileLedger struct {
	mu     sync.Mutex
	path   string
	leads  []contractx.Lead
	lastID int64

	now func() time.Time
}

// NewFileLedger opens (or creates) the ledger file at path and loads any
// existing records.
func NewFileLedger(path string) (*FileLedger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	l := &FileLedger{path: path, now: time.Now}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLedger) load() error {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read ledger file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &l.leads); err != nil {
		return fmt.Errorf("decode ledger file %s: %w", l.path, err)
	}
	for _, lead := range l.leads {
		if lead.ID > l.lastID {
			l.lastID = lead.ID
		}
	}
	return nil
}

// Append assigns the id, capture timestamp, and status, persists the record,
// and returns it. The in-memory slice is only extended once the file write
// succeeded, so a failed write does not leave a phantom record behind.
func (l *FileLedger) Append(ctx context.Context, lead contractx.Lead) (contractx.Lead, error) {
	if err := ctx.Err(); err != nil {
		return contractx.Lead{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lead.ID = l.lastID + 1
	lead.Timestamp = l.now().UTC()
	lead.Status = contractx.LeadStatusNew

	next := append(append([]contractx.Lead(nil), l.leads...), lead)
	if err := l.persist(next); err != nil {
		return contractx.Lead{}, fmt.Errorf("persist lead: %w", err)
	}

	l.leads = next
	l.lastID = lead.ID
	return lead, nil
}

// List returns all records in insertion order.
func (l *FileLedger) List(ctx context.Context) ([]contractx.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]contractx.Lead(nil), l.leads...), nil
}

func (l *FileLedger) persist(leads []contractx.Lead) error {
	raw, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never truncates the ledger.
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
