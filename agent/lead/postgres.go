package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	contractx "github.com/vitalmech/assistant/agent/contract"
)

type leadRow struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name,notnull"`
	Email           string    `bun:"email"`
	Phone           string    `bun:"phone"`
	ServiceInterest string    `bun:"service_interest,notnull"`
	Message         string    `bun:"message,notnull"`
	Urgency         string    `bun:"urgency,notnull"`
	CapturedAt      time.Time `bun:"captured_at,notnull"`
	Status          string    `bun:"status,notnull"`
}

func (r leadRow) toLead() contractx.Lead {
	return contractx.Lead{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		ServiceInterest: r.ServiceInterest,
		Message:         r.Message,
		Urgency:         contractx.Urgency(r.Urgency),
		Timestamp:       r.CapturedAt,
		Status:          r.Status,
	}
}

// PostgresLedger persists leads in Postgres via bun. Append atomicity and the
// monotonic id come from the database itself.
type PostgresLedger struct {
	db  *bun.DB
	now func() time.Time
}

// NewPostgresLedger connects with the given DSN and ensures the leads table
// exists.
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if _, err := db.NewCreateTable().Model((*leadRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create leads table: %w", err)
	}

	return &PostgresLedger{db: db, now: time.Now}, nil
}

func (l *PostgresLedger) Append(ctx context.Context, lead contractx.Lead) (contractx.Lead, error) {
	row := leadRow{
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		ServiceInterest: lead.ServiceInterest,
		Message:         lead.Message,
		Urgency:         string(lead.Urgency),
		CapturedAt:      l.now().UTC(),
		Status:          contractx.LeadStatusNew,
	}

	if _, err := l.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return contractx.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return row.toLead(), nil
}

func (l *PostgresLedger) List(ctx context.Context) ([]contractx.Lead, error) {
	var rows []leadRow
	if err := l.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}

	leads := make([]contractx.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toLead())
	}
	return leads, nil
}

func (l *PostgresLedger) Close() error {
	return l.db.Close()
}
