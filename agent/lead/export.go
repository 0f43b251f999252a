package lead

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

var csvHeader = []string{
	"id", "name", "email", "phone", "service_interest",
	"message", "urgency", "timestamp", "status",
}

// ExportCSV serializes the ledger with a header row. An empty ledger is a
// distinct condition (contract.ErrNoLeads), not an empty byte stream.
func ExportCSV(leads []contractx.Lead) ([]byte, error) {
	if len(leads) == 0 {
		return nil, contractx.ErrNoLeads
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		record := []string{
			strconv.FormatInt(lead.ID, 10),
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.ServiceInterest,
			lead.Message,
			string(lead.Urgency),
			lead.Timestamp.Format(time.RFC3339),
			lead.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stats summarizes ledger usage for the admin surface.
type Stats struct {
	TotalLeads     int                       `json:"total_leads"`
	ByUrgency      map[contractx.Urgency]int `json:"leads_by_urgency"`
	ByService      map[string]int            `json:"leads_by_service"`
	RecentActivity []contractx.Lead          `json:"recent_activity"`
}

const recentActivityLimit = 5

// Summarize aggregates the ledger: counts per urgency and service interest,
// plus the five most recent captures.
func Summarize(leads []contractx.Lead) Stats {
	stats := Stats{
		TotalLeads: len(leads),
		ByUrgency:  make(map[contractx.Urgency]int),
		ByService:  make(map[string]int),
	}

	for _, lead := range leads {
		stats.ByUrgency[lead.Urgency]++
		stats.ByService[lead.ServiceInterest]++
	}

	recent := append([]contractx.Lead(nil), leads...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	stats.RecentActivity = recent

	return stats
}
