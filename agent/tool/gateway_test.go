package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

type fakeLedger struct {
	appendErr error
	leads     []contractx.Lead
}

func (f *fakeLedger) Append(ctx context.Context, lead contractx.Lead) (contractx.Lead, error) {
	if f.appendErr != nil {
		return contractx.Lead{}, f.appendErr
	}
	lead.ID = int64(len(f.leads) + 1)
	lead.Timestamp = time.Now().UTC()
	lead.Status = contractx.LeadStatusNew
	f.leads = append(f.leads, lead)
	return lead, nil
}

func (f *fakeLedger) List(ctx context.Context) ([]contractx.Lead, error) {
	return append([]contractx.Lead(nil), f.leads...), nil
}

type fakeNotifier struct {
	err       error
	published []contractx.Lead
}

func (f *fakeNotifier) PublishLead(ctx context.Context, lead contractx.Lead) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, lead)
	return nil
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{}, nil)
	out := g.Execute(context.Background(), "teleport_technician", nil)
	if out.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if !strings.Contains(out.Error, "teleport_technician") {
		t.Fatalf("expected explanatory error, got %q", out.Error)
	}
}

func TestCaptureLeadDefaults(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{}
	g := NewGateway(ledger, nil)

	out := g.Execute(context.Background(), ToolCaptureLead, map[string]any{
		"name":             "Dana",
		"service_interest": "HVAC",
		"message":          "AC is down",
	})
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.Ref != "LEAD-1" {
		t.Fatalf("unexpected ref: %s", out.Ref)
	}

	if len(ledger.leads) != 1 {
		t.Fatalf("expected 1 stored lead, got %d", len(ledger.leads))
	}
	stored := ledger.leads[0]
	if stored.Urgency != contractx.UrgencyNormal {
		t.Fatalf("expected default urgency normal, got %s", stored.Urgency)
	}
	if stored.Status != contractx.LeadStatusNew {
		t.Fatalf("expected status new, got %s", stored.Status)
	}
	if stored.Timestamp.IsZero() {
		t.Fatal("expected non-zero timestamp")
	}
}

func TestCaptureLeadMissingRequiredFields(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{}, nil)
	out := g.Execute(context.Background(), ToolCaptureLead, map[string]any{"name": "Dana"})
	if out.Success {
		t.Fatal("expected failure for missing required fields")
	}
	if !strings.Contains(out.Error, "required") {
		t.Fatalf("expected explanatory error, got %q", out.Error)
	}
}

func TestCaptureLeadInvalidUrgency(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{}, nil)
	out := g.Execute(context.Background(), ToolCaptureLead, map[string]any{
		"name":             "Dana",
		"service_interest": "HVAC",
		"message":          "AC is down",
		"urgency":          "immediately",
	})
	if out.Success {
		t.Fatal("expected failure for invalid urgency")
	}
}

func TestCaptureLeadPersistenceFailureIsToolResult(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{appendErr: errors.New("disk full")}, nil)
	out := g.Execute(context.Background(), ToolCaptureLead, map[string]any{
		"name":             "Dana",
		"service_interest": "HVAC",
		"message":          "AC is down",
	})
	if out.Success {
		t.Fatal("expected failed outcome on persistence error")
	}
	if !strings.Contains(out.Error, "disk full") {
		t.Fatalf("expected wrapped persistence error, got %q", out.Error)
	}
}

func TestCaptureLeadNotifiesBestEffort(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	g := NewGateway(&fakeLedger{}, notifier)
	input := map[string]any{
		"name":             "Dana",
		"service_interest": "Plumbing",
		"message":          "leaky pipe",
	}

	out := g.Execute(context.Background(), ToolCaptureLead, input)
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if len(notifier.published) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.published))
	}

	// A failing notifier must not fail the capture.
	g = NewGateway(&fakeLedger{}, &fakeNotifier{err: errors.New("webhook down")})
	out = g.Execute(context.Background(), ToolCaptureLead, input)
	if !out.Success {
		t.Fatalf("expected success despite notifier failure, got %q", out.Error)
	}
}

func TestScheduleServiceStub(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{}, nil)
	out := g.Execute(context.Background(), ToolScheduleService, map[string]any{
		"customer_name": "Dana",
		"service_type":  "HVAC Repair",
		"description":   "no heat",
	})
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if !strings.HasPrefix(out.Ref, "APT-") {
		t.Fatalf("expected APT- correlation token, got %s", out.Ref)
	}
}

func TestRequestQuoteStub(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeLedger{}, nil)
	out := g.Execute(context.Background(), ToolRequestQuote, map[string]any{
		"customer_name":       "Dana",
		"service_type":        "Controls",
		"project_description": "BAS upgrade",
	})
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if !strings.HasPrefix(out.Ref, "QUOTE-") {
		t.Fatalf("expected QUOTE- correlation token, got %s", out.Ref)
	}
}
