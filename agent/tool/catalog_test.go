package tool

import (
	"testing"

	statex "github.com/vitalmech/assistant/agent/state"
)

func toolNames(flags statex.Flags) []string {
	defs := Definitions(flags)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

func TestDefinitionsDefaultFlags(t *testing.T) {
	t.Parallel()

	names := toolNames(statex.Flags{})
	if len(names) != 1 || names[0] != ToolCaptureLead {
		t.Fatalf("expected only capture_lead, got %v", names)
	}
}

func TestDefinitionsBookingToggle(t *testing.T) {
	t.Parallel()

	names := toolNames(statex.Flags{Booking: true})
	if len(names) != 2 || names[1] != ToolScheduleService {
		t.Fatalf("expected booking tool, got %v", names)
	}

	names = toolNames(statex.Flags{})
	for _, n := range names {
		if n == ToolScheduleService {
			t.Fatal("booking tool must disappear when flag is off")
		}
	}
}

func TestDefinitionsAllFlags(t *testing.T) {
	t.Parallel()

	names := toolNames(statex.Flags{Booking: true, Quotes: true})
	want := []string{ToolCaptureLead, ToolScheduleService, ToolRequestQuote}
	if len(names) != len(want) {
		t.Fatalf("expected %d tools, got %v", len(want), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("expected %s at position %d, got %s", n, i, names[i])
		}
	}
}

func TestCaptureLeadSchemaRequiredFields(t *testing.T) {
	t.Parallel()

	defs := Definitions(statex.Flags{})
	schema := defs[0].InputSchema
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("missing required list: %v", schema["required"])
	}
	want := map[string]bool{"name": true, "service_interest": true, "message": true}
	if len(required) != len(want) {
		t.Fatalf("unexpected required fields: %v", required)
	}
	for _, f := range required {
		if !want[f] {
			t.Fatalf("unexpected required field %s", f)
		}
	}
}
