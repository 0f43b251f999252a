package tool

import (
	contractx "github.com/vitalmech/assistant/agent/contract"
	statex "github.com/vitalmech/assistant/agent/state"
)

const (
	ToolCaptureLead     = "capture_lead"
	ToolScheduleService = "schedule_service"
	ToolRequestQuote    = "request_quote"
)

// Definitions derives the tool set from the flags, fresh on every call. The
// lead-capture tool is a standing capability; the others ride their flags.
// There is deliberately no cached set to invalidate.
func Definitions(flags statex.Flags) []contractx.ToolDefinition {
	defs := []contractx.ToolDefinition{
		{
			Name:        ToolCaptureLead,
			Description: "Capture customer contact information when they express interest in service. Use this when a customer wants to be contacted, schedule service, or get a quote.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":             map[string]any{"type": "string", "description": "Customer's name"},
					"email":            map[string]any{"type": "string", "description": "Customer's email address"},
					"phone":            map[string]any{"type": "string", "description": "Customer's phone number"},
					"service_interest": map[string]any{"type": "string", "description": "What service they're interested in (HVAC, plumbing, etc.)"},
					"message":          map[string]any{"type": "string", "description": "Additional details about their needs"},
					"urgency": map[string]any{
						"type":        "string",
						"enum":        []string{"emergency", "urgent", "normal", "flexible"},
						"description": "How urgent is their need",
					},
				},
				"required": []string{"name", "service_interest", "message"},
			},
		},
	}

	if flags.Enabled(statex.FlagBooking) {
		defs = append(defs, contractx.ToolDefinition{
			Name:        ToolScheduleService,
			Description: "Schedule a service appointment for the customer",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"customer_name":  map[string]any{"type": "string"},
					"customer_email": map[string]any{"type": "string"},
					"customer_phone": map[string]any{"type": "string"},
					"service_type": map[string]any{
						"type": "string",
						"enum": []string{"HVAC Repair", "HVAC Maintenance", "Plumbing", "Refrigeration", "Controls", "Emergency Service"},
					},
					"preferred_date": map[string]any{"type": "string", "description": "Preferred date in YYYY-MM-DD format"},
					"preferred_time": map[string]any{"type": "string", "description": "Preferred time (morning, afternoon, evening)"},
					"description":    map[string]any{"type": "string"},
				},
				"required": []string{"customer_name", "service_type", "description"},
			},
		})
	}

	if flags.Enabled(statex.FlagQuotes) {
		defs = append(defs, contractx.ToolDefinition{
			Name:        ToolRequestQuote,
			Description: "Generate a quote request for the customer",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"customer_name":  map[string]any{"type": "string"},
					"customer_email": map[string]any{"type": "string"},
					"customer_phone": map[string]any{"type": "string"},
					"service_type":   map[string]any{"type": "string"},
					"building_type": map[string]any{
						"type": "string",
						"enum": []string{"office", "retail", "healthcare", "education", "industrial", "other"},
					},
					"building_size":       map[string]any{"type": "string"},
					"project_description": map[string]any{"type": "string"},
				},
				"required": []string{"customer_name", "service_type", "project_description"},
			},
		})
	}

	return defs
}
