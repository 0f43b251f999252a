package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/vitalmech/assistant/agent/contract"
)

// Gateway maps tool invocations to handlers. Every failure mode comes back
// as a ToolOutcome with Success=false so the orchestrator can feed it into
// the transcript and let the model recover conversationally.
type Gateway struct {
	ledger   contractx.Ledger
	notifier contractx.Notifier
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(ledger contractx.Ledger, notifier contractx.Notifier) *Gateway {
	return &Gateway{ledger: ledger, notifier: notifier}
}

func (g *Gateway) Execute(ctx context.Context, name string, input map[string]any) contractx.ToolOutcome {
	switch name {
	case ToolCaptureLead:
		return g.captureLead(ctx, input)
	case ToolScheduleService:
		return scheduleService(input)
	case ToolRequestQuote:
		return requestQuote(input)
	}
	return contractx.ToolOutcome{
		Success: false,
		Error:   fmt.Sprintf("unknown tool: %s", name),
	}
}

func (g *Gateway) captureLead(ctx context.Context, input map[string]any) contractx.ToolOutcome {
	lead, err := leadFromInput(input)
	if err != nil {
		return contractx.ToolOutcome{Success: false, Error: err.Error()}
	}

	stored, err := g.ledger.Append(ctx, lead)
	if err != nil {
		// Persistence failures become a failed tool result in-dialogue so
		// the assistant can apologize and redirect instead of dropping the
		// whole turn.
		log.Error().Err(err).Msg("lead capture failed")
		return contractx.ToolOutcome{Success: false, Error: err.Error()}
	}

	if g.notifier != nil {
		if err := g.notifier.PublishLead(ctx, stored); err != nil {
			log.Warn().Err(err).Int64("lead_id", stored.ID).Msg("lead notification failed")
		}
	}

	return contractx.ToolOutcome{
		Success: true,
		Message: "Lead captured successfully. We'll contact you soon!",
		Ref:     fmt.Sprintf("LEAD-%d", stored.ID),
	}
}

func leadFromInput(input map[string]any) (contractx.Lead, error) {
	name := stringField(input, "name")
	service := stringField(input, "service_interest")
	message := stringField(input, "message")
	if name == "" || service == "" || message == "" {
		return contractx.Lead{}, fmt.Errorf("%w: name, service_interest, and message are required", contractx.ErrValidation)
	}

	urgency, ok := contractx.ParseUrgency(stringField(input, "urgency"))
	if !ok {
		return contractx.Lead{}, fmt.Errorf("%w: urgency must be one of emergency, urgent, normal, flexible", contractx.ErrValidation)
	}

	return contractx.Lead{
		Name:            name,
		Email:           stringField(input, "email"),
		Phone:           stringField(input, "phone"),
		ServiceInterest: service,
		Message:         message,
		Urgency:         urgency,
	}, nil
}

// scheduleService is a synchronous stub: no booking system is wired yet, so
// it acknowledges with a locally generated correlation token.
func scheduleService(input map[string]any) contractx.ToolOutcome {
	if stringField(input, "customer_name") == "" || stringField(input, "service_type") == "" {
		return contractx.ToolOutcome{Success: false, Error: "customer_name and service_type are required"}
	}
	return contractx.ToolOutcome{
		Success: true,
		Message: "Service request received. We'll confirm your appointment within 24 hours.",
		Ref:     "APT-" + correlationToken(),
	}
}

// requestQuote is a synchronous stub, same shape as scheduleService.
func requestQuote(input map[string]any) contractx.ToolOutcome {
	if stringField(input, "customer_name") == "" || stringField(input, "service_type") == "" {
		return contractx.ToolOutcome{Success: false, Error: "customer_name and service_type are required"}
	}
	return contractx.ToolOutcome{
		Success: true,
		Message: "Quote request received. We'll provide a detailed quote within 48 hours.",
		Ref:     "QUOTE-" + correlationToken(),
	}
}

func correlationToken() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func stringField(input map[string]any, key string) string {
	raw, ok := input[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
