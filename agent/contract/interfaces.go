package contract

import "context"

// Completer is the external completion service, treated as an opaque black
// box: full transcript in, plain text or tool calls out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// ToolGateway dispatches one tool invocation to its handler. Unknown tool
// names come back as a failed ToolOutcome, never as a Go error, so the
// orchestrator can feed the failure back into the dialogue.
type ToolGateway interface {
	Execute(ctx context.Context, name string, input map[string]any) ToolOutcome
}

// Ledger is the append-only persistent store of captured leads.
type Ledger interface {
	Append(ctx context.Context, lead Lead) (Lead, error)
	List(ctx context.Context) ([]Lead, error)
}

// Notifier publishes a captured lead to an external channel. Delivery is
// best-effort; a failed publish must not fail the capture.
type Notifier interface {
	PublishLead(ctx context.Context, lead Lead) error
}
