package contract

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a session transcript. Content is a sequence of
// blocks (text, tool call, tool result). The transcript is append-only and
// replayed verbatim to the completion service every turn.
type Message struct {
	Role   Role    `json:"role"`
	Blocks []Block `json:"blocks"`
}

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolCall   BlockType = "tool_call"
	BlockToolResult BlockType = "tool_result"
)

type Block struct {
	Type       BlockType       `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCall   *ToolCall       `json:"tool_call,omitempty"`
	CallID     string          `json:"call_id,omitempty"`
	ToolOutput json.RawMessage `json:"tool_output,omitempty"`
}

// ToolCall is the model's request to invoke a named tool.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

func UserText(text string) Message {
	return Message{Role: RoleUser, Blocks: []Block{{Type: BlockText, Text: text}}}
}

func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Blocks: []Block{{Type: BlockText, Text: text}}}
}

func AssistantToolCall(call ToolCall) Message {
	return Message{Role: RoleAssistant, Blocks: []Block{{Type: BlockToolCall, ToolCall: &call}}}
}

func ToolResultMessage(callID string, output json.RawMessage) Message {
	return Message{Role: RoleTool, Blocks: []Block{{Type: BlockToolResult, CallID: callID, ToolOutput: output}}}
}

// Text returns the concatenated text blocks of the message.
func (m Message) Text() string {
	out := ""
	for _, b := range m.Blocks {
		if b.Type == BlockText {
			out += b.Text
		}
	}
	return out
}

// ToolDefinition describes one callable tool as presented to the completion
// service. InputSchema is JSON-Schema shaped: properties, required, enums.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolOutcome is the structured result of executing a tool. It is both fed
// back into the transcript and returned to the caller inside an ActionRecord.
type ToolOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

func (o ToolOutcome) JSON() json.RawMessage {
	raw, err := json.Marshal(o)
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"unencodable tool outcome"}`)
	}
	return raw
}

// ActionRecord pairs one tool invocation with its result. Records live for a
// single turn only; they are returned to the caller, never persisted.
type ActionRecord struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input"`
	Result ToolOutcome    `json:"result"`
}

// TurnResult is what one completed turn hands back to the caller.
type TurnResult struct {
	Reply   string         `json:"response"`
	Actions []ActionRecord `json:"actions"`
}

// CompletionRequest carries the full transcript plus the tool set shown to
// the completion service for one submission.
type CompletionRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// CompletionResponse is the service's answer: plain text, or one or more
// tool calls in the order the model produced them.
type CompletionResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// Lead is a captured prospective-customer record. Immutable after append;
// ID is assigned atomically by the ledger at append time.
type Lead struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ServiceInterest string    `json:"service_interest"`
	Message         string    `json:"message"`
	Urgency         Urgency   `json:"urgency"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
}

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNormal    Urgency = "normal"
	UrgencyFlexible  Urgency = "flexible"
)

const LeadStatusNew = "new"

// ParseUrgency maps a raw urgency value onto the closed set; an empty value
// takes the default. Unknown values are rejected, not silently coerced.
func ParseUrgency(raw string) (Urgency, bool) {
	switch Urgency(raw) {
	case UrgencyEmergency, UrgencyUrgent, UrgencyNormal, UrgencyFlexible:
		return Urgency(raw), true
	case "":
		return UrgencyNormal, true
	}
	return "", false
}
