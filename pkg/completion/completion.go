// Package completion adapts an OpenAI-compatible chat-completions endpoint
// to the transcript model used by the dialogue core.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	contractx "github.com/vitalmech/assistant/agent/contract"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxTokens   int64         `envconfig:"MAX_TOKENS" split_words:"true" default:"2048"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL     string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName    string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client is the concrete Completer backed by the OpenAI SDK.
type Client struct {
	client *openaisdk.Client
	model  string

	maxTokens   int64
	temperature float64
}

var _ contractx.Completer = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("completion api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("completion model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	// OpenRouter attribution headers, harmless elsewhere.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	client := openaisdk.NewClient(opts...)
	return &Client{
		client:      &client,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete submits the transcript plus tool set and returns either plain
// text or the tool calls the model requested, in order.
func (c *Client) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	msgs, err := wireMessages(req)
	if err != nil {
		return contractx.CompletionResponse{}, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    msgs,
		MaxTokens:   openaisdk.Int(c.maxTokens),
		Temperature: openaisdk.Float(c.temperature),
	}
	if len(req.Tools) > 0 {
		params.Tools = wireTools(req.Tools)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.CompletionResponse{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return contractx.CompletionResponse{}, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	out := contractx.CompletionResponse{Text: msg.Content}

	for _, call := range msg.ToolCalls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return contractx.CompletionResponse{}, errors.New("tool call with empty name")
		}

		input := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				return contractx.CompletionResponse{}, fmt.Errorf("invalid tool arguments for %s: %w", name, err)
			}
		}

		id := call.ID
		if id == "" {
			id = uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, contractx.ToolCall{ID: id, Name: name, Input: input})
	}

	return out, nil
}

func wireMessages(req contractx.CompletionRequest) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		msgs = append(msgs, openaisdk.SystemMessage(req.System))
	}

	for _, m := range req.Messages {
		for _, b := range m.Blocks {
			switch b.Type {
			case contractx.BlockText:
				switch m.Role {
				case contractx.RoleUser:
					msgs = append(msgs, openaisdk.UserMessage(b.Text))
				case contractx.RoleAssistant:
					msgs = append(msgs, openaisdk.AssistantMessage(b.Text))
				default:
					return nil, fmt.Errorf("text block on unsupported role %q", m.Role)
				}
			case contractx.BlockToolCall:
				if b.ToolCall == nil {
					return nil, errors.New("tool call block without call")
				}
				args, err := json.Marshal(b.ToolCall.Input)
				if err != nil {
					return nil, fmt.Errorf("encode tool arguments: %w", err)
				}
				asst := openaisdk.ChatCompletionAssistantMessageParam{
					ToolCalls: []openaisdk.ChatCompletionMessageToolCallParam{{
						ID: b.ToolCall.ID,
						Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
							Name:      b.ToolCall.Name,
							Arguments: string(args),
						},
					}},
				}
				msgs = append(msgs, openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &asst})
			case contractx.BlockToolResult:
				msgs = append(msgs, openaisdk.ToolMessage(string(b.ToolOutput), b.CallID))
			default:
				return nil, fmt.Errorf("unsupported block type %q", b.Type)
			}
		}
	}

	return msgs, nil
}

func wireTools(defs []contractx.ToolDefinition) []openaisdk.ChatCompletionToolParam {
	tools := make([]openaisdk.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, openaisdk.ChatCompletionToolParam{
			Function: openaisdk.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openaisdk.String(d.Description),
				Parameters:  openaisdk.FunctionParameters(d.InputSchema),
			},
		})
	}
	return tools
}
