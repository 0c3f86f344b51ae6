package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. The same
// transport serves hosted APIs and self-hosted gateways (vLLM, LiteLLM);
// only baseURL and apiKey differ.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey, model string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []toolSchema  `json:"tools,omitempty"`
}

type toolSchema struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Complete performs one chat-completion exchange. Tool calls come back as
// structured requests; malformed argument blobs degrade to empty argument
// maps so one bad call cannot abort the turn.
func (c *Client) Complete(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: buildMessages(req),
		Tools:    buildToolSchemas(req.Tools),
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/chat/completions", payload, &response, "chat")
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "chat", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("chat completion", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}
	message := response.Choices[0].Message

	out := &domain.ModelResponse{Content: message.Content}
	for _, tc := range message.ToolCalls {
		args := map[string]any{}
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				args = map[string]any{}
			}
		}
		out.ToolCalls = append(out.ToolCalls, domain.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

func buildMessages(req domain.ModelRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		content := msg.Content
		if role == "tool" {
			// Tool results are replayed as user turns so gateways that
			// demand tool_call_id bookkeeping still accept the thread.
			role = "user"
			content = "Tool result " + content
		}
		messages = append(messages, chatMessage{Role: role, Content: content})
	}
	return messages
}

func buildToolSchemas(tools []domain.ToolDescriptor) []toolSchema {
	if len(tools) == 0 {
		return nil
	}
	out := make([]toolSchema, 0, len(tools))
	for _, tool := range tools {
		schema := toolSchema{Type: "function"}
		schema.Function.Name = tool.Name
		schema.Function.Description = tool.Description
		schema.Function.Parameters = tool.Parameters
		out = append(out, schema)
	}
	return out
}
