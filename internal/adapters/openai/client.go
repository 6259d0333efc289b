package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"go.uber.org/zap"
)

// Client talks to the OpenAI Assistants API (v2) with a per-tenant key.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates an Assistants API client.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Thread is a persistent conversation handle.
type Thread struct {
	ID string `json:"id"`
}

// TextContent is the text part of a message content block.
type TextContent struct {
	Value string `json:"value"`
}

// ContentBlock is one part of a message.
type ContentBlock struct {
	Type string       `json:"type"`
	Text *TextContent `json:"text,omitempty"`
}

// Message is one turn on a thread.
type Message struct {
	ID      string         `json:"id"`
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Text returns the first text part of the message, if any.
func (m *Message) Text() (string, bool) {
	for _, block := range m.Content {
		if block.Type == "text" && block.Text != nil {
			return block.Text.Value, true
		}
	}
	return "", false
}

// Run statuses as reported by the API.
const (
	RunStatusQueued         = "queued"
	RunStatusInProgress     = "in_progress"
	RunStatusRequiresAction = "requires_action"
	RunStatusCompleted      = "completed"
	RunStatusFailed         = "failed"
	RunStatusCancelling     = "cancelling"
	RunStatusCancelled      = "cancelled"
	RunStatusExpired        = "expired"
)

// FunctionCall is the function payload of a tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is one tool invocation requested by the assistant.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// RequiredAction carries the tool calls a run is blocked on.
type RequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

// Run is one assistant turn against a thread.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error,omitempty"`
}

// IsLive reports whether the run still occupies its thread.
func (r *Run) IsLive() bool {
	switch r.Status {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction:
		return true
	}
	return false
}

// ToolOutput is one resolved tool-call result.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Assistant is a configured assistant.
type Assistant struct {
	ID string `json:"id"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// CreateThread creates a new empty thread.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/v1/threads", map[string]interface{}{}, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string) (*Message, error) {
	var msg Message
	body := map[string]interface{}{"role": role, "content": content}
	path := fmt.Sprintf("/v1/threads/%s/messages", threadID)
	if err := c.do(ctx, http.MethodPost, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the newest messages of a thread, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	var env listEnvelope[Message]
	path := fmt.Sprintf("/v1/threads/%s/messages?order=desc&limit=%d", threadID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// LatestAssistantText returns the newest assistant message carrying a text
// part.
func (c *Client) LatestAssistantText(ctx context.Context, threadID string) (string, error) {
	messages, err := c.ListMessages(ctx, threadID, 20)
	if err != nil {
		return "", err
	}
	for _, msg := range messages {
		if msg.Role != "assistant" {
			continue
		}
		if text, ok := msg.Text(); ok {
			return text, nil
		}
	}
	return "", fmt.Errorf("no assistant text message on thread %s", threadID)
}

// CreateRun starts a run of an assistant against a thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	var run Run
	body := map[string]interface{}{"assistant_id": assistantID}
	path := fmt.Sprintf("/v1/threads/%s/runs", threadID)
	if err := c.do(ctx, http.MethodPost, path, body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun retrieves the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	path := fmt.Sprintf("/v1/threads/%s/runs/%s", threadID, runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs of a thread, newest first.
func (c *Client) ListRuns(ctx context.Context, threadID string, limit int) ([]Run, error) {
	var env listEnvelope[Run]
	path := fmt.Sprintf("/v1/threads/%s/runs?order=desc&limit=%d", threadID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CancelRun requests cancellation of a run. Best effort; the run may still
// finish.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) error {
	path := fmt.Sprintf("/v1/threads/%s/runs/%s/cancel", threadID, runID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{}, nil)
}

// SubmitToolOutputs resolves the tool calls a run is blocked on, in one batch.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	var run Run
	body := map[string]interface{}{"tool_outputs": outputs}
	path := fmt.Sprintf("/v1/threads/%s/runs/%s/submit_tool_outputs", threadID, runID)
	if err := c.do(ctx, http.MethodPost, path, body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateAssistant creates an assistant with the given instructions and tool
// schemas. Model and temperature are fixed for conversational tool use.
func (c *Client) CreateAssistant(ctx context.Context, name, instructions string, tools []interface{}) (*Assistant, error) {
	var assistant Assistant
	body := map[string]interface{}{
		"name":         name,
		"model":        "gpt-4o",
		"temperature":  0.7,
		"instructions": instructions,
		"tools":        tools,
	}
	if err := c.do(ctx, http.MethodPost, "/v1/assistants", body, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// do executes one API call and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Base().Warn("assistants api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(bodyBytes)))
		return fmt.Errorf("assistants api %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
