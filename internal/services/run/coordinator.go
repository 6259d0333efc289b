package run

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/openai"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/services/conversation"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/internal/services/tools"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"go.uber.org/zap"
)

// maxDriveIterations bounds the poll loop of one turn.
const maxDriveIterations = 30

// AssistantAPI is the slice of the Assistants API the coordinator drives.
type AssistantAPI interface {
	CreateThread(ctx context.Context) (*openai.Thread, error)
	CreateMessage(ctx context.Context, threadID, role, content string) (*openai.Message, error)
	LatestAssistantText(ctx context.Context, threadID string) (string, error)
	CreateRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*openai.Run, error)
	ListRuns(ctx context.Context, threadID string, limit int) ([]openai.Run, error)
	CancelRun(ctx context.Context, threadID, runID string) error
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) (*openai.Run, error)
}

// ClientFactory builds an API client for one tenant's key.
type ClientFactory func(apiKey string) AssistantAPI

// Coordinator serializes assistant turns per client and drives each run to
// completion, resolving tool calls along the way.
type Coordinator struct {
	tools         *tools.Manager
	conversations *conversation.Store
	newClient     ClientFactory

	pollInterval  time.Duration
	cancelBackoff time.Duration

	mu    sync.Mutex
	locks map[string]*turnLock
}

// turnLock serializes turns of one (tenant, client) pair. Entries are
// reference counted and evicted once the last holder releases, so the lock
// map does not grow with every client the process ever saw.
type turnLock struct {
	mu   sync.Mutex
	refs int
}

// NewCoordinator creates a run coordinator.
func NewCoordinator(toolManager *tools.Manager, conversations *conversation.Store, newClient ClientFactory) *Coordinator {
	return &Coordinator{
		tools:         toolManager,
		conversations: conversations,
		newClient:     newClient,
		pollInterval:  time.Second,
		cancelBackoff: 500 * time.Millisecond,
		locks:         make(map[string]*turnLock),
	}
}

// acquireTurnLock blocks until the (tenant, client) pair's turn lock is held.
func (c *Coordinator) acquireTurnLock(key string) *turnLock {
	c.mu.Lock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &turnLock{}
		c.locks[key] = lock
	}
	lock.refs++
	c.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (c *Coordinator) releaseTurnLock(key string, lock *turnLock) {
	lock.mu.Unlock()

	c.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(c.locks, key)
	}
	c.mu.Unlock()
}

// HandleTurn processes one inbound message: it ensures a thread, appends the
// user message, runs the assistant, resolves tool calls and returns the reply
// text. Turns of the same client are strictly serialized.
func (c *Coordinator) HandleTurn(ctx context.Context, t *tenant.Tenant, client *domain.Client, text string) (string, *tools.TurnState, error) {
	creds, err := t.Credentials()
	if err != nil {
		return "", nil, err
	}
	if creds.OpenAIKey == "" || creds.AssistantID == "" {
		return "", nil, fmt.Errorf("run: tenant %s has no assistant configured", t.Organization.ID)
	}
	api := c.newClient(creds.OpenAIKey)

	lockKey := t.Bot.ID + "|" + client.ID
	lock := c.acquireTurnLock(lockKey)
	defer c.releaseTurnLock(lockKey, lock)

	threadID := client.ThreadID
	if threadID == "" {
		thread, err := api.CreateThread(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("run: create thread: %w", err)
		}
		if err := c.conversations.AttachThread(ctx, client, thread.ID); err != nil {
			return "", nil, err
		}
		threadID = thread.ID
	} else {
		c.cancelLiveRuns(ctx, api, threadID)
	}

	if _, err := api.CreateMessage(ctx, threadID, "user", text); err != nil {
		return "", nil, fmt.Errorf("run: append message: %w", err)
	}

	activeRun, err := api.CreateRun(ctx, threadID, creds.AssistantID)
	if err != nil {
		return "", nil, fmt.Errorf("run: start run: %w", err)
	}

	turn := &tools.TurnState{}
	tc := &tools.Context{Tenant: t, Client: client, Turn: turn}

	for i := 0; i < maxDriveIterations; i++ {
		switch activeRun.Status {
		case openai.RunStatusCompleted:
			reply, err := api.LatestAssistantText(ctx, threadID)
			if err != nil {
				return "", turn, err
			}
			return reply, turn, nil

		case openai.RunStatusRequiresAction:
			activeRun, err = c.resolveToolCalls(ctx, api, threadID, activeRun, tc)
			if err != nil {
				return "", turn, err
			}

		case openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCancelling:
			select {
			case <-ctx.Done():
				return "", turn, ctx.Err()
			case <-time.After(c.pollInterval):
			}
			activeRun, err = api.GetRun(ctx, threadID, activeRun.ID)
			if err != nil {
				return "", turn, fmt.Errorf("run: poll run: %w", err)
			}

		default:
			// failed, cancelled, expired or something the API added since.
			msg := activeRun.Status
			if activeRun.LastError != nil {
				msg = fmt.Sprintf("%s (%s)", activeRun.Status, activeRun.LastError.Message)
			}
			return "", turn, fmt.Errorf("run: run %s ended %s", activeRun.ID, msg)
		}
	}
	return "", turn, fmt.Errorf("run: run %s did not settle after %d polls", activeRun.ID, maxDriveIterations)
}

// cancelLiveRuns cancels any run still occupying the thread, so the new turn's
// run is not rejected. Best effort; cancel failures are logged and the turn
// proceeds.
func (c *Coordinator) cancelLiveRuns(ctx context.Context, api AssistantAPI, threadID string) {
	runs, err := api.ListRuns(ctx, threadID, 5)
	if err != nil {
		logger.Base().Warn("could not list runs for pre-flight cancel",
			zap.String("thread_id", threadID), zap.Error(err))
		return
	}

	cancelled := false
	for _, r := range runs {
		if !r.IsLive() {
			continue
		}
		if err := api.CancelRun(ctx, threadID, r.ID); err != nil {
			logger.Base().Warn("failed to cancel stale run",
				zap.String("thread_id", threadID),
				zap.String("run_id", r.ID),
				zap.Error(err))
			continue
		}
		cancelled = true
	}
	if cancelled {
		// Give the API a moment to actually release the thread.
		select {
		case <-ctx.Done():
		case <-time.After(c.cancelBackoff):
		}
	}
}

// resolveToolCalls executes every tool call the run is blocked on and submits
// the outputs in one batch.
func (c *Coordinator) resolveToolCalls(ctx context.Context, api AssistantAPI, threadID string, r *openai.Run, tc *tools.Context) (*openai.Run, error) {
	if r.RequiredAction == nil {
		return nil, fmt.Errorf("run: run %s requires action but carries none", r.ID)
	}

	calls := r.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]openai.ToolOutput, 0, len(calls))
	for _, call := range calls {
		result := c.tools.Execute(ctx, call.Function.Name, call.Function.Arguments, tc)
		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     result,
		})
	}

	next, err := api.SubmitToolOutputs(ctx, threadID, r.ID, outputs)
	if err != nil {
		return nil, fmt.Errorf("run: submit tool outputs: %w", err)
	}
	return next, nil
}
