package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

const defaultMaxToolRounds = 8

// ToolInvoker executes a named tool on behalf of an agent. Implementations
// return diagnostic text instead of an error when the call fails, so the
// model can read the failure and reason past it.
type ToolInvoker interface {
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) string
}

// Role holds a participant's display name and instruction text plus the
// tools it may call.
type Role struct {
	Name         string
	Instructions string
	Tools        []ai.ToolDefinition
}

// Options carries runtime settings shared by all agents in a run.
type Options struct {
	Model       string
	Temperature float64

	// MaxToolRounds bounds completion rounds that may request tools within
	// one turn. Once reached, the next completion is requested without
	// tools, forcing a plain answer.
	MaxToolRounds int
}

// Agent is a conversation participant: a role bound to an LLM provider and
// a tool invoker.
type Agent struct {
	role     Role
	provider ai.ChatProvider
	invoker  ToolInvoker
	opts     Options

	log *logger.Logger
}

// NewAgent builds an agent for the given role. The invoker may be nil only
// when the role declares no tools.
func NewAgent(role Role, provider ai.ChatProvider, invoker ToolInvoker, opts Options) (*Agent, error) {
	if provider == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "agent %s requires a chat provider", role.Name)
	}
	if invoker == nil && len(role.Tools) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "agent %s declares tools but has no invoker", role.Name)
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = defaultMaxToolRounds
	}

	return &Agent{
		role:     role,
		provider: provider,
		invoker:  invoker,
		opts:     opts,
		log:      logger.Component("agent").With("agent", role.Name),
	}, nil
}

// Name returns the agent's display name as it appears in the transcript.
func (a *Agent) Name() string {
	return a.role.Name
}

// Respond produces the agent's next utterance. The provider may answer with
// tool calls; each round is executed through the invoker and fed back until
// the provider answers in plain text or the round cap forces it to.
func (a *Agent) Respond(ctx context.Context, task string, transcript Transcript) (string, ai.Usage, error) {
	messages := a.buildMessages(task, transcript)

	var usage ai.Usage

	for round := 0; ; round++ {
		withTools := len(a.role.Tools) > 0 && round < a.opts.MaxToolRounds

		req := ai.ChatRequest{
			Model:       a.opts.Model,
			Messages:    messages,
			Temperature: a.opts.Temperature,
		}
		if withTools {
			req.Tools = a.role.Tools
		}

		start := time.Now()
		resp, err := a.provider.Chat(ctx, req)
		if err != nil {
			metrics.RecordAgentCall(a.role.Name, a.opts.Model, time.Since(start), 0, 0, err)
			return "", usage, errors.Wrapf(err, "%s completion failed", a.role.Name)
		}
		metrics.RecordAgentCall(a.role.Name, a.opts.Model, time.Since(start),
			int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), nil)
		usage.Add(resp.Usage)

		if len(resp.Choices) == 0 {
			return "", usage, errors.Wrapf(errors.ErrNoCompletion, "%s received no choices", a.role.Name)
		}

		msg := resp.Choices[0].Message
		if !withTools || len(msg.ToolCalls) == 0 {
			return msg.Content, usage, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				Content:    a.invoke(ctx, call),
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}
}

// invoke runs one tool call, enforcing the role's tool restriction. Failures
// come back as text so the model sees them in the next round.
func (a *Agent) invoke(ctx context.Context, call ai.ToolCall) string {
	name := call.Function.Name
	if !a.allowed(name) {
		a.log.Warnf("Blocked tool call outside role: tool=%s", name)
		return errors.Wrapf(errors.ErrToolNotAllowed, "%s cannot call %s", a.role.Name, name).Error()
	}

	arguments := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &arguments); err != nil {
			a.log.Warnf("Failed to decode tool arguments for %s: %v", name, err)
		}
	}

	a.log.Debugf("Tool call: %s(%s)", name, call.Function.Arguments)
	return a.invoker.CallTool(ctx, name, arguments)
}

func (a *Agent) allowed(name string) bool {
	for _, def := range a.role.Tools {
		if def.Function.Name == name {
			return true
		}
	}
	return false
}

// buildMessages renders the task and the running transcript into provider
// messages. The agent's own prior turns replay as assistant messages; other
// speakers' turns arrive as user messages tagged with the speaker name.
func (a *Agent) buildMessages(task string, transcript Transcript) []ai.Message {
	messages := make([]ai.Message, 0, len(transcript)+2)
	messages = append(messages,
		ai.Message{Role: ai.RoleSystem, Content: a.role.Instructions},
		ai.Message{Role: ai.RoleUser, Content: task},
	)

	for _, turn := range transcript {
		if turn.Speaker == a.role.Name {
			messages = append(messages, ai.Message{Role: ai.RoleAssistant, Content: turn.Content})
			continue
		}
		messages = append(messages, ai.Message{
			Role:    ai.RoleUser,
			Content: fmt.Sprintf("%s: %s", turn.Speaker, turn.Content),
		})
	}

	return messages
}
