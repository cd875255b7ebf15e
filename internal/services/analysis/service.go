// Package analysis drives one end-to-end analysis run: handshake with the
// gateway, build the three agents, run the conversation, extract the verdict,
// notify, and tear the tool client down.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/adapters/notify"
	"tribunal/internal/agents"
	"tribunal/internal/api/jsonrpc"
	"tribunal/internal/domain/analysis"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// ToolClient is the slice of the gateway client the service depends on.
type ToolClient interface {
	Initialize(ctx context.Context) (*jsonrpc.InitializeResult, error)
	ListTools(ctx context.Context) ([]jsonrpc.ToolDescriptor, error)
	CallTool(ctx context.Context, name string, arguments map[string]interface{}) string
	Disconnect() error
}

// Options carries per-run settings.
type Options struct {
	Model         string
	Temperature   float64
	MaxTurns      int
	MaxToolRounds int

	// OnConnect fires once the handshake completes, with the server
	// identity and the advertised tools.
	OnConnect func(info jsonrpc.ServerInfo, tools []jsonrpc.ToolDescriptor)

	// OnTurn streams each utterance to the caller as it lands.
	OnTurn func(index int, turn agents.Turn)
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID  string
	Ticker string

	ServerName    string
	ServerVersion string
	Tools         []jsonrpc.ToolDescriptor

	Result       *agents.RunResult
	Verdict      analysis.Verdict
	VerdictFound bool
}

// Service owns the tool client lifecycle for the duration of a run. The
// client is disconnected before Run returns, on success and on error alike.
type Service struct {
	client   ToolClient
	provider ai.ChatProvider
	notifier notify.Notifier
	log      *logger.Logger
}

// NewService builds an analysis service. A nil notifier disables delivery.
func NewService(client ToolClient, provider ai.ChatProvider, notifier notify.Notifier) (*Service, error) {
	if client == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "analysis service requires a tool client")
	}
	if provider == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "analysis service requires a chat provider")
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}

	return &Service{
		client:   client,
		provider: provider,
		notifier: notifier,
		log:      logger.Component("analysis_service"),
	}, nil
}

// Run performs the handshake, drives the conversation for ticker, and
// returns the transcript with the extracted verdict.
func (s *Service) Run(ctx context.Context, ticker string, opts Options) (*Report, error) {
	if ticker == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker is required")
	}

	runID := uuid.New().String()
	start := time.Now()

	s.log.Infof("Starting analysis run: run=%s ticker=%s model=%s max_turns=%d",
		runID, ticker, opts.Model, opts.MaxTurns)

	defer func() {
		if err := s.client.Disconnect(); err != nil {
			s.log.Warnf("Tool client disconnect failed: %v", err)
		}
	}()

	report := &Report{RunID: runID, Ticker: ticker}

	init, err := s.client.Initialize(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "gateway handshake failed")
	}
	report.ServerName = init.ServerInfo.Name
	report.ServerVersion = init.ServerInfo.Version

	descriptors, err := s.client.ListTools(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "tool discovery failed")
	}
	report.Tools = descriptors

	s.log.Infof("✓ Connected to %s %s: %d tools available",
		report.ServerName, report.ServerVersion, len(descriptors))

	if opts.OnConnect != nil {
		opts.OnConnect(init.ServerInfo, descriptors)
	}

	participants, err := s.buildParticipants(descriptors, opts)
	if err != nil {
		return nil, err
	}

	conversation := agents.NewConversation(participants,
		agents.TextMentionCondition{Phrase: agents.TerminationPhrase}, opts.MaxTurns)
	conversation.OnTurn = opts.OnTurn

	result, err := conversation.Run(ctx, agents.AnalysisTask(ticker))
	if err != nil {
		return nil, errors.Wrapf(err, "analysis run %s failed", runID)
	}
	report.Result = result

	report.Verdict, report.VerdictFound = analysis.ExtractVerdict(result.FinalUtterance())
	if !report.VerdictFound {
		s.log.Warnf("Run %s ended without a verdict: reason=%s", runID, result.Reason)
	}

	if err := s.notifier.SendMessage(ctx, notify.VerdictMessage(ticker, report.Verdict, report.VerdictFound)); err != nil {
		s.log.Warnf("Verdict notification failed: %v", err)
	}

	s.log.Infof("✓ Analysis complete: run=%s ticker=%s verdict=%s reason=%s turns=%d duration=%v",
		runID, ticker, report.Verdict, result.Reason, result.Turns, time.Since(start))

	return report, nil
}

// buildParticipants wires the three roles to the provider and tool client,
// restricting each role to its slice of the advertised tool set.
func (s *Service) buildParticipants(descriptors []jsonrpc.ToolDescriptor, opts Options) ([]agents.Participant, error) {
	available := toToolDefinitions(descriptors)
	agentOpts := agents.Options{
		Model:         opts.Model,
		Temperature:   opts.Temperature,
		MaxToolRounds: opts.MaxToolRounds,
	}

	roles := agents.AnalysisRoles(available)
	participants := make([]agents.Participant, 0, len(roles))
	for _, role := range roles {
		if len(role.Tools) == 0 && role.Name != agents.OrchestratorName {
			s.log.Warnf("Server did not advertise a tool for %s; the role runs without one", role.Name)
		}

		agent, err := agents.NewAgent(role, s.provider, s.client, agentOpts)
		if err != nil {
			return nil, errors.Wrapf(err, "build agent %s", role.Name)
		}
		participants = append(participants, agent)
	}

	return participants, nil
}

func toToolDefinitions(descriptors []jsonrpc.ToolDescriptor) []ai.ToolDefinition {
	defs := make([]ai.ToolDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		defs = append(defs, ai.ToolDefinition{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema,
			},
		})
	}
	return defs
}
