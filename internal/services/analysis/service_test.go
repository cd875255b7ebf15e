package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/agents"
	"tribunal/internal/api/jsonrpc"
	domain "tribunal/internal/domain/analysis"
	"tribunal/pkg/errors"
)

func TestNewService_Validation(t *testing.T) {
	t.Run("requires tool client", func(t *testing.T) {
		_, err := NewService(nil, &fakeProvider{}, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("requires chat provider", func(t *testing.T) {
		_, err := NewService(&fakeToolClient{}, nil, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestRun_HappyPath(t *testing.T) {
	client := newFakeToolClient()
	provider := &fakeProvider{responses: []*ai.ChatResponse{
		toolCallResponse("call_1", "news_sentiment_tool", `{"ticker_symbol":"AAPL"}`),
		plainResponse("Positive coverage across the board. The company performance is STRONG"),
		toolCallResponse("call_2", "technical_analysis_tool", `{"ticker_symbol":"AAPL"}`),
		plainResponse("Golden cross, RSI 61. The company performance is STRONG"),
		plainResponse("Here is a summary of the inputs from the Sentiment and Technical Analysts: both agree. FINAL VERDICT: STRONG performance"),
	}}
	notifier := &recordingNotifier{}

	svc, err := NewService(client, provider, notifier)
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), "AAPL", Options{Model: "gpt-4o-mini", MaxTurns: 6})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "AAPL", report.Ticker)
	assert.Equal(t, "financial-analysis-server", report.ServerName)
	assert.Equal(t, "1.0.0", report.ServerVersion)
	assert.Len(t, report.Tools, 2)

	require.NotNil(t, report.Result)
	assert.Equal(t, agents.TerminationPhraseMatched, report.Result.Reason)
	assert.Equal(t, 3, report.Result.Turns)

	assert.True(t, report.VerdictFound)
	assert.Equal(t, domain.VerdictStrong, report.Verdict)

	// Both analysts reached their tools through the client.
	require.Len(t, client.toolCalls, 2)
	assert.Equal(t, "news_sentiment_tool", client.toolCalls[0].name)
	assert.Equal(t, "AAPL", client.toolCalls[0].arguments["ticker_symbol"])
	assert.Equal(t, "technical_analysis_tool", client.toolCalls[1].name)

	assert.Equal(t, 1, client.disconnects)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "FINAL VERDICT: STRONG performance")
}

func TestRun_BudgetExhaustedWithoutVerdict(t *testing.T) {
	client := newFakeToolClient()
	provider := &fakeProvider{fallback: "still gathering context"}
	notifier := &recordingNotifier{}

	svc, err := NewService(client, provider, notifier)
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), "TSLA", Options{Model: "gpt-4o-mini", MaxTurns: 2})
	require.NoError(t, err)

	assert.Equal(t, agents.TerminationBudgetExhausted, report.Result.Reason)
	assert.Equal(t, 2, report.Result.Turns)
	assert.False(t, report.VerdictFound)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "without a verdict")
}

func TestRun_DisconnectsOnHandshakeFailure(t *testing.T) {
	client := newFakeToolClient()
	client.initErr = errors.New("connection refused")

	svc, err := NewService(client, &fakeProvider{fallback: "x"}, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), "AAPL", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway handshake failed")

	assert.Equal(t, 1, client.disconnects)
}

func TestRun_DisconnectsOnConversationError(t *testing.T) {
	client := newFakeToolClient()
	provider := &fakeProvider{err: errors.New("provider down")}

	svc, err := NewService(client, provider, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), "AAPL", Options{})
	require.Error(t, err)

	assert.Equal(t, 1, client.disconnects)
}

func TestRun_RequiresTicker(t *testing.T) {
	client := newFakeToolClient()

	svc, err := NewService(client, &fakeProvider{fallback: "x"}, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), "", Options{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Equal(t, 0, client.disconnects)
}

func TestRun_StreamsTurns(t *testing.T) {
	client := newFakeToolClient()
	provider := &fakeProvider{fallback: "thinking"}

	svc, err := NewService(client, provider, nil)
	require.NoError(t, err)

	var speakers []string
	var connectedTo string
	var advertised int
	_, err = svc.Run(context.Background(), "AAPL", Options{
		MaxTurns: 3,
		OnConnect: func(info jsonrpc.ServerInfo, tools []jsonrpc.ToolDescriptor) {
			connectedTo = info.Name
			advertised = len(tools)
		},
		OnTurn: func(_ int, turn agents.Turn) { speakers = append(speakers, turn.Speaker) },
	})
	require.NoError(t, err)

	assert.Equal(t, "financial-analysis-server", connectedTo)
	assert.Equal(t, 2, advertised)
	assert.Equal(t, []string{
		agents.SentimentAnalystName,
		agents.TechnicalAnalystName,
		agents.OrchestratorName,
	}, speakers)
}

func plainResponse(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{Message: ai.Message{Role: ai.RoleAssistant, Content: content}, FinishReason: ai.FinishReasonStop}},
		Usage:   ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func toolCallResponse(id, name, arguments string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message: ai.Message{
				Role:      ai.RoleAssistant,
				ToolCalls: []ai.ToolCall{{ID: id, Type: "function", Function: ai.FunctionCall{Name: name, Arguments: arguments}}},
			},
			FinishReason: ai.FinishReasonToolCalls,
		}},
		Usage: ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

type recordedToolCall struct {
	name      string
	arguments map[string]interface{}
}

// fakeToolClient plays the gateway side of the handshake and records tool
// calls and disconnects.
type fakeToolClient struct {
	initErr  error
	listErr  error
	toolText string

	toolCalls   []recordedToolCall
	disconnects int
}

func newFakeToolClient() *fakeToolClient {
	return &fakeToolClient{toolText: "tool output"}
}

func (c *fakeToolClient) Initialize(context.Context) (*jsonrpc.InitializeResult, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}
	return &jsonrpc.InitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo:      jsonrpc.ServerInfo{Name: "financial-analysis-server", Version: "1.0.0"},
	}, nil
}

func (c *fakeToolClient) ListTools(context.Context) ([]jsonrpc.ToolDescriptor, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"ticker_symbol": map[string]interface{}{"type": "string"}},
		"required":   []interface{}{"ticker_symbol"},
	}
	return []jsonrpc.ToolDescriptor{
		{Name: "news_sentiment_tool", Description: "news", InputSchema: schema},
		{Name: "technical_analysis_tool", Description: "indicators", InputSchema: schema},
	}, nil
}

func (c *fakeToolClient) CallTool(_ context.Context, name string, arguments map[string]interface{}) string {
	c.toolCalls = append(c.toolCalls, recordedToolCall{name: name, arguments: arguments})
	return c.toolText
}

func (c *fakeToolClient) Disconnect() error {
	c.disconnects++
	return nil
}

// fakeProvider replays scripted responses, then falls back to a plain line.
type fakeProvider struct {
	responses []*ai.ChatResponse
	fallback  string
	err       error

	calls int
}

func (p *fakeProvider) Name() string        { return "fake" }
func (p *fakeProvider) SupportsTools() bool { return true }

func (p *fakeProvider) Chat(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.err != nil {
		return nil, p.err
	}

	idx := p.calls
	p.calls++
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return plainResponse(p.fallback), nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) SendMessage(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return nil
}
