package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPC metrics
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_rpc_requests_total",
			Help: "Total number of JSON-RPC requests",
		},
		[]string{"method", "status"}, // status: success|error
	)

	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribunal_rpc_duration_seconds",
			Help:    "JSON-RPC request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"}, // status: success|error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribunal_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Market data metrics
	FetchCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_fetch_calls_total",
			Help: "Total number of market data fetches",
		},
		[]string{"source", "status"}, // source: yahoo_chart|yahoo_rss
	)

	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribunal_fetch_latency_seconds",
			Help:    "Market data fetch latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_agent_calls_total",
			Help: "Total number of agent model calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tribunal_agent_latency_seconds",
			Help:    "Agent model call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Conversation metrics
	Conversations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_conversations_total",
			Help: "Total number of completed analysis conversations",
		},
		[]string{"reason"}, // reason: phrase_matched|budget_exhausted|error
	)

	ConversationTurns = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tribunal_conversation_turns",
			Help:    "Number of turns per analysis conversation",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		},
	)

	// Notification metrics
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tribunal_notifications_total",
			Help: "Total number of verdict notifications sent",
		},
		[]string{"channel", "status"}, // status: success|error
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// RPC metrics
	prometheus.MustRegister(RPCRequests)
	prometheus.MustRegister(RPCDuration)

	// Tool metrics
	prometheus.MustRegister(ToolExecutions)
	prometheus.MustRegister(ToolLatency)

	// Market data metrics
	prometheus.MustRegister(FetchCalls)
	prometheus.MustRegister(FetchLatency)

	// Agent metrics
	prometheus.MustRegister(AgentCalls)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	// Conversation metrics
	prometheus.MustRegister(Conversations)
	prometheus.MustRegister(ConversationTurns)

	// Notification metrics
	prometheus.MustRegister(Notifications)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRPCRequest records a JSON-RPC request
func RecordRPCRequest(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	RPCRequests.WithLabelValues(method, status).Inc()
	RPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ToolExecutions.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordFetch records a market data fetch
func RecordFetch(source string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	FetchCalls.WithLabelValues(source, status).Inc()
	FetchLatency.WithLabelValues(source).Observe(latency.Seconds())
}

// RecordAgentCall records an agent model invocation
func RecordAgentCall(agent, model string, latency time.Duration, promptTokens, completionTokens int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AgentCalls.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())

	if promptTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(completionTokens))
	}
}

// RecordConversation records a completed analysis conversation
func RecordConversation(reason string, turns int) {
	Conversations.WithLabelValues(reason).Inc()
	ConversationTurns.Observe(float64(turns))
}

// RecordNotification records a verdict notification attempt
func RecordNotification(channel string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	Notifications.WithLabelValues(channel, status).Inc()
}
