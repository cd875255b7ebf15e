package tools

import (
	"context"

	"tribunal/pkg/errors"
)

// Tool represents a callable capability exposed over the gateway.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// InputSchema returns the JSON schema for the tool arguments.
	InputSchema() map[string]interface{}
	// Execute performs the tool's action and returns the result text.
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     HandlerFunc
}

// New creates a new function-backed Tool.
func New(name, description string, schema map[string]interface{}, handler HandlerFunc) Tool {
	return &FunctionTool{
		name:        name,
		description: description,
		schema:      schema,
		handler:     handler,
	}
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.name }

// Description returns a human description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// InputSchema returns the argument schema.
func (t *FunctionTool) InputSchema() map[string]interface{} { return t.schema }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if t.handler == nil {
		return "", errors.New("tool handler is not defined")
	}

	return t.handler(ctx, args)
}

// TickerSchema returns the argument schema shared by ticker-scoped tools.
func TickerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker_symbol": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol (e.g., 'AAPL', 'MSFT')",
			},
		},
		"required": []string{"ticker_symbol"},
	}
}

// tickerArg extracts the required ticker_symbol argument.
func tickerArg(args map[string]interface{}) (string, error) {
	s, _ := args["ticker_symbol"].(string)
	if s == "" {
		return "", errors.NewValidationError("ticker_symbol", "ticker_symbol is required", args["ticker_symbol"])
	}
	return s, nil
}
