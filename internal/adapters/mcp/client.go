// Package mcp provides the JSON-RPC client agents use to reach the
// financial-analysis gateway.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"tribunal/internal/api/jsonrpc"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

const requestTimeout = 60 * time.Second

// Client talks JSON-RPC 2.0 to the tool gateway. The transport handle
// is created lazily under a lock and recreated after Disconnect, so a
// disconnected client can be reused.
type Client struct {
	serverURL string
	log       *logger.Logger

	mu     sync.Mutex
	handle *resty.Client
}

// response mirrors jsonrpc.Response with the result kept raw for
// typed decoding on the client side.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonrpc.Error  `json:"error"`
}

// New creates a client for the gateway at serverURL. No connection is
// made until the first call.
func New(serverURL string, log *logger.Logger) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		log:       log,
	}
}

func (c *Client) ensureHandle() *resty.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		handle := resty.New()
		handle.SetBaseURL(c.serverURL)
		handle.SetTimeout(requestTimeout)
		handle.SetHeader("Content-Type", "application/json")
		c.handle = handle
		c.log.Debugf("MCP client connected to %s", c.serverURL)
	}

	return c.handle
}

func newRequest(method string, params interface{}) (jsonrpc.Request, error) {
	req := jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      json.RawMessage(strconv.Quote(uuid.NewString())),
		Method:  method,
	}

	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return jsonrpc.Request{}, errors.Wrap(err, "failed to encode rpc params")
		}
		req.Params = raw
	}

	return req, nil
}

func (c *Client) post(ctx context.Context, req jsonrpc.Request) (*response, error) {
	var envelope response

	resp, err := c.ensureHandle().R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&envelope).
		Post("/mcp")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Newf("unexpected HTTP status %d", resp.StatusCode())
	}

	return &envelope, nil
}

// Initialize performs the protocol handshake and returns the server's
// capabilities.
func (c *Client) Initialize(ctx context.Context) (*jsonrpc.InitializeResult, error) {
	req, err := newRequest(jsonrpc.MethodInitialize, nil)
	if err != nil {
		return nil, err
	}

	envelope, err := c.post(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "initialize failed")
	}
	if envelope.Error != nil {
		return nil, errors.Newf("initialize failed: [%d] %s", envelope.Error.Code, envelope.Error.Message)
	}

	var result jsonrpc.InitializeResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode initialize result")
	}

	return &result, nil
}

// ListTools fetches the gateway's tool registry.
func (c *Client) ListTools(ctx context.Context) ([]jsonrpc.ToolDescriptor, error) {
	req, err := newRequest(jsonrpc.MethodListTools, nil)
	if err != nil {
		return nil, err
	}

	envelope, err := c.post(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "tools/list failed")
	}
	if envelope.Error != nil {
		return nil, errors.Newf("tools/list failed: [%d] %s", envelope.Error.Code, envelope.Error.Message)
	}

	var result jsonrpc.ListToolsResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode tools/list result")
	}

	return result.Tools, nil
}

// CallTool invokes a gateway tool and always returns text: failures of
// any kind are normalized into a readable description so agents can
// fold them into the conversation instead of crashing it.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) string {
	c.log.Debugf("Calling MCP tool %s", name)

	req, err := newRequest(jsonrpc.MethodCallTool, jsonrpc.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		return fmt.Sprintf("Error calling MCP tool: %v", err)
	}

	envelope, err := c.post(ctx, req)
	if err != nil {
		return fmt.Sprintf("Error calling MCP tool: %v", err)
	}
	if envelope.Error != nil {
		return fmt.Sprintf("Error [%d] %s", envelope.Error.Code, envelope.Error.Message)
	}

	var result jsonrpc.CallToolResult
	if err := json.Unmarshal(envelope.Result, &result); err != nil || len(result.Content) == 0 {
		return fmt.Sprintf("Tool returned no content: %s", string(envelope.Result))
	}

	return result.Content[0].Text
}

// Disconnect drops the transport handle. Safe to call repeatedly; the
// next call after a disconnect dials a fresh handle.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}

	c.handle.GetClient().CloseIdleConnections()
	c.handle = nil
	c.log.Debug("MCP client disconnected")

	return nil
}
