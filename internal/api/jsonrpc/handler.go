package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tribunal/internal/metrics"
	"tribunal/internal/tools"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// Handshake identity advertised to clients
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "financial-analysis-server"
	ServerVersion   = "1.0.0"
)

// Handler dispatches JSON-RPC requests to registered tools.
type Handler struct {
	registry *tools.Registry
	log      *logger.Logger
}

// NewHandler creates the JSON-RPC dispatch handler.
func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{
		registry: registry,
		log:      logger.Component("jsonrpc"),
	}
}

// ServeHTTP accepts single and batch JSON-RPC requests over POST.
// Responses always ship with HTTP 200; failures surface as JSON-RPC
// error objects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, NewError(nil, CodeInternalError, fmt.Sprintf("Internal error: %v", err)))
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || !json.Valid(body) {
		writeJSON(w, NewError(nil, CodeParseError, "Parse error"))
		return
	}

	switch trimmed[0] {
	case '{':
		writeJSON(w, h.handleRaw(r.Context(), body))
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(body, &elements); err != nil {
			writeJSON(w, NewError(nil, CodeParseError, "Parse error"))
			return
		}
		responses := make([]Response, 0, len(elements))
		for _, element := range elements {
			responses = append(responses, h.handleRaw(r.Context(), element))
		}
		writeJSON(w, responses)
	default:
		// Valid JSON but not a request object or batch
		writeJSON(w, NewError(nil, CodeParseError, "Parse error"))
	}
}

// handleRaw binds one raw request and dispatches it. Bind faults are
// internal errors carrying no request id.
func (h *Handler) handleRaw(ctx context.Context, raw []byte) Response {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return NewError(nil, CodeInternalError, "Internal error: request must be an object")
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewError(nil, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}
	if req.Method == "" {
		return NewError(nil, CodeInternalError, "Internal error: method is required")
	}
	if err := validParams(req.Params); err != nil {
		return NewError(nil, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	// Explicit null id is treated as absent
	if bytes.Equal(bytes.TrimSpace(req.ID), []byte("null")) {
		req.ID = nil
	}

	return h.dispatch(ctx, &req)
}

func validParams(params json.RawMessage) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return errors.New("params must be an object")
	}
	return nil
}

func (h *Handler) dispatch(ctx context.Context, req *Request) Response {
	start := time.Now()
	resp := h.route(ctx, req)

	var err error
	if resp.Error != nil {
		err = errors.Newf("rpc error %d", resp.Error.Code)
	}
	metrics.RecordRPCRequest(methodLabel(req.Method), time.Since(start), err)

	if resp.Error != nil {
		h.log.Warnf("rpc %s failed: [%d] %s", req.Method, resp.Error.Code, resp.Error.Message)
	} else {
		h.log.Debugf("rpc %s handled in %s", req.Method, time.Since(start))
	}
	return resp
}

// methodLabel keeps metric label cardinality bounded
func methodLabel(method string) string {
	switch method {
	case MethodInitialize, MethodListTools, MethodCallTool:
		return method
	default:
		return "unknown"
	}
}

func (h *Handler) route(ctx context.Context, req *Request) Response {
	switch req.Method {
	case MethodInitialize:
		return h.handleInitialize(req)
	case MethodListTools:
		return h.handleListTools(req)
	case MethodCallTool:
		return h.handleCallTool(ctx, req)
	default:
		return NewError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (h *Handler) handleInitialize(req *Request) Response {
	return NewResult(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	})
}

func (h *Handler) handleListTools(req *Request) Response {
	all := h.registry.Tools()
	descriptors := make([]ToolDescriptor, 0, len(all))
	for _, t := range all {
		descriptors = append(descriptors, ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return NewResult(req.ID, ListToolsResult{Tools: descriptors})
}

func (h *Handler) handleCallTool(ctx context.Context, req *Request) (resp Response) {
	// A misbehaving tool must surface as an error response, not tear
	// down the request
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorf("tool call panic: %v", r)
			resp = NewError(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
		}
	}

	tool, ok := h.registry.Get(params.Name)
	if !ok {
		return NewError(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	args := params.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	start := time.Now()
	text, err := tool.Execute(ctx, args)
	metrics.RecordToolExecution(tool.Name(), time.Since(start), err)
	if err != nil {
		var ve *errors.ValidationError
		if errors.As(err, &ve) {
			return NewError(req.ID, CodeInvalidParams, ve.Message)
		}
		return NewError(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	return NewResult(req.ID, TextResult(text))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
