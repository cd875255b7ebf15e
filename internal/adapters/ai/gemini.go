package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider runs chat completions against the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	rateLimiter RateLimiter
	log         *logger.Logger
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string, limiter RateLimiter) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	if limiter == nil {
		limiter = NewNoOpLimiter()
	}

	return &GeminiProvider{
		client:      client,
		rateLimiter: limiter,
		log:         logger.Component("gemini"),
	}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() string { return ProviderNameGoogle.String() }

// SupportsTools indicates tool calling support.
func (p *GeminiProvider) SupportsTools() bool { return true }

// Chat sends a chat completion request to the Gemini API.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameGoogle,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	contents, system := p.toGeminiContents(req.Messages)

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	result, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "gemini generate content failed")
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, errors.Wrap(errors.ErrNoCompletion, "gemini returned no candidates")
	}

	cand := result.Candidates[0]
	msg := Message{Role: RoleAssistant}

	var texts []string
	for _, part := range cand.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				// Gemini omits call ids; mint one so tool results can
				// be correlated on replay.
				id = uuid.NewString()
			}

			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				p.log.Warnf("Failed to encode gemini function call args: %v", err)
				args = []byte("{}")
			}

			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:   id,
				Type: "function",
				Function: FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		}
	}
	msg.Content = strings.Join(texts, "\n")

	finishReason := FinishReasonStop
	switch {
	case len(msg.ToolCalls) > 0:
		finishReason = FinishReasonToolCalls
	case cand.FinishReason == genai.FinishReasonMaxTokens:
		finishReason = FinishReasonLength
	}

	resp := &ChatResponse{
		Model:   req.Model,
		Choices: []Choice{{Message: msg, FinishReason: finishReason}},
	}

	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp, nil
}

// toGeminiContents converts the message history to Gemini contents.
// System messages are pulled out for the SystemInstruction slot.
func (p *GeminiProvider) toGeminiContents(messages []Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(messages))
	var system []string

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)

		case RoleAssistant:
			content := &genai.Content{Role: "model"}
			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]interface{}
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					p.log.Warnf("Failed to parse tool call arguments: %v", err)
					continue
				}
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Function.Name,
						Args: args,
					},
				})
			}
			contents = append(contents, content)

		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolCallID,
						Name:     msg.Name,
						Response: map[string]interface{}{"result": msg.Content},
					},
				}},
			})

		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	return contents, strings.Join(system, "\n")
}

func toGeminiTools(tools []ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  toGeminiSchema(tool.Function.Parameters),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toGeminiSchema converts a JSON schema map to the typed Gemini schema.
// Tool schemas in this system are flat objects of string properties.
func toGeminiSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{Type: genai.TypeObject}

	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			child := &genai.Schema{Type: genai.TypeString}
			if prop, ok := raw.(map[string]interface{}); ok {
				if desc, ok := prop["description"].(string); ok {
					child.Description = desc
				}
			}
			out.Properties[name] = child
		}
	}

	switch required := schema["required"].(type) {
	case []string:
		out.Required = required
	case []interface{}:
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}

	return out
}
