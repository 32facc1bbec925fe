// Package gemini adapts the Google Gemini API to the oracle.Oracle interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/claude/repcoach/internal/oracle"
)

// DefaultTimeout bounds a single GenerateContent call.
const DefaultTimeout = 60 * time.Second

// ErrNoCandidates is returned when the API answers without any candidate.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// generator is the subset of *genai.Models used by the adapter.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements oracle.Oracle on top of genai.
type Client struct {
	models  generator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Gemini client using the Gemini Developer API backend.
func New(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return newClient(c.Models, model, timeout, logger), nil
}

func newClient(models generator, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{models: models, model: model, timeout: timeout, logger: logger}
}

// Converse sends one round-trip to Gemini. The call is bounded by the
// client timeout in addition to ctx.
func (c *Client) Converse(ctx context.Context, req oracle.Request) (*oracle.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if req.Instruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instruction}}}
	}
	if len(req.Tools) > 0 {
		config.Tools = convertTools(req.Tools)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, convertHistory(req.History), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate (%s): %w", c.model, err)
	}
	c.logger.Debug("gemini call complete", "model", c.model, "duration", time.Since(start))

	return convertResponse(resp)
}

func convertHistory(history []oracle.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := string(genai.RoleUser)
		if m.Role == oracle.RoleAssistant {
			role = string(genai.RoleModel)
		}

		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p := p.(type) {
			case oracle.TextPart:
				if p.Text != "" {
					parts = append(parts, &genai.Part{Text: p.Text})
				}
			case oracle.ToolCallPart:
				parts = append(parts, &genai.Part{
					FunctionCall:     &genai.FunctionCall{ID: p.ID, Name: p.Name, Args: p.Args},
					ThoughtSignature: p.Signature,
				})
			case oracle.ToolResultPart:
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       p.CallID,
						Name:     p.Name,
						Response: map[string]any{"output": p.Content},
					},
				})
			case oracle.ImagePart:
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Data},
				})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func convertTools(tools []oracle.ToolSpec) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(t.Params)),
		}
		for _, p := range t.Params {
			s := &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
			if s.Type == genai.TypeArray {
				s.Items = &genai.Schema{Type: schemaType(p.Items)}
			}
			params.Properties[p.Name] = s
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func convertResponse(resp *genai.GenerateContentResponse) (*oracle.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	cand := resp.Candidates[0]
	msg := &oracle.Message{Role: oracle.RoleAssistant}
	if cand.Content == nil {
		return msg, nil
	}

	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.FunctionCall != nil:
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			msg.Parts = append(msg.Parts, oracle.ToolCallPart{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Args:      args,
				Signature: part.ThoughtSignature,
			})
		case part.Thought:
			// reasoning summaries are not part of the reply
		case part.Text != "":
			msg.Parts = append(msg.Parts, oracle.TextPart{Text: part.Text})
		}
	}
	return msg, nil
}
