package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/claude/repcoach/internal/oracle"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	deadline bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents = contents
	f.config = config
	_, f.deadline = ctx.Deadline()
	return f.resp, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestConverseRequestConversion verifies history roles, tool results and tool
// schemas are translated into genai types.
func TestConverseRequestConversion(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "ok"}}}}},
	}}
	c := newClient(fake, "gemini-2.5-flash", time.Second, testLogger())

	req := oracle.Request{
		Instruction: "be brief",
		History: []oracle.Message{
			oracle.UserText("chest day"),
			{Role: oracle.RoleAssistant, Parts: []oracle.Part{
				oracle.ToolCallPart{ID: "c1", Name: "search_exercises", Args: map[string]any{"muscle_group": "chest"}, Signature: []byte("sig")},
			}},
			{Role: oracle.RoleTool, Parts: []oracle.Part{
				oracle.ToolResultPart{CallID: "c1", Name: "search_exercises", Content: "[]"},
			}},
		},
		Tools: []oracle.ToolSpec{{
			Name: "search_exercises",
			Params: []oracle.Param{
				{Name: "muscle_group", Type: "string", Required: true},
				{Name: "equipment_available", Type: "array", Items: "string"},
			},
		}},
	}

	if _, err := c.Converse(context.Background(), req); err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if !fake.deadline {
		t.Error("expected per-call deadline on context")
	}
	if len(fake.contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(fake.contents))
	}
	if fake.contents[1].Role != "model" {
		t.Errorf("assistant role = %q, want model", fake.contents[1].Role)
	}
	call := fake.contents[1].Parts[0]
	if call.FunctionCall == nil || call.FunctionCall.Name != "search_exercises" || string(call.ThoughtSignature) != "sig" {
		t.Errorf("function call part = %+v", call)
	}
	if fake.contents[2].Role != "user" || fake.contents[2].Parts[0].FunctionResponse == nil {
		t.Errorf("tool result should be a user function response, got %+v", fake.contents[2])
	}

	if fake.config.SystemInstruction == nil || fake.config.SystemInstruction.Parts[0].Text != "be brief" {
		t.Error("system instruction not set")
	}
	decl := fake.config.Tools[0].FunctionDeclarations[0]
	if decl.Parameters.Properties["equipment_available"].Items == nil {
		t.Error("array param should carry item schema")
	}
	if len(decl.Parameters.Required) != 1 || decl.Parameters.Required[0] != "muscle_group" {
		t.Errorf("required = %v", decl.Parameters.Required)
	}
}

// TestConverseResponseConversion verifies function calls get IDs and text is kept.
func TestConverseResponseConversion(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "Let me search."},
			{FunctionCall: &genai.FunctionCall{Name: "search_exercises", Args: map[string]any{"muscle_group": "chest"}}},
		}}}},
	}}
	c := newClient(fake, "m", 0, testLogger())

	msg, err := c.Converse(context.Background(), oracle.Request{History: []oracle.Message{oracle.UserText("hi")}})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if msg.Text() != "Let me search." {
		t.Errorf("text = %q", msg.Text())
	}
	calls := msg.ToolCalls()
	if len(calls) != 1 || calls[0].ID == "" || calls[0].Args["muscle_group"] != "chest" {
		t.Errorf("calls = %+v", calls)
	}
}

// TestConverseErrors verifies transport errors and empty candidates surface as errors.
func TestConverseErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := newClient(&fakeModels{err: boom}, "m", time.Second, testLogger())
	if _, err := c.Converse(context.Background(), oracle.Request{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped quota error", err)
	}

	c = newClient(&fakeModels{resp: &genai.GenerateContentResponse{}}, "m", time.Second, testLogger())
	if _, err := c.Converse(context.Background(), oracle.Request{}); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates", err)
	}
}
