// Package oracle defines the boundary to a text-generation model that may
// request tool invocations.
package oracle

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable marks a failed or empty model call. The routine and
// nutrition packages share it as their ErrOracleUnavailable.
var ErrUnavailable = errors.New("oracle unavailable")

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Part is one piece of message content. The set of implementations is closed:
// TextPart, ToolCallPart, ToolResultPart and ImagePart.
type Part interface {
	isPart()
}

// TextPart is plain text.
type TextPart struct {
	Text string
}

// ToolCallPart is a tool invocation requested by the model.
type ToolCallPart struct {
	ID   string
	Name string
	Args map[string]any
	// Signature is an opaque provider token that must be replayed with the call.
	Signature []byte
}

// ToolResultPart carries the output of a tool call back to the model.
type ToolResultPart struct {
	CallID  string
	Name    string
	Content string
}

// ImagePart is inline image data sent with a user message.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

func (TextPart) isPart()       {}
func (ToolCallPart) isPart()   {}
func (ToolResultPart) isPart() {}
func (ImagePart) isPart()      {}

// Message is a single conversation turn.
type Message struct {
	Role  Role
	Parts []Part
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok && t.Text != "" {
			texts = append(texts, t.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolCalls returns the tool calls requested in the message, in order.
func (m Message) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range m.Parts {
		if c, ok := p.(ToolCallPart); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// UserText builds a user message containing a single text part.
func UserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        string // string, integer, number, boolean or array
	Items       string // element type when Type is array
	Description string
	Required    bool
}

// ToolSpec declares a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Request is one model round-trip: the system instruction, the conversation
// so far and the tools on offer.
type Request struct {
	Instruction string
	History     []Message
	Tools       []ToolSpec
}

// Oracle is a text-generation backend. Implementations are non-deterministic
// and may fail for transport, auth or quota reasons.
type Oracle interface {
	Converse(ctx context.Context, req Request) (*Message, error)
}
