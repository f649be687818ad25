package llm

import "strings"

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"` // One of RoleSystem, RoleUser, RoleAssistant.
	Content string `json:"content"`
}

// Role constants for the Message.Role field.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FinishReason is the normalized reason a backend stopped generating a candidate.
type FinishReason string

// Normalized finish reasons. Adapters map their native values onto these.
const (
	FinishUnspecified FinishReason = ""
	FinishStop        FinishReason = "stop"
	FinishLength      FinishReason = "length" // output token limit reached
	FinishSafety      FinishReason = "safety"
	FinishOther       FinishReason = "other"
)

// Candidate is one ranked answer returned by a backend.
type Candidate struct {
	Parts        []string     `json:"parts"` // Text parts in order; non-text parts are omitted.
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// Text joins the candidate's parts with newlines and trims surrounding space.
func (c Candidate) Text() string {
	return strings.TrimSpace(strings.Join(c.Parts, "\n"))
}

// Response contains the candidates generated by a backend and call metadata.
type Response struct {
	Candidates []Candidate `json:"candidates"` // Ranked, best first.
	Model      string      `json:"model"`      // Model that produced this response.
	Usage      Usage       `json:"usage"`      // Token consumption stats.
}

// Usage tracks token consumption for a single call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
