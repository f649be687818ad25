package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one prior message in the conversation.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ConversationRequest is a validated question plus sanitized history.
type ConversationRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

type rawRequest struct {
	Message json.RawMessage `json:"message"`
	History json.RawMessage `json:"history"`
}

// ParseRequest decodes an inbound JSON body. A body that is not a JSON
// object, or a message that is not a string, is treated as an empty message.
func ParseRequest(body []byte, maxLen, maxTurns int) (ConversationRequest, *Failure) {
	var raw rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = rawRequest{}
	}

	var message string
	if len(raw.Message) > 0 {
		if err := json.Unmarshal(raw.Message, &message); err != nil {
			message = ""
		}
	}

	message, f := ValidateMessage(message, maxLen)
	if f != nil {
		return ConversationRequest{}, f
	}

	return ConversationRequest{
		Message: message,
		History: SanitizeHistory(raw.History, maxLen, maxTurns),
	}, nil
}

// ValidateMessage trims the question and checks it against maxLen runes.
func ValidateMessage(message string, maxLen int) (string, *Failure) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", newFailure(KindEmptyInput, "message is empty", nil)
	}
	if n := utf8.RuneCountInString(message); n > maxLen {
		f := newFailure(KindTooLong, fmt.Sprintf("message has %d characters", n), nil)
		f.Limit = maxLen
		return "", f
	}
	return message, nil
}
