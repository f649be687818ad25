package chat

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// SanitizeHistory turns untrusted JSON into well-formed turns. Anything that
// is not an array yields an empty history; entries that are not objects are
// dropped, a non-string role means "user" and a non-string text means empty.
// It never fails.
func SanitizeHistory(raw json.RawMessage, maxLen, maxTurns int) []ChatTurn {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return []ChatTurn{}
	}

	turns := make([]ChatTurn, 0, len(entries))
	for _, e := range entries {
		var obj map[string]json.RawMessage
		if json.Unmarshal(e, &obj) != nil || obj == nil {
			continue
		}
		turns = append(turns, ChatTurn{
			Role: stringField(obj, "role"),
			Text: stringField(obj, "text"),
		})
	}
	return Sanitize(turns, maxLen, maxTurns)
}

// Sanitize normalizes roles, trims text, drops empty or over-length turns and
// keeps the last maxTurns in their original order. Applying it to its own
// output returns the same sequence.
func Sanitize(turns []ChatTurn, maxLen, maxTurns int) []ChatTurn {
	out := make([]ChatTurn, 0, len(turns))
	for _, t := range turns {
		text := strings.TrimSpace(t.Text)
		if text == "" || utf8.RuneCountInString(text) > maxLen {
			continue
		}
		role := RoleUser
		if t.Role == RoleAssistant {
			role = RoleAssistant
		}
		out = append(out, ChatTurn{Role: role, Text: text})
	}

	if maxTurns <= 0 {
		return out[:0]
	}
	if len(out) > maxTurns {
		out = out[len(out)-maxTurns:]
	}
	return out
}

func stringField(obj map[string]json.RawMessage, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}
