package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHistory(t *testing.T) {
	long := strings.Repeat("x", 601)
	raw := `[
		{"role":"user","text":" hola "},
		"not an object",
		42,
		null,
		["nested"],
		{"role":"assistant","text":"respuesta"},
		{"role":"system","text":"se vuelve user"},
		{"text":"sin rol"},
		{"role":"assistant","text":7},
		{"role":"user","text":"   "},
		{"role":"user","text":"` + long + `"}
	]`

	got := SanitizeHistory(json.RawMessage(raw), 600, 10)

	assert.Equal(t, []ChatTurn{
		{Role: RoleUser, Text: "hola"},
		{Role: RoleAssistant, Text: "respuesta"},
		{Role: RoleUser, Text: "se vuelve user"},
		{Role: RoleUser, Text: "sin rol"},
	}, got)
}

func TestSanitizeHistory_NonArray(t *testing.T) {
	for _, raw := range []string{``, `null`, `{}`, `"texto"`, `12`, `{"role":"user"`} {
		got := SanitizeHistory(json.RawMessage(raw), 600, 10)
		assert.NotNil(t, got, "input %q", raw)
		assert.Empty(t, got, "input %q", raw)
	}
}

func TestSanitize_KeepsLastTurnsInOrder(t *testing.T) {
	var turns []ChatTurn
	for i := 0; i < 15; i++ {
		turns = append(turns, ChatTurn{Role: RoleUser, Text: strings.Repeat("t", i+1)})
	}

	got := Sanitize(turns, 600, 10)

	require.Len(t, got, 10)
	assert.Equal(t, strings.Repeat("t", 6), got[0].Text)
	assert.Equal(t, strings.Repeat("t", 15), got[9].Text)
}

func TestSanitize_ZeroTurns(t *testing.T) {
	got := Sanitize([]ChatTurn{{Role: RoleUser, Text: "hola"}}, 600, 0)
	assert.Empty(t, got)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := [][]ChatTurn{
		nil,
		{{Role: "bot", Text: "  a "}, {Role: RoleAssistant, Text: "b"}, {Role: RoleUser, Text: ""}},
		{{Role: RoleUser, Text: strings.Repeat("x", 700)}, {Role: RoleAssistant, Text: "\tlisto\n"}},
	}
	for i := 0; i < 12; i++ {
		inputs[0] = append(inputs[0], ChatTurn{Role: RoleAssistant, Text: " turno "})
	}

	for _, in := range inputs {
		once := Sanitize(in, 600, 10)
		twice := Sanitize(once, 600, 10)
		assert.Equal(t, once, twice)
	}
}
