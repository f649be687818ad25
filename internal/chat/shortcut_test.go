package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_Match(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		msg   string
		class string
	}{
		{"¿Cuál es el horario del humedal?", ShortcutOpeningHours},
		{"HORARIOS de visita", ShortcutOpeningHours},
		{"¿A qué hora abren?", ShortcutOpeningHours},
		{"a que hora cierra el santuario", ShortcutOpeningHours},
		{"¿Cuál es la hora de apertura?", ShortcutOpeningHours},
		{"¿Qué días de atención tienen?", ShortcutOpeningHours},
		{"¿Está abierto el domingo?", ShortcutOpeningHours},
		{"¿Abren los fines de semana?", ShortcutOpeningHours},
		{"¿Abre mañana?", ShortcutOpeningHours},
		{"What are the opening hours?", ShortcutOpeningHours},
		{"¿Qué días abre el humedal?", ShortcutOpeningHours},
		{"¿Cuándo abren?", ShortcutOpeningHours},
		{"¿Qué días se puede visitar?", ShortcutOpeningHours},
		{"¿Hasta qué hora está abierto?", ShortcutOpeningHours},
		{"¿Está abierta la reserva?", ShortcutOpeningHours},
		{"¿Cuál es el precio de la entrada?", ShortcutEntranceFees},
		{"¿Cuánto cuesta la entrada?", ShortcutEntranceFees},
		{"cuanto vale entrar", ShortcutEntranceFees},
		{"¿Cobran entrada?", ShortcutEntranceFees},
		{"Tarifas de entrada", ShortcutEntranceFees},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			sc, ok := g.Match(tt.msg)
			require.True(t, ok)
			assert.Equal(t, tt.class, sc.Class)
			assert.NotEmpty(t, sc.Answer)
		})
	}
}

func TestGuard_NoMatch(t *testing.T) {
	g := NewGuard()
	for _, msg := range []string{
		"¿Qué aves puedo ver en invierno?",
		"¿Cómo llego desde Santiago?",
		"¿Dónde está la entrada principal?",
		"Ahora quiero saber de flamencos",
		"¿Qué cámara me recomiendas?",
		"¿Cuándo llegan los flamencos?",
		"¿Qué días hay más aves?",
	} {
		_, ok := g.Match(msg)
		assert.False(t, ok, "unexpected shortcut for %q", msg)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "¿a que hora abren los dias feriados?", Fold("¿A qué HORA abren los días feriados?"))
	assert.Equal(t, "manana", Fold("Mañana"))
}
