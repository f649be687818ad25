package chat

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shortcut classes.
const (
	ShortcutOpeningHours = "opening_hours"
	ShortcutEntranceFees = "entrance_fees"
)

// Shortcut is a fixed answer returned without calling any backend.
type Shortcut struct {
	Class  string
	Answer string
}

type shortcutRule struct {
	class    string
	answer   string
	patterns []*regexp.Regexp
}

// Guard intercepts questions about operational facts the assistant is not
// authoritative on, so the generator never gets a chance to invent them.
type Guard struct {
	rules []shortcutRule
}

const (
	openingHoursAnswer = "No tengo confirmados los horarios ni los días de apertura del Humedal El Yali, " +
		"porque pueden cambiar según la temporada. Te recomiendo revisarlos directamente con la " +
		"administración del santuario o en sus canales oficiales antes de tu visita. " +
		"¿Quieres que te ayude a planificar la visita o a saber qué aves podrías observar?"

	entranceFeesAnswer = "No tengo confirmado el valor de la entrada al Humedal El Yali. " +
		"Consulta las tarifas vigentes con la administración del santuario o en sus canales " +
		"oficiales antes de ir. ¿Te ayudo con cómo llegar o con recomendaciones para tu visita?"
)

const weekdayOrDay = `(lunes|martes|miercoles|jueves|viernes|sabados?|domingos?|feriados?|hoy|manana|fin(es)? de semana)`

// NewGuard returns a Guard with the built-in pattern classes.
func NewGuard() *Guard {
	return &Guard{rules: []shortcutRule{
		{
			class:  ShortcutOpeningHours,
			answer: openingHoursAnswer,
			patterns: compileAll(
				`\bhorarios?\b`,
				`\bhoras? de (apertura|cierre|atencion)\b`,
				`\ba que hora (abre|abren|cierra|cierran)\b`,
				`\bhasta que hora\b`,
				`\bque dias? (abre|abren|atiende|atienden|se puede visitar)\b`,
				`\bcuando (abre|abren|cierra|cierran|atiende|atienden)\b`,
				`\b(esta|estan) abiert[oa]s?\b`,
				`\bdias? de (apertura|atencion|visita)\b`,
				`\b(abre|abren|cierra|cierran|abierto|cerrado)\b.*\b`+weekdayOrDay+`\b`,
				`\bopening hours\b`,
			),
		},
		{
			class:  ShortcutEntranceFees,
			answer: entranceFeesAnswer,
			patterns: compileAll(
				`\b(precio|valor|tarifa|costo)s? de (la )?entrada\b`,
				`\bcuanto (cuesta|vale|sale|cobran)( por)? (la )?(entrada|entrar)\b`,
				`\bcobran (la )?entrada\b`,
			),
		},
	}}
}

// Match reports whether message belongs to a shortcut class.
func (g *Guard) Match(message string) (Shortcut, bool) {
	folded := Fold(message)
	for _, r := range g.rules {
		for _, p := range r.patterns {
			if p.MatchString(folded) {
				return Shortcut{Class: r.class, Answer: r.answer}, true
			}
		}
	}
	return Shortcut{}, false
}

// Fold lowercases s and strips diacritics, so "¿A qué HORA abren?" becomes
// "¿a que hora abren?".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
