package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/HerbHall/chatgate/pkg/llm"
)

// RetryPrompt replaces answers that look cut off.
const RetryPrompt = "Mi respuesta quedó incompleta. ¿Puedes repetir la pregunta o pedirme " +
	"una respuesta más breve?"

// danglingWords are connectives, prepositions and articles that cannot end a
// finished Spanish (or English) sentence. Compared after Fold.
var danglingWords = map[string]bool{
	"y": true, "e": true, "o": true, "u": true, "ni": true, "pero": true, "sino": true,
	"que": true, "porque": true, "pues": true, "aunque": true, "como": true, "cuando": true,
	"donde": true, "si": true, "mientras": true, "ademas": true,
	"a": true, "al": true, "ante": true, "bajo": true, "con": true, "contra": true, "de": true,
	"del": true, "desde": true, "durante": true, "en": true, "entre": true, "hacia": true,
	"hasta": true, "para": true, "por": true, "segun": true, "sin": true, "sobre": true, "tras": true,
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true, "unos": true,
	"unas": true, "lo": true, "su": true, "sus": true, "mas": true, "muy": true,
	"and": true, "or": true, "but": true, "the": true, "of": true, "to": true, "with": true,
}

// Interpret picks the first candidate with usable text and decides whether
// it is complete. Truncation detection is a heuristic: it lowers, but does
// not remove, the chance of returning a cut-off answer.
func Interpret(resp *llm.Response, minAnswerLength int) Outcome {
	if resp == nil {
		return Failed(newFailure(KindEmptyExtraction, "no response", nil))
	}
	for _, c := range resp.Candidates {
		text := c.Text()
		if text == "" {
			continue
		}
		if c.FinishReason == llm.FinishLength || LooksTruncated(text, minAnswerLength) {
			return Truncated(text)
		}
		return Success(text)
	}
	return Failed(newFailure(KindEmptyExtraction, "no candidate carried text", nil))
}

// LooksTruncated reports whether text is shorter than minLen runes or ends
// mid-sentence: on a dangling word or on , : ; with no closing punctuation.
func LooksTruncated(text string, minLen int) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minLen {
		return true
	}

	trimmed := strings.TrimRightFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("\"'»”’)]}*_", r)
	})
	if trimmed == "" {
		return true
	}

	last, _ := utf8.DecodeLastRuneInString(trimmed)
	switch {
	case strings.ContainsRune(".!?…", last):
		return false
	case strings.ContainsRune(",:;", last):
		return true
	case !unicode.IsLetter(last):
		return false
	}

	word := trimmed
	if i := strings.LastIndexFunc(trimmed, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		_, size := utf8.DecodeRuneInString(trimmed[i:])
		word = trimmed[i+size:]
	}
	return danglingWords[Fold(word)]
}
