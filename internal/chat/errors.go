package chat

import (
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is returned when the caller went away before an
// answer was ready.
const StatusClientClosedRequest = 499

// User-facing error messages.
const (
	msgEmptyInput      = "La pregunta esta vacia."
	msgTooLongFormat   = "La pregunta supera el maximo de %d caracteres."
	msgConfiguration   = "Falta configurar GEMINI_API_KEY en el servidor."
	msgQuotaExceeded   = "El asistente no esta disponible por limite de cuota en Gemini. Revisa tu free tier y limites del proyecto."
	msgAuthentication  = "No se pudo autenticar con Gemini. Revisa GEMINI_API_KEY."
	msgRejected        = "No fue posible generar una respuesta en este momento."
	msgNoUsableBackend = "No fue posible conectarse con Gemini en este momento."
	msgEmptyExtraction = "La IA no devolvio contenido util."
	msgCanceled        = "La solicitud fue cancelada."
)

// AnswerResponse is the success body.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MapOutcome converts an outcome into the HTTP status and JSON body sent to
// the caller.
func MapOutcome(o Outcome) (int, any) {
	switch o.Kind {
	case OutcomeSuccess:
		return http.StatusOK, AnswerResponse{Answer: o.Text}
	case OutcomeTruncated:
		return http.StatusOK, AnswerResponse{Answer: RetryPrompt}
	}

	f := o.Failure
	if f == nil {
		return http.StatusBadGateway, ErrorResponse{Error: msgRejected}
	}

	switch f.Kind {
	case KindEmptyInput:
		return http.StatusBadRequest, ErrorResponse{Error: msgEmptyInput}
	case KindTooLong:
		return http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf(msgTooLongFormat, f.Limit)}
	case KindConfiguration:
		return http.StatusServiceUnavailable, ErrorResponse{Error: msgConfiguration}
	case KindQuotaExceeded:
		return http.StatusTooManyRequests, ErrorResponse{Error: msgQuotaExceeded}
	case KindAuthentication:
		return http.StatusBadGateway, ErrorResponse{Error: msgAuthentication}
	case KindRejected:
		msg := f.Detail
		if msg == "" {
			msg = msgRejected
		}
		return http.StatusBadGateway, ErrorResponse{Error: msg}
	case KindEmptyExtraction:
		return http.StatusBadGateway, ErrorResponse{Error: msgEmptyExtraction}
	case KindCanceled:
		return StatusClientClosedRequest, ErrorResponse{Error: msgCanceled}
	default:
		return http.StatusBadGateway, ErrorResponse{Error: msgNoUsableBackend}
	}
}
