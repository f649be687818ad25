package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HerbHall/chatgate/pkg/llm"
)

// geminiStatusError represents an HTTP error response from the Gemini API.
type geminiStatusError struct {
	StatusCode int
	Status     string // google.rpc status, e.g. "RESOURCE_EXHAUSTED".
	Reason     string // ErrorInfo reason, e.g. "API_KEY_INVALID".
	Message    string
	RetryAfter time.Duration
}

func (e *geminiStatusError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// mapError translates Gemini and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out", err)
	}

	var se *geminiStatusError
	if errors.As(err, &se) {
		lower := strings.ToLower(se.Message)
		var pe *llm.ProviderError
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			pe = llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		// Gemini rejects bad keys with 400 INVALID_ARGUMENT rather than 401.
		case se.Reason == "API_KEY_INVALID" || strings.Contains(lower, "api key not valid"):
			pe = llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == http.StatusNotFound ||
			strings.Contains(lower, "is not found for api version"):
			pe = llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case se.StatusCode == http.StatusTooManyRequests:
			pe = llm.NewProviderError(llm.ErrCodeRateLimit, se.Message, err)
		case strings.Contains(lower, "exceeds the maximum number of tokens"):
			pe = llm.NewProviderError(llm.ErrCodeContextLength, se.Message, err)
		case se.StatusCode >= 500:
			pe = llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		default:
			pe = llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
		return pe.WithStatus(se.StatusCode).WithRetryAfter(se.RetryAfter)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "gemini server unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini error", err)
}

// parseRetryAfter reads a Retry-After header value given either as
// delta-seconds or as an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
