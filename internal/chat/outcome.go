package chat

import (
	"fmt"
	"time"
)

// FailureKind classifies why a request did not produce an answer.
type FailureKind string

const (
	KindEmptyInput      FailureKind = "empty_input"
	KindTooLong         FailureKind = "too_long"
	KindConfiguration   FailureKind = "configuration"
	KindQuotaExceeded   FailureKind = "quota_exceeded"
	KindAuthentication  FailureKind = "authentication"
	KindRejected        FailureKind = "rejected"
	KindNoUsableBackend FailureKind = "no_usable_backend"
	KindEmptyExtraction FailureKind = "empty_extraction"
	KindCanceled        FailureKind = "canceled"
)

// Failure is the terminal failure of one request. Detail is diagnostic text
// (usually the last backend message); it only reaches the caller for
// KindRejected.
type Failure struct {
	Kind   FailureKind
	Detail string
	Limit  int // Configured maximum for KindTooLong.
	Err    error
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind FailureKind, detail string, err error) *Failure {
	return &Failure{Kind: kind, Detail: detail, Err: err}
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTruncated
	OutcomeFailure
)

// Outcome is the single result produced for a request.
type Outcome struct {
	Kind     OutcomeKind
	Text     string   // Answer for Success, partial text for Truncated.
	Failure  *Failure // Set only for OutcomeFailure.
	Shortcut string   // Shortcut class when the answer bypassed generation.
	Backend  string   // Backend that produced the response, if any.
	Attempts []AttemptRecord
}

// Success builds a successful outcome.
func Success(text string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Text: text}
}

// Truncated builds an outcome for likely incomplete generated text.
func Truncated(partial string) Outcome {
	return Outcome{Kind: OutcomeTruncated, Text: partial}
}

// Failed builds a failure outcome.
func Failed(f *Failure) Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: f}
}

// Label returns a short stable name used for metrics and logs.
func (o Outcome) Label() string {
	switch o.Kind {
	case OutcomeSuccess:
		if o.Shortcut != "" {
			return "shortcut"
		}
		return "success"
	case OutcomeTruncated:
		return "truncated"
	case OutcomeFailure:
		if o.Failure != nil {
			return string(o.Failure.Kind)
		}
		return "failure"
	default:
		return fmt.Sprintf("unknown(%d)", int(o.Kind))
	}
}

// AttemptRecord describes one backend call. It is kept for logs and metrics
// and never returned to the caller.
type AttemptRecord struct {
	Backend    string
	HTTPStatus int // 0 when no response was received.
	Result     string
	Message    string
	Duration   time.Duration
}
