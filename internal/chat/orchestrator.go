package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/chatgate/pkg/llm"
	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Sleeper waits between attempts. Sleep must return early with the
// context's error when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generation is what the orchestrator hands to the interpreter.
type Generation struct {
	Response *llm.Response
	Backend  string
	Attempts []AttemptRecord
	Failure  *Failure
}

// Orchestrator drives the ordered, retrying call sequence across backends.
// Attempts are strictly sequential.
type Orchestrator struct {
	provider   llm.Provider
	cfg        Config
	candidates []string
	prompt     string
	sleeper    Sleeper
	metrics    *Metrics
	logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator. A nil sleeper uses real timers.
func NewOrchestrator(provider llm.Provider, cfg Config, prompt string, sleeper Sleeper, metrics *Metrics, logger *zap.Logger) *Orchestrator {
	if sleeper == nil {
		sleeper = timerSleeper{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		provider:   provider,
		cfg:        cfg,
		candidates: cfg.Candidates(),
		prompt:     prompt,
		sleeper:    sleeper,
		metrics:    metrics,
		logger:     logger,
	}
}

// action is what the orchestrator does after a failed attempt.
type action int

const (
	actionRetry       action = iota // back off, then retry the same backend
	actionNextBackend               // abandon this backend immediately
	actionAbort                     // stop the whole search
)

func classify(err error) (action, FailureKind) {
	switch {
	case llm.IsModelNotFoundError(err):
		return actionNextBackend, KindNoUsableBackend
	case llm.IsAuthenticationError(err):
		return actionAbort, KindAuthentication
	case llm.IsMalformedResponse(err):
		return actionAbort, KindEmptyExtraction
	case llm.IsRetryable(err), llm.Code(err) == "":
		return actionRetry, KindNoUsableBackend
	default:
		// invalid_request, context_length_exceeded: the request itself is
		// wrong, so another backend would reject it too.
		return actionAbort, KindRejected
	}
}

// Generate runs messages against each candidate backend in order until one
// answers, the search is aborted, or every backend is exhausted.
func (o *Orchestrator) Generate(ctx context.Context, messages []llm.Message) Generation {
	var (
		gen         Generation
		errs        *multierror.Error
		lastErr     error
		viable      int
		rateLimited int
	)

	for _, backend := range o.candidates {
		bo := o.newBackOff()
		var backendErr error
		notFound := false

	attempts:
		for attempt := 0; attempt <= o.cfg.MaxRetriesPerBackend; attempt++ {
			if err := ctx.Err(); err != nil {
				gen.Failure = newFailure(KindCanceled, "request cancelled before attempt", err)
				return gen
			}

			resp, rec, err := o.attempt(ctx, backend, messages)
			gen.Attempts = append(gen.Attempts, rec)
			if err == nil {
				gen.Response = resp
				gen.Backend = backend
				return gen
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				gen.Failure = newFailure(KindCanceled, "request cancelled during attempt", ctxErr)
				return gen
			}

			backendErr = err
			lastErr = err

			act, kind := classify(err)
			switch act {
			case actionAbort:
				gen.Failure = newFailure(kind, providerMessage(err), err)
				o.logger.Warn("generation aborted",
					zap.String("backend", backend),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				return gen
			case actionNextBackend:
				notFound = true
				break attempts
			}

			if attempt == o.cfg.MaxRetriesPerBackend {
				break
			}

			wait := o.delay(bo, err)
			o.logger.Debug("retrying backend",
				zap.String("backend", backend),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.String("code", llm.Code(err)),
			)
			if err := o.sleeper.Sleep(ctx, wait); err != nil {
				gen.Failure = newFailure(KindCanceled, "request cancelled during backoff", err)
				return gen
			}
		}

		if !notFound {
			viable++
			if llm.IsRateLimitError(backendErr) {
				rateLimited++
			}
		}
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", backend, backendErr))
	}

	kind := KindNoUsableBackend
	if viable > 0 && rateLimited == viable {
		kind = KindQuotaExceeded
	}
	gen.Failure = newFailure(kind, providerMessage(lastErr), errs.ErrorOrNil())
	o.logger.Warn("no backend produced a response",
		zap.String("kind", string(kind)),
		zap.Int("attempts", len(gen.Attempts)),
		zap.Error(errs.ErrorOrNil()),
	)
	return gen
}

// attempt issues one call under its own timeout. The attempt context is
// released before attempt returns.
func (o *Orchestrator) attempt(ctx context.Context, backend string, messages []llm.Message) (*llm.Response, AttemptRecord, error) {
	actx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.provider.Chat(actx, messages,
		llm.WithModel(backend),
		llm.WithSystemInstruction(o.prompt),
		llm.WithTemperature(o.cfg.Temperature),
		llm.WithMaxTokens(o.cfg.MaxOutputTokens),
		llm.WithTopP(o.cfg.TopP),
		llm.WithTopK(o.cfg.TopK),
	)
	rec := AttemptRecord{Backend: backend, Duration: time.Since(start)}
	if err == nil && resp == nil {
		err = llm.NewProviderError(llm.ErrCodeMalformedResponse, "backend returned no response", nil)
	}

	if err != nil {
		rec.HTTPStatus = llm.StatusCode(err)
		rec.Result = llm.Code(err)
		if rec.Result == "" {
			rec.Result = "transport_error"
		}
		rec.Message = err.Error()
	} else {
		rec.HTTPStatus = http.StatusOK
		rec.Result = "success"
	}
	o.metrics.observeAttempt(rec)
	return resp, rec, err
}

// delay picks the wait before the next attempt: the backend hint for any
// retryable failure (clamped to RetryHintCeiling), otherwise the exponential
// schedule.
func (o *Orchestrator) delay(bo backoff.BackOff, err error) time.Duration {
	if llm.IsRetryable(err) {
		if hint, ok := llm.RetryAfterHint(err); ok {
			return min(hint, o.cfg.RetryHintCeiling)
		}
	}
	d := bo.NextBackOff()
	if d == backoff.Stop {
		return o.cfg.BackoffMax
	}
	return d
}

func (o *Orchestrator) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.cfg.BackoffBase
	b.RandomizationFactor = o.cfg.BackoffJitter
	b.Multiplier = o.cfg.BackoffMultiplier
	b.MaxInterval = o.cfg.BackoffMax
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func providerMessage(err error) string {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
