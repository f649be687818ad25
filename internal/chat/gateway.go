// Package chat implements the conversational request gateway: it validates a
// question, answers operational questions from fixed text, and otherwise
// drives a bounded retry and fallback sequence across generation backends.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/HerbHall/chatgate/internal/server"
	"github.com/HerbHall/chatgate/pkg/llm"
	"go.uber.org/zap"
)

// ErrNotConfigured is reported by Ready when no backend credential is set.
var ErrNotConfigured = errors.New("generation backend credential is not configured")

// Gateway ties the request pipeline together. It holds no per-request state
// and is safe for concurrent use.
type Gateway struct {
	cfg      Config
	guard    *Guard
	provider llm.Provider
	orch     *Orchestrator
	metrics  *Metrics
	logger   *zap.Logger
}

// Option customizes a Gateway.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	sleeper Sleeper
	metrics *Metrics
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(s Sleeper) Option {
	return func(o *gatewayOptions) { o.sleeper = s }
}

// WithMetrics records gateway metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *gatewayOptions) { o.metrics = m }
}

// NewGateway validates cfg and builds a Gateway. provider may be nil when no
// credential is configured; generation requests then fail with
// KindConfiguration while shortcuts keep working.
func NewGateway(cfg Config, provider llm.Provider, logger *zap.Logger, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chat config: %w", err)
	}
	prompt, err := cfg.LoadSystemPrompt()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var o gatewayOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gateway{
		cfg:      cfg,
		guard:    NewGuard(),
		provider: provider,
		metrics:  o.metrics,
		logger:   logger,
	}
	if provider != nil {
		g.orch = NewOrchestrator(provider, cfg, prompt, o.sleeper, o.metrics, logger.Named("orchestrator"))
	}
	return g, nil
}

// Config returns the gateway configuration.
func (g *Gateway) Config() Config {
	return g.cfg
}

// Provider returns the configured backend provider, or nil.
func (g *Gateway) Provider() llm.Provider {
	return g.provider
}

// Ready reports whether generation requests can be served.
func (g *Gateway) Ready(_ context.Context) error {
	if g.provider == nil {
		return ErrNotConfigured
	}
	return nil
}

// HandleBody parses a raw JSON request body and answers it.
func (g *Gateway) HandleBody(ctx context.Context, body []byte) Outcome {
	req, f := ParseRequest(body, g.cfg.MaxMessageLength, g.cfg.MaxHistoryTurns)
	if f != nil {
		return g.finish(ctx, Failed(f))
	}
	return g.Handle(ctx, req)
}

// Handle answers a request. Exactly one Outcome is returned.
func (g *Gateway) Handle(ctx context.Context, req ConversationRequest) Outcome {
	message, f := ValidateMessage(req.Message, g.cfg.MaxMessageLength)
	if f != nil {
		return g.finish(ctx, Failed(f))
	}

	if sc, ok := g.guard.Match(message); ok {
		out := Success(sc.Answer)
		out.Shortcut = sc.Class
		return g.finish(ctx, out)
	}

	if g.orch == nil {
		return g.finish(ctx, Failed(newFailure(KindConfiguration, "", ErrNotConfigured)))
	}

	history := Sanitize(req.History, g.cfg.MaxMessageLength, g.cfg.MaxHistoryTurns)
	gen := g.orch.Generate(ctx, toMessages(history, message))

	var out Outcome
	if gen.Failure != nil {
		out = Failed(gen.Failure)
	} else {
		out = Interpret(gen.Response, g.cfg.MinAnswerLength)
	}
	out.Backend = gen.Backend
	out.Attempts = gen.Attempts
	return g.finish(ctx, out)
}

func (g *Gateway) finish(ctx context.Context, out Outcome) Outcome {
	g.metrics.observeOutcome(out)

	fields := []zap.Field{
		zap.String("request_id", server.RequestID(ctx)),
		zap.String("outcome", out.Label()),
		zap.Int("attempts", len(out.Attempts)),
	}
	if out.Backend != "" {
		fields = append(fields, zap.String("backend", out.Backend))
	}

	switch {
	case out.Kind == OutcomeFailure && isValidation(out.Failure):
		g.logger.Debug("chat request rejected", append(fields, zap.Error(out.Failure))...)
	case out.Kind == OutcomeFailure && out.Failure != nil:
		fields = append(fields, zap.Error(out.Failure))
		for _, a := range out.Attempts {
			g.logger.Debug("backend attempt",
				zap.String("request_id", server.RequestID(ctx)),
				zap.String("backend", a.Backend),
				zap.Int("http_status", a.HTTPStatus),
				zap.String("result", a.Result),
				zap.String("message", a.Message),
				zap.Duration("duration", a.Duration),
			)
		}
		g.logger.Warn("chat request failed", fields...)
	case out.Kind == OutcomeTruncated:
		g.logger.Info("chat answer looked truncated", fields...)
	default:
		g.logger.Debug("chat request answered", fields...)
	}
	return out
}

func isValidation(f *Failure) bool {
	return f != nil && (f.Kind == KindEmptyInput || f.Kind == KindTooLong)
}

func toMessages(history []ChatTurn, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		role := llm.RoleUser
		if t.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}
