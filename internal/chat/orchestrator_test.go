package chat

import (
	"context"
	"testing"
	"time"

	"github.com/HerbHall/chatgate/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var question = []llm.Message{{Role: llm.RoleUser, Content: "¿Qué aves hay?"}}

func newTestOrchestrator(p llm.Provider, cfg Config, s Sleeper) *Orchestrator {
	return NewOrchestrator(p, cfg, DefaultSystemPrompt, s, nil, zap.NewNop())
}

func TestOrchestrator_SuccessFirstAttempt(t *testing.T) {
	p := newFakeProvider(map[string][]step{"A": {ok(completeAnswer)}})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, "A", gen.Backend)
	assert.Equal(t, []string{"A"}, p.Calls())
	require.Len(t, gen.Attempts, 1)
	assert.Equal(t, 200, gen.Attempts[0].HTTPStatus)
	assert.Equal(t, "success", gen.Attempts[0].Result)
}

func TestOrchestrator_SendsGenerationSettings(t *testing.T) {
	p := newFakeProvider(map[string][]step{"A": {ok(completeAnswer)}})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	o.Generate(context.Background(), question)

	require.Len(t, p.configs, 1)
	got := p.configs[0]
	assert.Equal(t, "A", got.Model)
	assert.Equal(t, DefaultSystemPrompt, got.SystemInstruction)
	assert.Equal(t, 0.15, got.Temperature)
	assert.Equal(t, 340, got.MaxTokens)
	assert.Equal(t, 0.85, got.TopP)
	assert.Equal(t, 40, got.TopK)
}

func TestOrchestrator_NotFoundAdvancesWithoutRetry(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {notFound()},
		"B": {ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, testConfig(), s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []string{"A", "B"}, p.Calls())
	assert.Equal(t, "B", gen.Backend)
	assert.Empty(t, s.Delays(), "not-found must not back off")
	assert.Equal(t, 404, gen.Attempts[0].HTTPStatus)
}

func TestOrchestrator_RateLimitHonorsHintThenFallsBack(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {rateLimited(3 * time.Second)},
		"B": {ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, testConfig(), s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	// One initial attempt plus MaxRetriesPerBackend retries on A, then B.
	assert.Equal(t, []string{"A", "A", "A", "B"}, p.Calls())
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, s.Delays())
}

func TestOrchestrator_ServerErrorHonorsHint(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackModels = nil
	overloaded := step{err: llm.NewProviderError(llm.ErrCodeServerError, "The model is overloaded", nil).
		WithStatus(503).WithRetryAfter(3 * time.Second)}
	p := newFakeProvider(map[string][]step{
		"A": {overloaded, ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []string{"A", "A"}, p.Calls())
	assert.Equal(t, []time.Duration{3 * time.Second}, s.Delays())
}

func TestOrchestrator_ServerErrorHintIsClamped(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackModels = nil
	cfg.RetryHintCeiling = 2 * time.Second
	overloaded := step{err: llm.NewProviderError(llm.ErrCodeServerError, "Service unavailable", nil).
		WithStatus(503).WithRetryAfter(30 * time.Second)}
	p := newFakeProvider(map[string][]step{
		"A": {overloaded, ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []time.Duration{2 * time.Second}, s.Delays())
}

func TestOrchestrator_RetryHintIsClamped(t *testing.T) {
	cfg := testConfig()
	cfg.RetryHintCeiling = 5 * time.Second
	cfg.MaxRetriesPerBackend = 1
	p := newFakeProvider(map[string][]step{
		"A": {rateLimited(time.Minute), ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []time.Duration{5 * time.Second}, s.Delays())
	assert.Equal(t, []string{"A", "A"}, p.Calls())
}

func TestOrchestrator_RateLimitWithoutHintUsesBackoff(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackModels = nil
	p := newFakeProvider(map[string][]step{"A": {rateLimited(0)}})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindQuotaExceeded, gen.Failure.Kind)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, s.Delays())
}

func TestOrchestrator_BackoffIsCapped(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackModels = nil
	cfg.MaxRetriesPerBackend = 5
	p := newFakeProvider(map[string][]step{"A": {serverError()}})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	o.Generate(context.Background(), question)

	assert.Equal(t, []time.Duration{
		500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second,
	}, s.Delays())
}

func TestOrchestrator_TransientErrorThenSuccess(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {serverError(), ok(completeAnswer)},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []string{"A", "A"}, p.Calls())
	require.Len(t, gen.Attempts, 2)
	assert.Equal(t, llm.ErrCodeServerError, gen.Attempts[0].Result)
}

func TestOrchestrator_AuthenticationAbortsSearch(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {authError()},
		"B": {ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, testConfig(), s)

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindAuthentication, gen.Failure.Kind)
	assert.Equal(t, []string{"A"}, p.Calls())
	assert.Empty(t, s.Delays())
}

func TestOrchestrator_InvalidRequestIsRejected(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {{err: llm.NewProviderError(llm.ErrCodeInvalidRequest, "Invalid JSON payload received", nil).WithStatus(400)}},
		"B": {ok(completeAnswer)},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindRejected, gen.Failure.Kind)
	assert.Equal(t, "Invalid JSON payload received", gen.Failure.Detail)
	assert.Equal(t, []string{"A"}, p.Calls())
}

func TestOrchestrator_MalformedBodyIsEmptyExtraction(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {{err: llm.NewProviderError(llm.ErrCodeMalformedResponse, "decode generate response", nil)}},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindEmptyExtraction, gen.Failure.Kind)
	assert.Equal(t, []string{"A"}, p.Calls())
}

func TestOrchestrator_AllRateLimitedIsQuota(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {rateLimited(time.Second)},
		"B": {rateLimited(time.Second)},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindQuotaExceeded, gen.Failure.Kind)
	assert.Len(t, p.Calls(), 6)
	assert.Len(t, gen.Attempts, 6)
}

func TestOrchestrator_NotFoundBackendDoesNotCountForQuota(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {notFound()},
		"B": {rateLimited(time.Second)},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindQuotaExceeded, gen.Failure.Kind)
}

func TestOrchestrator_MixedFailuresIsNoUsableBackend(t *testing.T) {
	p := newFakeProvider(map[string][]step{
		"A": {rateLimited(time.Second)},
		"B": {serverError()},
	})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindNoUsableBackend, gen.Failure.Kind)
	assert.Equal(t, "The model is overloaded", gen.Failure.Detail)
	assert.ErrorContains(t, gen.Failure, "A: ")
	assert.ErrorContains(t, gen.Failure, "B: ")
}

func TestOrchestrator_AllNotFoundIsNoUsableBackend(t *testing.T) {
	p := newFakeProvider(map[string][]step{})
	o := newTestOrchestrator(p, testConfig(), &recordingSleeper{})

	gen := o.Generate(context.Background(), question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindNoUsableBackend, gen.Failure.Kind)
	assert.Equal(t, []string{"A", "B"}, p.Calls())
}

func TestOrchestrator_AttemptTimeoutIsRetried(t *testing.T) {
	cfg := testConfig()
	cfg.AttemptTimeout = 20 * time.Millisecond
	cfg.MaxRetriesPerBackend = 1
	p := newFakeProvider(map[string][]step{
		"A": {{block: true}, ok(completeAnswer)},
	})
	s := &recordingSleeper{}
	o := newTestOrchestrator(p, cfg, s)

	gen := o.Generate(context.Background(), question)

	require.Nil(t, gen.Failure)
	assert.Equal(t, []string{"A", "A"}, p.Calls())
	assert.Equal(t, llm.ErrCodeTimeout, gen.Attempts[0].Result)
	assert.Len(t, s.Delays(), 1)
}

func TestOrchestrator_ParentCancelDuringAttempt(t *testing.T) {
	cfg := testConfig()
	p := newFakeProvider(map[string][]step{"A": {{block: true}}})
	o := newTestOrchestrator(p, cfg, &recordingSleeper{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	gen := o.Generate(ctx, question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindCanceled, gen.Failure.Kind)
	assert.Equal(t, []string{"A"}, p.Calls())
}

func TestOrchestrator_CancelDuringBackoff(t *testing.T) {
	p := newFakeProvider(map[string][]step{"A": {serverError()}})
	ctx, cancel := context.WithCancel(context.Background())
	s := SleeperFunc(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	})
	o := newTestOrchestrator(p, testConfig(), s)

	gen := o.Generate(ctx, question)

	require.NotNil(t, gen.Failure)
	assert.Equal(t, KindCanceled, gen.Failure.Kind)
	assert.Equal(t, []string{"A"}, p.Calls())
}

func TestTimerSleeper(t *testing.T) {
	var s timerSleeper

	start := time.Now()
	require.NoError(t, s.Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Sleep(ctx, time.Hour), context.Canceled)
}
