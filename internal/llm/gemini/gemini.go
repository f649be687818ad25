package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HerbHall/chatgate/pkg/llm"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ llm.Provider       = (*Provider)(nil)
	_ llm.HealthReporter = (*Provider)(nil)
)

// Provider implements llm.Provider for Google Gemini using the generateContent REST API.
type Provider struct {
	apiKey     string
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a Gemini provider.
func New(cfg Config, apiKey string, logger *zap.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	def := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = def.APIVersion
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Generate creates a completion from a single prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Chat creates a completion from a conversation history. System messages are
// folded into the request's systemInstruction; assistant turns are sent with
// Gemini's "model" role.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	cfg := llm.ApplyOptions(opts...)

	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	req := generateRequest{
		GenerationConfig: &generationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxTokens,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
		},
	}

	var system []string
	if cfg.SystemInstruction != "" {
		system = append(system, cfg.SystemInstruction)
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(req.Contents) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "conversation has no user or model turns", nil)
	}
	if len(system) > 0 {
		req.SystemInstruction = &content{Parts: []part{{Text: strings.Join(system, "\n\n")}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	path := "/models/" + url.PathEscape(model) + ":generateContent"
	respBody, err := p.doPost(ctx, path, body)
	if err != nil {
		return nil, mapError(err)
	}
	defer respBody.Close()

	var resp generateResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		if ctx.Err() != nil {
			return nil, mapError(ctx.Err())
		}
		return nil, llm.NewProviderError(llm.ErrCodeMalformedResponse, "decode generate response", err).
			WithStatus(http.StatusOK)
	}

	out := &llm.Response{
		Model: model,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	for i := range resp.Candidates {
		c := &resp.Candidates[i]
		cand := llm.Candidate{FinishReason: mapFinishReason(c.FinishReason)}
		for _, pt := range c.Content.Parts {
			if pt.Thought || pt.Text == "" {
				continue
			}
			cand.Parts = append(cand.Parts, pt.Text)
		}
		out.Candidates = append(out.Candidates, cand)
	}

	p.logger.Debug("gemini generate complete",
		zap.String("model", model),
		zap.Int("candidates", len(out.Candidates)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}

// Heartbeat checks whether the Gemini API is reachable with the configured key.
func (p *Provider) Heartbeat(ctx context.Context) error {
	resp, err := p.doGet(ctx, "/models?pageSize=1")
	if err != nil {
		return mapError(err)
	}
	resp.Close()
	return nil
}

// ListModels returns the model IDs that support generateContent.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	body, err := p.doGet(ctx, "/models")
	if err != nil {
		return nil, mapError(err)
	}
	defer body.Close()

	var result listResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, llm.NewProviderError(llm.ErrCodeMalformedResponse, "decode list response", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		if len(m.SupportedGenerationMethods) > 0 && !contains(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.URL, "/") + "/" + p.cfg.APIVersion + path
}

// doPost sends an authenticated POST request and returns the response body.
func (p *Provider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req)
}

func (p *Provider) doGet(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(path), http.NoBody)
	if err != nil {
		return nil, err
	}
	return p.do(req)
}

func (p *Provider) do(req *http.Request) (io.ReadCloser, error) {
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, p.parseStatusError(resp)
	}

	return resp.Body, nil
}

// parseStatusError reads a google.rpc error body. The Retry-After header wins
// over a RetryInfo detail when both are present.
func (p *Provider) parseStatusError(resp *http.Response) *geminiStatusError {
	se := &geminiStatusError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), p.now()),
	}

	// Read a limited amount to avoid unbounded reads.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return se
	}

	var errResp errorResponse
	if err := json.Unmarshal(raw, &errResp); err != nil {
		return se
	}

	if errResp.Error.Message != "" {
		se.Message = errResp.Error.Message
	}
	se.Status = errResp.Error.Status
	for _, d := range errResp.Error.Details {
		switch {
		case strings.HasSuffix(d.Type, "google.rpc.ErrorInfo"):
			se.Reason = d.Reason
		case strings.HasSuffix(d.Type, "google.rpc.RetryInfo"):
			if se.RetryAfter > 0 {
				continue
			}
			if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
				se.RetryAfter = delay
			}
		}
	}
	return se
}

func mapFinishReason(r string) llm.FinishReason {
	switch r {
	case "":
		return llm.FinishUnspecified
	case "STOP":
		return llm.FinishStop
	case "MAX_TOKENS":
		return llm.FinishLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return llm.FinishSafety
	default:
		return llm.FinishOther
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// --- Gemini REST API types (internal) ---

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			Reason     string `json:"reason"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

type listResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}
