package chat

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/HerbHall/chatgate/internal/server"
	"github.com/HerbHall/chatgate/pkg/llm"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the request body; history turns are capped anyway.
const maxBodyBytes = 64 << 10

// Handler exposes the gateway over HTTP.
type Handler struct {
	gw     *Gateway
	logger *zap.Logger
	admin  func(http.Handler) http.Handler
}

// NewHandler creates a Handler. admin wraps the diagnostic routes; when it is
// nil those routes are not mounted.
func NewHandler(gw *Gateway, logger *zap.Logger, admin func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gw: gw, logger: logger, admin: admin}
}

// RegisterRoutes mounts the chat routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", h.handleChat)
	mux.HandleFunc("POST /api/chat-humedal", h.handleChat)

	if h.admin == nil {
		h.logger.Info("admin chat routes disabled: no session secret configured")
		return
	}
	mux.Handle("GET /api/v1/admin/chat/config", h.admin(http.HandlerFunc(h.handleGetConfig)))
	mux.Handle("POST /api/v1/admin/chat/test", h.admin(http.HandlerFunc(h.handleTestConnection)))
	mux.Handle("GET /swagger/", h.admin(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
}

// handleChat answers one question.
//
//	@Summary		Ask the visitor assistant
//	@Description	Answers a question about the wetland. Opening hours and entrance fee questions get a fixed answer without calling the backend.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ConversationRequest	true	"Question and prior turns"
//	@Success		200		{object}	AnswerResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/chat [post]
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var out Outcome
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		f := newFailure(KindTooLong, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		f.Limit = h.gw.Config().MaxMessageLength
		out = h.gw.finish(r.Context(), Failed(f))
	case err != nil:
		h.logger.Debug("unreadable chat body", zap.Error(err))
		out = h.gw.HandleBody(r.Context(), nil)
	default:
		out = h.gw.HandleBody(r.Context(), body)
	}

	status, resp := MapOutcome(out)
	server.WriteJSON(w, status, resp)
}

// ConfigResponse describes the active gateway configuration. The credential
// itself is never included.
type ConfigResponse struct {
	Candidates           []string `json:"candidates"`
	CredentialConfigured bool     `json:"credential_configured"`
	MaxMessageLength     int      `json:"max_message_length"`
	MaxHistoryTurns      int      `json:"max_history_turns"`
	MaxRetriesPerBackend int      `json:"max_retries_per_backend"`
	AttemptTimeout       string   `json:"attempt_timeout"`
	RetryHintCeiling     string   `json:"retry_hint_ceiling"`
	Temperature          float64  `json:"temperature"`
	MaxOutputTokens      int      `json:"max_output_tokens"`
}

// TestResponse reports the result of a backend connectivity check.
type TestResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Models     []string          `json:"models,omitempty"`
	Candidates []CandidateStatus `json:"candidates,omitempty"`
}

// CandidateStatus reports whether a configured backend is offered by the provider.
type CandidateStatus struct {
	Model     string `json:"model"`
	Available bool   `json:"available"`
}

// handleGetConfig reports the active configuration.
//
//	@Summary		Chat gateway configuration
//	@Description	Returns the backend candidates and limits in effect. Requires an admin session cookie.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ConfigResponse
//	@Failure		401	{object}	server.ErrorBody
//	@Router			/admin/chat/config [get]
func (h *Handler) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := h.gw.Config()
	server.WriteJSON(w, http.StatusOK, ConfigResponse{
		Candidates:           cfg.Candidates(),
		CredentialConfigured: h.gw.Provider() != nil,
		MaxMessageLength:     cfg.MaxMessageLength,
		MaxHistoryTurns:      cfg.MaxHistoryTurns,
		MaxRetriesPerBackend: cfg.MaxRetriesPerBackend,
		AttemptTimeout:       cfg.AttemptTimeout.String(),
		RetryHintCeiling:     cfg.RetryHintCeiling.String(),
		Temperature:          cfg.Temperature,
		MaxOutputTokens:      cfg.MaxOutputTokens,
	})
}

// handleTestConnection checks connectivity to the backend provider.
//
//	@Summary		Test backend connection
//	@Description	Sends a heartbeat to the provider and reports which configured candidates it offers. Requires an admin session cookie.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	TestResponse
//	@Failure		401	{object}	server.ErrorBody
//	@Router			/admin/chat/test [post]
func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	provider := h.gw.Provider()
	if provider == nil {
		server.WriteJSON(w, http.StatusOK, TestResponse{Message: "no provider configured"})
		return
	}

	hr, ok := provider.(llm.HealthReporter)
	if !ok {
		server.WriteJSON(w, http.StatusOK, TestResponse{Message: "provider does not support health checks"})
		return
	}

	if err := hr.Heartbeat(r.Context()); err != nil {
		h.logger.Warn("backend heartbeat failed", zap.Error(err))
		server.WriteJSON(w, http.StatusOK, TestResponse{Message: "connection failed: " + err.Error()})
		return
	}

	models, err := hr.ListModels(r.Context())
	if err != nil {
		server.WriteJSON(w, http.StatusOK, TestResponse{Message: "list models failed: " + err.Error()})
		return
	}

	available := make(map[string]bool, len(models))
	for _, m := range models {
		available[m] = true
	}
	resp := TestResponse{Success: true, Message: "connected", Models: models}
	for _, c := range h.gw.Config().Candidates() {
		resp.Candidates = append(resp.Candidates, CandidateStatus{Model: c, Available: available[c]})
	}
	server.WriteJSON(w, http.StatusOK, resp)
}
