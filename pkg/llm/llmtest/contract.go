// Package llmtest provides shared contract tests that verify any
// llm.Provider implementation behaves correctly. Every provider's test
// file should call TestProviderContract to ensure conformance.
//
// The factory is expected to point the provider at a backend (usually an
// httptest server) that knows the model "contract-model", answers any
// conversation with non-empty text, and reports other models as not found.
package llmtest

import (
	"context"
	"testing"

	"github.com/HerbHall/chatgate/pkg/llm"
)

// ContractModel is the model identifier the backend under test must accept.
const ContractModel = "contract-model"

// TestProviderContract runs a suite of behavioral contract tests against
// any llm.Provider implementation. Call this from each provider's _test.go:
//
//	func TestContract(t *testing.T) {
//	    srv := mockBackend(t)
//	    llmtest.TestProviderContract(t, func() llm.Provider { return newTestProvider(t, srv.URL) })
//	}
func TestProviderContract(t *testing.T, factory func() llm.Provider) {
	t.Helper()

	t.Run("Generate_returns_candidate_text", func(t *testing.T) {
		p := factory()
		resp, err := p.Generate(context.Background(), "Hola", llm.WithModel(ContractModel))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if resp == nil {
			t.Fatal("Generate() returned nil response")
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Text() == "" {
			t.Error("Generate() returned no candidate text")
		}
	})

	t.Run("Chat_with_conversation_history", func(t *testing.T) {
		p := factory()
		messages := []llm.Message{
			{Role: llm.RoleUser, Content: "¿Dónde queda el humedal?"},
			{Role: llm.RoleAssistant, Content: "En Santo Domingo, Región de Valparaíso."},
			{Role: llm.RoleUser, Content: "¿Qué aves puedo ver?"},
		}
		resp, err := p.Chat(context.Background(), messages,
			llm.WithModel(ContractModel),
			llm.WithSystemInstruction("Responde en español."),
		)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Text() == "" {
			t.Error("Chat() returned no candidate text")
		}
	})

	t.Run("Unknown_model_is_classified", func(t *testing.T) {
		p := factory()
		_, err := p.Generate(context.Background(), "Hola", llm.WithModel("nonexistent-model-12345"))
		if err == nil {
			t.Fatal("Generate() with unknown model should fail")
		}
		if !llm.IsModelNotFoundError(err) {
			t.Errorf("expected model_not_found, got %v", err)
		}
	})

	t.Run("Cancelled_context_is_a_timeout", func(t *testing.T) {
		p := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Generate(ctx, "Hola", llm.WithModel(ContractModel))
		if err == nil {
			t.Fatal("Generate() with cancelled context should return error")
		}
		if !llm.IsTimeoutError(err) {
			t.Errorf("expected timeout classification, got %v", err)
		}
	})

	t.Run("Chat_empty_messages_returns_error", func(t *testing.T) {
		p := factory()
		_, err := p.Chat(context.Background(), nil, llm.WithModel(ContractModel))
		if err == nil {
			t.Error("Chat() with nil messages should return error")
		}
	})

	t.Run("HealthReporter_if_implemented", func(t *testing.T) {
		p := factory()
		hr, ok := p.(llm.HealthReporter)
		if !ok {
			t.Skip("Provider does not implement HealthReporter")
		}
		if err := hr.Heartbeat(context.Background()); err != nil {
			t.Errorf("Heartbeat() error = %v", err)
		}
		models, err := hr.ListModels(context.Background())
		if err != nil {
			t.Fatalf("ListModels() error = %v", err)
		}
		if len(models) == 0 {
			t.Error("ListModels() returned empty list")
		}
	})
}
