package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/HerbHall/chatgate/internal/chat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newAskCmd(c *cli) *cobra.Command {
	var (
		historyPath string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question in-process, without starting the server",
		Long: `Runs a single question through the same pipeline the HTTP endpoint uses and
prints the answer. On failure the HTTP status the endpoint would have returned
is printed together with the visitor-facing message.

History, when given, is a JSON array of {"role": "user"|"assistant", "text": "..."}.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			body, err := askBody(strings.Join(args, " "), historyPath)
			if err != nil {
				return err
			}

			gw, err := rt.newGateway(prometheus.NewRegistry())
			if err != nil {
				return err
			}

			out := gw.HandleBody(cmd.Context(), body)
			if verbose {
				for _, a := range out.Attempts {
					fmt.Fprintf(cmd.ErrOrStderr(), "attempt backend=%s status=%d result=%s duration=%s\n",
						a.Backend, a.HTTPStatus, a.Result, a.Duration)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "outcome=%s backend=%s\n", out.Label(), out.Backend)
			}

			status, resp := chat.MapOutcome(out)
			switch r := resp.(type) {
			case chat.AnswerResponse:
				fmt.Fprintln(cmd.OutOrStdout(), r.Answer)
				return nil
			case chat.ErrorResponse:
				return fmt.Errorf("status %d: %s", status, r.Error)
			default:
				return fmt.Errorf("status %d", status)
			}
		},
	}
	cmd.Flags().StringVar(&historyPath, "history", "", "path to a JSON file with prior turns")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print attempt details to stderr")
	return cmd
}

// askBody builds the same request body a browser would post.
func askBody(question, historyPath string) ([]byte, error) {
	req := struct {
		Message string          `json:"message"`
		History json.RawMessage `json:"history,omitempty"`
	}{Message: question}

	if historyPath != "" {
		raw, err := os.ReadFile(historyPath)
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("history file %s is not valid JSON", historyPath)
		}
		req.History = raw
	}
	return json.Marshal(req)
}
