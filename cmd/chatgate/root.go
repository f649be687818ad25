package main

import (
	"fmt"
	"net/http"

	"github.com/HerbHall/chatgate/internal/auth"
	"github.com/HerbHall/chatgate/internal/chat"
	"github.com/HerbHall/chatgate/internal/config"
	"github.com/HerbHall/chatgate/internal/llm/gemini"
	"github.com/HerbHall/chatgate/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	logger     *zap.Logger // Built from configuration when nil.
}

// app is the resolved configuration plus the process logger.
type app struct {
	v        *viper.Viper
	settings config.Settings
	secrets  config.Secrets
	logger   *zap.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatgate",
		Short: "Conversational gateway for the wetland visitor assistant",
		Long: `chatgate answers visitor questions through a hosted language model.

It validates each question, answers schedule and fee questions locally,
and otherwise walks an ordered list of model backends with bounded
retries until one produces a usable answer.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to configuration file")

	root.AddCommand(
		newServeCmd(c),
		newAskCmd(c),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration, secrets and the logger.
func (c *cli) load() (*app, error) {
	v, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, err
	}
	settings, err := config.Resolve(v, secrets)
	if err != nil {
		return nil, err
	}

	logger := c.logger
	if logger == nil {
		logger, err = config.NewLogger(v)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	return &app{v: v, settings: settings, secrets: secrets, logger: logger}, nil
}

// newGateway wires the provider and metrics into a chat gateway. Without a
// credential the gateway still serves shortcuts and answers everything else
// with a configuration error.
func (rt *app) newGateway(reg prometheus.Registerer) (*chat.Gateway, error) {
	var provider llm.Provider
	if rt.secrets.GeminiAPIKey != "" {
		p, err := gemini.New(rt.settings.Gemini, rt.secrets.GeminiAPIKey, rt.logger.Named("gemini"))
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		provider = p
	} else {
		rt.logger.Warn("GEMINI_API_KEY is not set; only local shortcut answers are available",
			zap.String("component", "chat"),
		)
	}

	return chat.NewGateway(rt.settings.Chat, provider, rt.logger.Named("chat"),
		chat.WithMetrics(chat.NewMetrics(reg)),
	)
}

// adminMiddleware returns the session guard for diagnostic routes, or nil
// when no session secret is configured.
func (rt *app) adminMiddleware() (func(http.Handler) http.Handler, error) {
	if rt.secrets.AdminSessionSecret == "" {
		return nil, nil
	}
	sessions, err := auth.NewSessionService(rt.secrets.AdminSessionSecret, rt.secrets.AdminEmail)
	if err != nil {
		return nil, err
	}
	return auth.Middleware(sessions, rt.logger.Named("auth")), nil
}
