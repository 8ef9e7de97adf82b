package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nanobridge-dev/nanobridge/pkg/capability"
	"github.com/nanobridge-dev/nanobridge/pkg/config"
	"github.com/nanobridge-dev/nanobridge/pkg/llm"
	"github.com/nanobridge-dev/nanobridge/pkg/relay"
	"github.com/nanobridge-dev/nanobridge/pkg/session"
)

// NewExecutorCmd creates the executor command
func NewExecutorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "executor",
		Short: "Run a headless capability executor",
		Long: `Run a headless capability executor that connects to the bridge over its
WebSocket endpoint and serves capability requests against the configured
generative backend. Capabilities can be switched off individually; a disabled
capability is answered through the general prompting fallback.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecutor(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the YAML configuration file")

	return cmd
}

func runExecutor(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateExecutor(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	backend, err := llm.NewClientFromConfig(&cfg.LLM)
	if err != nil {
		return err
	}

	logger.Info("executor starting",
		zap.String("bridge_url", cfg.Relay.BridgeURL),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", backend.ModelName()))

	registry := session.NewRegistry(
		func(ctx context.Context, sc session.Config) (session.Conversation, error) {
			temperature := sc.Temperature
			if temperature == nil {
				temperature = cfg.LLM.Temperature
			}
			topK := sc.TopK
			if topK == nil {
				topK = cfg.LLM.TopK
			}
			return llm.NewChat(backend, sc.SystemPrompt, temperature, topK), nil
		},
		session.WithMaxIdle(cfg.Session.MaxIdle),
		session.WithSweepInterval(cfg.Session.SweepInterval),
		session.WithLogger(logger.Named("session")),
	)
	go registry.Run(ctx)

	providers := []capability.Provider{
		capability.NewWriterProvider(backend, config.Enabled(cfg.Executor.Write)),
		capability.NewSummarizerProvider(backend, config.Enabled(cfg.Executor.Summarize)),
		capability.NewTranslatorProvider(backend, config.Enabled(cfg.Executor.Translate)),
		capability.NewRewriterProvider(backend, config.Enabled(cfg.Executor.Rewrite)),
		capability.NewProofreaderProvider(backend, config.Enabled(cfg.Executor.Proofread)),
		capability.NewLanguageDetectorProvider(backend, config.Enabled(cfg.Executor.DetectLanguage)),
	}

	executor := capability.NewExecutor(registry, providers,
		capability.WithExecutorLogger(logger.Named("executor")))

	client := relay.NewClient(cfg.Relay.BridgeURL, executor,
		relay.WithReconnectInterval(cfg.Relay.ReconnectInterval),
		relay.WithClientLogger(logger.Named("relay")))

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
