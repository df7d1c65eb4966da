package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llm-chat/internal/config"
	"llm-chat/internal/llm"
	"llm-chat/internal/logging"
	"llm-chat/internal/web"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	port    string
)

// rootCmd runs the chat service.
var rootCmd = &cobra.Command{
	Use:           "chatservice",
	Short:         "Streaming LLM chat service",
	Long:          `chatservice serves a browser chat front end and streams model replies from /api/chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides server.port)")
}

// main is the entry point for the chat service.
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "chatservice:", err)
		os.Exit(1)
	}
}

// run wires every component from the loaded configuration and serves until ctx is done.
func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	// The inference client is the only external dependency.
	inference, err := llm.NewClient(cfg.Backend)
	if err != nil {
		return errors.Wrap(err, "could not create inference client")
	}

	// Inject client into the service
	chatService := llm.NewService(inference, cfg.Chat)

	// Inject service into the handler
	chatHandler := llm.NewHandler(chatService, logger)

	assets, err := web.NewAssetHandler(cfg.Assets)
	if err != nil {
		return err
	}

	router := web.NewRouter(chatHandler, assets, logger)

	logger.Info().
		Str("provider", cfg.Backend.Provider).
		Str("model", cfg.Chat.ModelID).
		Int("max_tokens", cfg.Chat.MaxTokens).
		Msg("chat service configured")

	return web.NewServer(cfg.Server.Port, router, cfg.Server.ShutdownTimeout, logger).Run(ctx)
}
