package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/client"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/config"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/gateway"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/logging"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/repository"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/reveal"
)

var (
	// Global flags
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "campusai",
	Short: "CampusAI - chat with your campus assistant",
	Long: `CampusAI keeps a list of chats, sends your questions and files to the
CampusAI gateway and reveals the replies as they arrive.

Run "campusai ui" for the browser client, or use the chats and send
commands straight from the terminal. Chats are shared between both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		// The terminal commands print replies on stdout, so they only log
		// errors unless asked to.
		level := "error"
		if verbose {
			level = "debug"
		} else if cmd.Name() == "ui" {
			level = cfg.LogLevel
		}
		logger = logging.New(level, cfg.LogFilePath, cfg.IsProduction())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// openClient connects the configured store and gateway and opens the chat
// controller. The returned function releases both.
func openClient(ctx context.Context) (*client.Client, func(), error) {
	blobs, err := repository.OpenBlobStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	store := repository.NewStateStore(blobs, cfg.StorageKey, logger)

	gw := gateway.NewClient(cfg.GatewayURL, cfg.UpstreamTimeout+cfg.RateLimitRetryDelay, logger)

	opts := []client.Option{}
	if cfg.IdentityReply != "" {
		opts = append(opts, client.WithIdentityReply(cfg.IdentityReply))
	}
	c := client.New(store, gw, reveal.New(cfg.RevealInterval), logger, opts...)
	if err := c.Open(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load chats: %w", err)
	}

	return c, func() {
		c.Close()
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}, nil
}
