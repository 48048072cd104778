package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/handlers"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/router"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/websocket"
)

// uiCmd serves the browser client
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Serve the browser client",
	Long: `Serves the CampusAI page on UI_PORT. The page talks to this process,
which keeps the chats and forwards each turn to the gateway at GATEWAY_URL.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, closeClient, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient()

	wsHub := websocket.NewHub(logger)
	uiHandler := handlers.NewUIHandler(c, wsHub, cfg.Location(), cfg.MaxUploadSize, logger)
	unsubscribe := c.Subscribe(uiHandler.Forward)
	defer unsubscribe()

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.UIPort),
		Handler:     router.NewUI(uiHandler, wsHub, logger),
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("✓ CampusAI UI ready",
		zap.String("url", fmt.Sprintf("http://localhost:%s", cfg.UIPort)),
		zap.String("gateway", cfg.GatewayURL),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "CampusAI UI on http://localhost:%s\n", cfg.UIPort)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	wsHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
