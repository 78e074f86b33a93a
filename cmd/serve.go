package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/httpapi"
)

const (
	defaultListenAddr      = ":8080"
	defaultJanitorInterval = time.Minute

	shutdownGrace = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default is :8080)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := newLogger(config)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the talvox server", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	orchestrator, err := newOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview orchestrator", zap.Error(err))
	}
	defer orchestrator.Close()

	if config.Interview != nil && config.Interview.IdleTimeout > 0 {
		orchestrator.StartJanitor(ctx, defaultJanitorInterval, config.Interview.IdleTimeout)
	}

	addr := config.Listen
	if addr == "" {
		addr = viper.GetString("listen")
	}
	if addr == "" {
		addr = defaultListenAddr
	}

	server := httpapi.New(orchestrator, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		logger.Fatal("http server failed", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
}
