// In file: cmd/voiceservice/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/logger"
	"github.com/chengwenxing-cmd/VoiceService/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voiceservice",
		Short:         "Voice assistant intent recognition service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newRecognizeCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newRecognizeCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "recognize <text>",
		Short: "Run one utterance through the recognition pipeline and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.service.Recognize(ctx, service.RecognizeRequest{
				Text:      strings.Join(args, " "),
				SessionID: sessionID,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", service.DefaultSessionID, "session id")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := GetBuildInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "voiceservice %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
}

// bootstrap loads configuration and builds the logger.
func bootstrap() (*AppConfig, *zap.Logger, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// runServe is the composition root of the server: it loads configuration,
// initializes all services and runs the server until SIGINT/SIGTERM.
func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	buildInfo := GetBuildInfo()
	log.Info("🚀 Starting "+cfg.AppName,
		zap.String("version", buildInfo.Version),
		zap.String("commit", buildInfo.GitCommit))
	log.Info("✅ Configuration loaded.")

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("error while releasing resources", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.GinMode)
	engine := newEngine(NewIntentHandler(a.service, log), cfg, log)
	srv := &http.Server{Addr: cfg.Addr(), Handler: engine}
	return runServerWithGracefulShutdown(ctx, srv, log)
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("👂 Service is listening", zap.String("addr", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("👋 Server exited gracefully.")
	return nil
}
