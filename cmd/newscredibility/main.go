package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsCredibility/internal/app"
	"NewsCredibility/internal/config"
	"NewsCredibility/internal/logging"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "newscredibility",
		Short:         "Score news text against related coverage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (defaults to $NEWS_CREDIBILITY_CONFIG)")
	root.AddCommand(analyzeCMD(&cfgPath), headlinesCMD(&cfgPath), serveCMD(&cfgPath), migrateCMD(&cfgPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the application. Diagnostics go
// to stderr so stdout stays usable for command output.
func bootstrap(ctx context.Context, cfgPath string) (*app.Application, *slog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init application: %w", err)
	}
	return application, logger, nil
}

func closeApp(application *app.Application, logger *slog.Logger) {
	if err := application.Close(); err != nil {
		logger.Warn("close application", "error", err)
	}
}
