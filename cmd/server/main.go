package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tradebot/internal/auth"
	"tradebot/internal/broker/ig"
	"tradebot/internal/config"
	"tradebot/internal/handlers"
	"tradebot/internal/logging"
	"tradebot/internal/server"
	"tradebot/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tradebot",
		Short:         "Dashboard backend proxying the IG Markets trading API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	serveCmd.Flags().String("config", "", "YAML config file (overrides CONFIG_FILE)")
	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serveCmd, versionCmd)
	// Running the binary bare starts the server.
	root.RunE = serveCmd.RunE
	root.Flags().AddFlagSet(serveCmd.Flags())
	return root
}

func serve(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("CONFIG_FILE", path)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		os.Setenv("PORT", port)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Errorf("Failed to set up logging: %v", err)
		return err
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("Invalid configuration")
		return err
	}
	if cfg.InsecureSecret() {
		log.Warn("JWT_SECRET is not set; using the insecure development default")
	}

	client, err := ig.New(ig.Options{
		DemoURL: cfg.IG.DemoURL,
		LiveURL: cfg.IG.LiveURL,
		Timeout: cfg.IG.Timeout,
		Logger:  log,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create IG client")
		return err
	}

	deps := handlers.NewDependencies().
		WithIG(client).
		WithTokens(auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)).
		WithAudit(services.NewAuditService(log, cfg.AuditCapacity)).
		WithLogger(log)

	log.WithFields(logrus.Fields{
		"version":     version,
		"ig_env":      cfg.IG.Environment,
		"demo_url":    cfg.IG.DemoURL,
		"live_url":    cfg.IG.LiveURL,
		"development": cfg.IsDevelopment,
	}).Info("TradeBot server configured")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, deps).Run(ctx); err != nil {
		log.WithError(err).Error("Server error")
		return err
	}
	return nil
}
