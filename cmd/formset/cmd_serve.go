package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formset/internal/config"
	"github.com/goliatone/go-formset/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		configPath string
		addr       string
		basePath   string
	)

	cmd := &cobra.Command{
		Use:   "serve [definitions.yaml...]",
		Short: "Serve form rendering and replication over HTTP",
		Long: `Starts an HTTP server exposing:
  POST {base}/replicate                                 replicate an entry in posted markup
  GET  {base}/forms/{id}                                render a registered form
  GET  {base}/forms/{id}/formsets/{prefix}/entry?index=n render one formset entry

Definition files come from the config file and the arguments. SIGINT or SIGTERM
shuts the server down gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("base-path") {
				cfg.BasePath = basePath
			}
			cfg.AddDefinitions(args...)
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The root logger already runs at info, or debug with --verbose;
			// log_level can only raise it.
			logger := c.logger
			if level, _ := cfg.Level(); !c.verbose && level > zapcore.InfoLevel {
				logger = logger.WithOptions(zap.IncreaseLevel(level))
			}

			forms, err := cfg.LoadForms()
			if err != nil {
				return err
			}
			logger.Info("Loaded form definitions", zap.Int("forms", len(forms)))

			srv, err := server.New(cfg, forms, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Server config file (YAML)")
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "Listen address")
	cmd.Flags().StringVar(&basePath, "base-path", config.DefaultBasePath, "Mount path of the formset routes")
	return cmd
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
