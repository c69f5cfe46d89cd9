package main

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"finch/internal/api"
	"finch/internal/render"
	"finch/internal/storage"
)

var (
	runAddr        string
	runMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Start the roster server",
	Long: `Start the HTTP server. path (default: the working directory) must contain the
templates/ and static/ directories. Pending migrations are applied before listening.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runAddr, "addr", "", "Address to listen on (overrides server.addr)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "",
		"Address for /metrics and /health (overrides server.metrics_addr)")
}

func runServer(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if runAddr != "" {
		cfg.Server.Addr = runAddr
	}
	if runMetricsAddr != "" {
		cfg.Server.MetricsAddr = runMetricsAddr
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Debug("Loaded configuration", "path", cfgPath)

	ctx := cmd.Context()
	db, err := storage.Open(ctx, cfg.DBURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	theme := cfg.Theme
	templates, err := render.New(filepath.Join(root, "templates"), render.Options{
		Extensions: []string{".html", ".tmpl"},
		Funcs:      template.FuncMap{"theme": func() string { return theme }},
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		Addr:            cfg.Server.Addr,
		MetricsAddr:     cfg.Server.MetricsAddr,
		StaticDir:       filepath.Join(root, "static"),
		ReloadTemplates: cfg.Templates.Reload,
		QueryTimeout:    cfg.QueryTimeout(),
		DefaultPageSize: cfg.Pagination.DefaultSize,
		MaxPageSize:     cfg.Pagination.MaxSize,
	}, api.Deps{
		Teams:     storage.NewTeamRepository(db),
		Templates: templates,
		Store:     db.Conn(),
	}, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "finch listening on http://%s\n", cfg.Server.Addr)
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
	}

	return nil
}
