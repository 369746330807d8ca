package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/continental/config"
	"github.com/minaorangina/continental/internal/logging"
	"github.com/minaorangina/continental/server"
	"github.com/minaorangina/continental/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	port          int
	dbPath        string
	discardWindow time.Duration
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "continental",
	Short: "Continental rummy game server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and websocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Port = port
		}
		if flags.Changed("db") {
			cfg.DBPath = dbPath
		}
		if flags.Changed("discard-window") {
			cfg.DiscardWindow = discardWindow
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 8000, "port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&dbPath, "db", "continental.db", "sqlite database file (overrides CONTINENTAL_DB)")
	serveCmd.Flags().DurationVar(&discardWindow, "discard-window", 5*time.Second, "how long players may ask for a discard (overrides DISCARD_WINDOW)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New("continental", cfg.LogLevel)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	s := server.NewServer(store.NewInMemoryGameStore(), server.ServerOpts{
		Stats:         db,
		Recorder:      db,
		DiscardWindow: cfg.DiscardWindow,
		CORSOrigins:   cfg.CORSOrigins,
		CommandRate:   cfg.CommandRate,
		CommandBurst:  cfg.CommandBurst,
		Logger:        logger,
	})
	s.Addr = cfg.Addr()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", s.Addr, "db", cfg.DBPath, "discard_window", cfg.DiscardWindow)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.New("continental", "error").Error("exiting", "err", err)
		os.Exit(1)
	}
}
