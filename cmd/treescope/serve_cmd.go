package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/explanation/redisstore"
	"github.com/AlessandroCarella/treescope/explanation/sqlitestore"
	"github.com/AlessandroCarella/treescope/internal/config"
	"github.com/AlessandroCarella/treescope/internal/server"
)

type serveCmdConfig struct {
	*rootCmdConfig
	configPath string
}

func serveCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &serveCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explanation API",
		Long:  `Serve the explanation ingestion, selection and view-registration API over HTTP and WebSocket`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.run(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.configPath), "config", "c", "", "path to a YAML configuration file (TREESCOPE_* environment variables override it)")
	return cmd
}

func (scc *serveCmdConfig) run() error {
	cfg, err := config.Load(scc.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if !scc.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := scc.openStore(cfg)
	if err != nil {
		return err
	}

	srv := server.New(store)
	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.SetupRoutes(),
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("serving explanation API", "addr", cfg.Addr(), "store", cfg.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errs:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	srv.CloseWebSockets()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := store.Close(ctx); err != nil {
		return fmt.Errorf("closing session store: %w", err)
	}
	return nil
}

func (scc *serveCmdConfig) openStore(cfg *config.Config) (explanation.SessionStore, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		scc.Logf("Connecting session store to redis at %s...", cfg.RedisAddr)
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return redisstore.New(rc, cfg.RedisPrefix, explanation.JSONCodec{}), nil
	case config.StoreSQLite:
		scc.Logf("Opening session store on SQLite file %s...", cfg.SQLitePath)
		return sqlitestore.Open(cfg.SQLitePath, explanation.JSONCodec{})
	default:
		scc.Logf("Using in-memory session store...")
		return explanation.NewMemorySessionStore(), nil
	}
}
