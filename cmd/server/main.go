package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"revision-runtime/backend/internal/api"
	"revision-runtime/backend/internal/auth"
	"revision-runtime/backend/internal/config"
	"revision-runtime/backend/internal/doctest"
	"revision-runtime/backend/internal/logging"
	"revision-runtime/backend/internal/mcp"
	"revision-runtime/backend/internal/repository"
	"revision-runtime/backend/internal/services"
	"revision-runtime/backend/internal/tls"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve documentation and doctest endpoints for transformation revisions",
	Long: `Starts the revision runtime HTTP server.

Routes:
  GET  /api/v1/health
  GET  /api/v1/transformations/{id}/documentation
  POST /api/v1/transformations/{id}/doctest
  /mcp, /mcp/sse, /mcp/message  (MCP tools)`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to config file (default: ./config.yaml if present)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("configuration loading failed: %w", err)
	}

	logger, err := logging.New(logging.Options{Debug: cfg.Log.Debug, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		"environment", cfg.Environment,
		"use_keycloak", cfg.Auth.UseKeycloak,
		"auth_url", cfg.Auth.AuthURL,
		"realm", cfg.Auth.Realm,
		"doctest_python", cfg.Doctest.Python,
		"doctest_dir", cfg.Doctest.TempDir,
	)

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer dbPool.Close()

	store := repository.NewPostgresRevisionStore(dbPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logger.Info("Database connected")

	runner := doctest.NewPythonRunner(cfg.Doctest.Python, cfg.Doctest.Timeout)
	service := services.NewTransformationService(store, runner, cfg.Doctest.TempDir, logger)

	var verifier *auth.Verifier
	if cfg.Auth.UseKeycloak {
		verifier, err = auth.NewVerifier(ctx, auth.CredentialsFromConfig(cfg), logger)
		if err != nil {
			return fmt.Errorf("auth initialization failed: %w", err)
		}
		logger.Info("Bearer token verification enabled", "issuer", auth.CredentialsFromConfig(cfg).Issuer())
	} else {
		logger.Warn("Keycloak is disabled, API requests are not authenticated")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("revision-runtime"))

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(verifier.RequireBearer))
	api.RegisterHandlers(apiGroup, api.NewServer(service, store))
	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(service)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(verifier.RequireBearer(mcpHandlers)))
	e.Any("/mcp/*", echo.WrapHandler(verifier.RequireBearer(mcpHandlers)))
	logger.Info("MCP protocol handlers mounted")

	if cfg.TLS.Enable {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return errors.New("TLS enabled but cert/key file not provided")
		}
		created, err := tls.EnsureCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames)
		if err != nil {
			return fmt.Errorf("TLS certificate setup failed: %w", err)
		}
		if created {
			logger.Warn("Generated self-signed certificate", "cert_file", cfg.TLS.CertFile, "hostnames", cfg.TLS.Hostnames)
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Doctest.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}
		logger.Info("Server stopped gracefully")
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection", "host", cfg.DB.Host, "port", cfg.DB.Port, "name", cfg.DB.Name)

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
