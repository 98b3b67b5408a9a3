package main

import (
	"fmt"
	"os"

	"github.com/911interpreters/portal/internal/api"
	"github.com/911interpreters/portal/internal/auth"
	"github.com/911interpreters/portal/internal/config"
	"github.com/911interpreters/portal/internal/session"
	sessionredis "github.com/911interpreters/portal/internal/session/redis"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Portal - customer client for the 911 Interpreters video service",
	Long: `Portal is the command-line customer client for the 911 Interpreters
on-demand interpretation service. It signs in to the customer backend,
browses interpreter availability by language, starts video and audio
calls, and reports on call history and usage.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app wires the pieces every command needs: configuration, logger, session
// store, backend client, and the auth manager on top of them.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	sessions session.Store
	client   *api.Client
	auth     *auth.Manager
}

// newApp loads configuration and builds the shared client stack.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	store, err := openSessionStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, cfg.APITimeout(), store, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: store,
		client:   client,
		auth:     auth.NewManager(client, store, logger),
	}, nil
}

// Close releases the session store.
func (a *app) Close() {
	if err := a.sessions.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close session store")
	}
}

func openSessionStore(cfg *config.Config, logger zerolog.Logger) (session.Store, error) {
	switch cfg.Session.Type {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file":
		return session.NewFileStore(cfg.Session.Path)
	case "redis":
		store, err := sessionredis.Open(cfg.Session.Redis, cfg.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis session store: %w", err)
		}
		logger.Debug().Str("host", cfg.Session.Redis.Host).Msg("Redis session store connected")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store type: %q", cfg.Session.Type)
	}
}
