package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xiaoyuanzhu-com/tasktree/api"
	"github.com/xiaoyuanzhu-com/tasktree/config"
	"github.com/xiaoyuanzhu-com/tasktree/core"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/mcpserver"
	"github.com/xiaoyuanzhu-com/tasktree/server"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "tasktree",
		Short:   "Per-session task trees and work summaries for coding agents",
		Long:    "tasktree keeps a hierarchical TODO list per agent session and a small cache of work summaries.\nWithout a subcommand it serves MCP tools on stdin/stdout.",
		Version: Version,
		RunE:    runMCP,
		// Keep stdout clean for the MCP stream
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (overrides "+config.ConfigFileEnv+")")
	flags.Int("max-sessions", 0, "session cache capacity")
	flags.Int("max-work-infos", 0, "work info cache capacity")
	flags.String("log-level", "", "log level (debug, info, warn, error, disabled)")

	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools on stdin/stdout",
		RunE:  runMCP,
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "listen port")
	cmd.Flags().String("host", "", "listen host")

	return cmd
}

// loadConfig resolves env, config file and flags, in that order of precedence
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Get()
	if err := config.FileError(); err != nil {
		return nil, err
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-sessions") {
		cfg.MaxSessions, _ = cmd.Flags().GetInt("max-sessions")
	}
	if cmd.Flags().Changed("max-work-infos") {
		cfg.MaxWorkInfos, _ = cmd.Flags().GetInt("max-work-infos")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if f := cmd.Flags().Lookup("host"); f != nil && f.Changed {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}

	if cfg.MaxSessions <= 0 || cfg.MaxWorkInfos <= 0 {
		return nil, fmt.Errorf("cache capacities must be positive (sessions=%d, work infos=%d)", cfg.MaxSessions, cfg.MaxWorkInfos)
	}

	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, err := core.NewService(core.Config{
		MaxSessions:  cfg.MaxSessions,
		MaxWorkInfos: cfg.MaxWorkInfos,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create task store: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	mcpserver.Version = Version
	err = mcpserver.New(svc).Run(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(server.FromAppConfig(cfg))
	if err != nil {
		return err
	}
	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	ctx, cancel := signalContext()
	defer cancel()

	select {
	case err := <-errCh:
		// Listener failed before any shutdown was requested
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Shutdown server with timeout to close remaining HTTP connections
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
