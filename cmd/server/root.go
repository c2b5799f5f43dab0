package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/config"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/database"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/logging"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/services"
	"github.com/spf13/cobra"
)

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "advocate",
		Short:         "Messenger bot for reporting harassment and broadcasting news",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newPromoteCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// bootstrap loads configuration, installs the stdout logger and opens the
// shared database handle.
func bootstrap() (*config.Config, error) {
	cfg := config.Load()
	logging.Setup(logging.ParseLevel(cfg.LogLevel))

	if cfg.DBPassword == "" {
		slog.Warn("DB_PASSWORD is empty")
	}
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				slog.Error("database connection failed", "error", err)
				return err
			}
			defer database.Close()

			if err := database.Migrate(database.DB); err != nil {
				slog.Error("migration failed", "error", err)
				return err
			}
			slog.Info("migration completed", "tables", len(database.Models()))
			return nil
		},
	}
}

func newPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <facebookId> <role>",
		Short: "Set a user's role (USER, MODERATOR or NGO)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, role := args[0], strings.ToUpper(args[1])
			if !models.ValidRole(role) {
				return fmt.Errorf("unknown role %q", args[1])
			}
			if _, err := bootstrap(); err != nil {
				slog.Error("database connection failed", "error", err)
				return err
			}
			defer database.Close()

			ctx := context.Background()
			store := services.NewGormStore(database.DB)
			if _, err := store.EnsureUser(ctx, id); err != nil {
				return err
			}
			if err := store.SetRole(ctx, id, role); err != nil {
				return err
			}
			slog.Info("user role updated", "sender_id", id, "role", role)
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", id, role)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <facebookId>",
		Short: "Issue an admin API bearer token for a moderator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				slog.Error("database connection failed", "error", err)
				return err
			}
			defer database.Close()

			auth := services.NewAuthService(services.NewGormStore(database.DB), cfg.JWTSecret, cfg.JWTExpiry)
			token, exp, err := auth.IssueModeratorToken(context.Background(), args[0])
			if err != nil {
				return err
			}
			slog.Info("admin token issued", "sender_id", args[0], "expires_at", exp.Format(time.RFC3339))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
