package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glebk/worklog-bot/internal/app"
	"github.com/glebk/worklog-bot/internal/config"
	"github.com/glebk/worklog-bot/internal/repository/postgres"
)

var configFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "worklog-bot",
		Short: "Chat bot that tracks working sessions and logs what you get done",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), configFlag)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to YAML config file (env vars win)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), configFlag)
		},
	}
	rootCmd.AddCommand(runCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate only applies to the postgres driver, configured driver is %q", cfg.Database.Driver)
			}
			return postgres.RunMigrations(cfg.Database.DSN, cfg.Database.MigrationsDir)
		},
	}
	rootCmd.AddCommand(migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
