package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"task-tracker/internal/app"
)

type rootOptions struct {
	envFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Team task tracker API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load before reading the environment (default .env if present)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newCleanupCommand(opts),
		newCreateAdminCommand(opts),
	)
	return cmd
}

// bootstrap loads configuration and wires the application. The caller owns
// the returned App and must Close it.
func bootstrap(opts *rootOptions) (*app.App, error) {
	cfg, err := app.LoadConfig(opts.envFile)
	if err != nil {
		return nil, err
	}

	logger, err := app.NewLogger(cfg.Server.Environment, os.Stdout)
	if err != nil {
		return nil, err
	}

	return app.New(cfg, logger)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event stream and scheduled cleanup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !skipMigrate {
				if err := a.Migrate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.Serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on startup")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Migrate()
		},
	}
}

func newCleanupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tasks older than the retention period once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.Cleanup.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d task(s) created before %s\n", deleted, a.Cleanup.Cutoff().Format("2006-01-02"))
			return nil
		},
	}
}

func newCreateAdminCommand(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("password is required (--password or ADMIN_PASSWORD)")
			}

			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Auth.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
