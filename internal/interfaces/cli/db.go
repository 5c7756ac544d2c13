package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/TextCoder/internal/bootstrap"
	"github.com/turtacn/TextCoder/internal/infrastructure/database/postgres"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// NewDBCmd manages the run store schema.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL run store",
	}

	var steps int
	down := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(mg *postgres.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				return printMigrationStatus(cmd, mg)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(mg *postgres.Migrator) error {
					if err := mg.Up(); err != nil {
						return err
					}
					return printMigrationStatus(cmd, mg)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(mg *postgres.Migrator) error {
					return printMigrationStatus(cmd, mg)
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	dc := cliCtx.Config.Database
	if !dc.Enabled {
		return errors.New(errors.ErrCodeConfigInvalid, "database is disabled in the config")
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	conn, err := postgres.NewConnection(ctx, bootstrap.PostgresConfig(cliCtx.Config), cliCtx.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer conn.Close()

	mg, err := postgres.NewMigrator(conn, dc.MigrationPath)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printMigrationStatus(cmd *cobra.Command, mg *postgres.Migrator) error {
	version, dirty, err := mg.Status()
	if err != nil {
		return err
	}
	cliCtx, _ := GetCLIContext(cmd)
	if cliCtx != nil && cliCtx.OutputFormat == FormatJSON {
		return printJSON(cmd, map[string]any{"version": version, "dirty": dirty})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%v)\n", version, dirty)
	return nil
}

//Personal.AI order the ending
