package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/sitestock/backend/internal/infrastructure/config"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrationsDir string
	logLevel      string
	confirmDrop   bool
	log           *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "SiteStock database migration tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout", TimeFormat: "2006-01-02 15:04:05"})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		dir, err := migration.FindDir(migrationsDir)
		if err != nil {
			return err
		}
		migrationsDir = dir
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&migrationsDir, "path", "p", "", "migrations directory (default ./migrations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	dropCmd.Flags().BoolVar(&confirmDrop, "confirm", false, "really drop every database object")

	rootCmd.AddCommand(upCmd, downCmd, stepCmd, gotoCmd, versionCmd, forceCmd, dropCmd, createCmd, listCmd)
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
		return m.Up()
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
		return m.Down()
	}),
}

var stepCmd = &cobra.Command{
	Use:   "step <n>",
	Short: "Apply n migrations (negative n rolls back)",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(m *migration.Migrator, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}),
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a version",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(m *migration.Migrator, args []string) error {
		v, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.To(uint(v))
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
		status, err := m.Status()
		if err != nil {
			return err
		}
		if !status.Applied {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current schema version", zap.Uint("version", status.Version), zap.Bool("dirty", status.Dirty))
		return nil
	}),
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Record a version without running SQL (clears a dirty schema)",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(m *migration.Migrator, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	}),
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every database object",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDrop {
			return fmt.Errorf("refusing to drop without --confirm")
		}
		return nil
	},
	RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
		return m.Drop()
	}),
}

var createCmd = &cobra.Command{
	Use:   "create <name> [description]",
	Short: "Create an empty up/down migration pair",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		f, err := migration.Create(migrationsDir, args[0], description, time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", f.UpPath), zap.String("down", f.DownPath))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List migrations on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := migration.List(migrationsDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			rollback := "yes"
			if f.DownPath == "" {
				rollback = "no"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s rollback=%s\n", f.Version, f.Name, rollback)
		}
		return nil
	},
}

// withMigrator opens the configured database for commands that touch it
func withMigrator(run func(m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Database.Driver == "sqlite" {
			return fmt.Errorf("sql migrations target postgres; sqlite schemas are created by auto-migrate")
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		m, err := migration.New(db, migrationsDir, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warn("Close migrator", zap.Error(err))
			}
		}()

		log.Info("Running migration command", zap.String("command", cmd.Name()), zap.String("path", migrationsDir))
		return run(m, args)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error("Migration command failed", zap.Error(err))
			_ = log.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
