package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// DefaultDir is where the SQL migrations live relative to the repo root
const DefaultDir = "migrations"

// Status is the schema version recorded by golang-migrate
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Applied bool `json:"applied"`
}

// Migrator applies the SQL migrations to a postgres database
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New creates a Migrator over an open postgres handle
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	return newMigrator(m, log), nil
}

// NewFromURL creates a Migrator from a database URL
func NewFromURL(databaseURL, dir string, log *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(sourceURL(dir), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	return newMigrator(m, log), nil
}

func newMigrator(m *migrate.Migrate, log *zap.Logger) *Migrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{m: m, logger: log.Named("migrate")}
}

func sourceURL(dir string) string {
	return "file://" + filepath.ToSlash(dir)
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.finish("up", m.m.Up())
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	return m.finish("down", m.m.Down())
}

// Steps applies n migrations forward, or -n back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.finish(fmt.Sprintf("steps %d", n), m.m.Steps(n))
}

// To migrates up or down to version
func (m *Migrator) To(version uint) error {
	return m.finish(fmt.Sprintf("to %d", version), m.m.Migrate(version))
}

// Status returns the current schema version
func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: version, Dirty: dirty, Applied: true}, nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping every database object")
	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	return errors.Join(sourceErr, dbErr)
}

func (m *Migrator) finish(op string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already current", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	status, err := m.Status()
	if err != nil {
		return err
	}
	m.logger.Info("Migration finished",
		zap.String("op", op),
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}

// FindDir returns the first candidate directory that exists, falling back
// to DefaultDir next to the working directory or two levels above the
// executable.
func FindDir(candidates ...string) (string, error) {
	candidates = append(candidates, DefaultDir)
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "..", DefaultDir))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return filepath.Abs(c)
		}
	}
	return "", fmt.Errorf("no migrations directory found (tried %v)", candidates)
}
