package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/GiftScout/internal/pkg/config"
	"github.com/ManuelReschke/GiftScout/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Loading configuration: %v", err)
	}

	source, database, err := migrationTarget(cfg.DB, env.GetEnv("MIGRATIONS_PATH", ""))
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.DB.Driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.SQLitePath), 0o755); err != nil {
			log.Fatalf("Creating sqlite directory: %v", err)
		}
	}
	log.Printf("Migrating %s from %s", describe(cfg.DB), source)

	m, err := migrate.New(source, database)
	if err != nil {
		log.Fatalf("Could not initialise migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Closing migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	if err := run(m, command, os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(1)
		}
		log.Fatalf("%v", err)
	}
}

var errUsage = errors.New("unknown command")

// migrationTarget returns the source and database URLs for cfg. An empty dir
// selects migrations/<driver>.
func migrationTarget(cfg config.DatabaseConfig, dir string) (string, string, error) {
	if dir == "" {
		dir = filepath.Join("migrations", cfg.Driver)
	}
	source := "file://" + filepath.ToSlash(dir)

	switch cfg.Driver {
	case config.DriverMySQL:
		return source, fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	case config.DriverSQLite:
		return source, "sqlite://" + filepath.ToSlash(cfg.SQLitePath), nil
	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func describe(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return "sqlite " + cfg.SQLitePath
	}
	return fmt.Sprintf("mysql %s@%s:%s/%s", cfg.User, cfg.Host, cfg.Port, cfg.Name)
}

// migrator is the part of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (uint, bool, error)
}

func run(m migrator, command string, args []string) error {
	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Println("No change: database is up to date")
		case err != nil:
			return fmt.Errorf("running migrations: %w", err)
		default:
			log.Println("Migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("rolling back the last migration: %w", err)
		}
		log.Println("Last migration rolled back")

	case "goto":
		if len(args) < 1 {
			return errors.New("goto needs a version number")
		}
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Printf("No change: database is already at version %d", version)
		case err != nil:
			return fmt.Errorf("migrating to version %d: %w", version, err)
		default:
			log.Printf("Migrated to version %d", version)
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Println("No migrations have been applied yet")
		case err != nil:
			return fmt.Errorf("reading the migration version: %w", err)
		default:
			suffix := ""
			if dirty {
				suffix = " (dirty)"
			}
			log.Printf("Current migration version: %d%s", version, suffix)
		}

	default:
		return errUsage
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current migration version")
	fmt.Println()
	fmt.Println("DB_DRIVER selects mysql or sqlite (default), reading migrations/<driver>")
	fmt.Println("unless MIGRATIONS_PATH is set.")
}
