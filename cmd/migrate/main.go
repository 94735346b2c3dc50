package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	appmigrations "github.com/wolfman30/clinic-tenancy/migrations"
)

const usage = `usage: migrate [command]

Applies the tenant registry schema to DATABASE_URL.

commands:
  up              apply all pending migrations (default)
  down [n]        roll back n migrations (default 1)
  steps <n>       apply n migrations, or roll back when n is negative
  force <version> set the schema version without running migrations
  version         print the current schema version
`

var errUsage = errors.New("invalid arguments")

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		fmt.Print(usage)
		return
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("db driver: %v", err)
	}

	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		log.Fatalf("source driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := run(args, m, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.Fatal(err)
	}
}

func run(args []string, m migrator, out io.Writer) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "up":
		if len(args) != 0 {
			return fmt.Errorf("up takes no arguments: %w", errUsage)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Fprintln(out, "migrations complete")

	case "down":
		n := 1
		if len(args) > 1 {
			return fmt.Errorf("down takes at most one argument: %w", errUsage)
		}
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v <= 0 {
				return fmt.Errorf("down count %q must be a positive integer: %w", args[0], errUsage)
			}
			n = v
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
		fmt.Fprintf(out, "rolled back %d migration(s)\n", n)

	case "steps":
		if len(args) != 1 {
			return fmt.Errorf("steps requires a count: %w", errUsage)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n == 0 {
			return fmt.Errorf("steps count %q must be a non-zero integer: %w", args[0], errUsage)
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate steps %d: %w", n, err)
		}
		fmt.Fprintf(out, "applied %d step(s)\n", n)

	case "force":
		if len(args) != 1 {
			return fmt.Errorf("force requires a version: %w", errUsage)
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], errUsage)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Fprintf(out, "forced version to %d\n", version)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		if dirty {
			fmt.Fprintf(out, "version %d (dirty)\n", version)
		} else {
			fmt.Fprintf(out, "version %d\n", version)
		}

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	return nil
}
