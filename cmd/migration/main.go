package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rogeliolopezcamara/quiniela-app/db"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/postgres"
)

var errUsage = errors.New("usage")

// migrator is the part of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	dbURL, err := databaseURL()
	if err != nil {
		log.Fatal(err)
	}

	m, sourceURL, err := newMigrator(dbURL)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	log.Printf("migration source: %s", sourceURL)

	err = run(m, os.Args[1:], os.Stdout)
	closeMigrator(m)
	switch {
	case errors.Is(err, errUsage):
		printUsage()
		os.Exit(2)
	case err != nil:
		log.Fatal(err)
	}
}

// databaseURL reads DB_URL (DATABASE_URL on older deployments) and applies
// the same lib/pq options as the API server.
func databaseURL() (string, error) {
	raw := strings.TrimSpace(os.Getenv("DB_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw == "" {
		return "", errors.New("DB_URL is required")
	}

	binaryParams := false
	if v := strings.TrimSpace(os.Getenv("DB_BINARY_PARAMETERS")); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
		}
		binaryParams = parsed
	}
	return postgres.NormalizeDSN(raw, postgres.DSNOptions{
		SSLMode:          os.Getenv("DB_SSLMODE"),
		BinaryParameters: binaryParams,
	}), nil
}

func run(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	rest := args[1:]

	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), out); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	case "down":
		steps, err := parseSteps(rest)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-steps), out); err != nil {
			return fmt.Errorf("roll back %d migration(s): %w", steps, err)
		}
	case "version":
	case "force":
		if len(rest) == 0 {
			return errors.New("force requires a version argument")
		}
		version, err := parseVersion(rest[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
	case "goto", "migrate":
		if len(rest) == 0 {
			return errors.New("goto requires a target version argument")
		}
		target, err := parseTarget(rest[0])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Migrate(target), out); err != nil {
			return fmt.Errorf("migrate to %d: %w", target, err)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return printVersion(m, out)
}

func printVersion(m migrator, out io.Writer) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		_, _ = fmt.Fprintln(out, "version: none")
		_, _ = fmt.Fprintln(out, "dirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	_, _ = fmt.Fprintf(out, "version: %d\n", version)
	_, _ = fmt.Fprintf(out, "dirty: %t\n", dirty)
	return nil
}

func ignoreNoChange(err error, out io.Writer) error {
	if errors.Is(err, migrate.ErrNoChange) {
		_, _ = fmt.Fprintln(out, "no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	// -1 clears the version table, as migrate's own CLI allows.
	if value < -1 {
		return 0, fmt.Errorf("version must be >= -1")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}

// newMigrator reads migrations from MIGRATIONS_DIR when set and from the
// files embedded in the binary otherwise.
func newMigrator(dbURL string) (*migrate.Migrate, string, error) {
	dir, err := resolveMigrationsDir()
	if err != nil {
		return nil, "", err
	}
	if dir != "" {
		sourceURL := "file://" + filepath.ToSlash(dir)
		m, err := migrate.New(sourceURL, dbURL)
		return m, sourceURL, err
	}

	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	return m, "embedded", err
}

func resolveMigrationsDir() (string, error) {
	for _, key := range []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"} {
		candidate := strings.TrimSpace(os.Getenv(key))
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", key, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%s=%s is not a directory", key, candidate)
		}
		return abs, nil
	}
	return "", nil
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", name)
	fmt.Fprintln(os.Stderr, "reads DB_URL (or DATABASE_URL); MIGRATIONS_DIR overrides the embedded migrations")
	fmt.Fprintln(os.Stderr, "examples:")
	for _, example := range []string{"up", "down 1", "version", "force 3", "goto 2"} {
		fmt.Fprintf(os.Stderr, "  %s %s\n", name, example)
	}
}
