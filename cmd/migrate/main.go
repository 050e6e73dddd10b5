package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/logger"
)

// command is a parsed migrate invocation. n is the step count for steps,
// the target version for goto and force.
type command struct {
	name string
	n    int
}

func parseCommand(args []string) (command, error) {
	if len(args) < 1 {
		return command{}, errors.New("missing command")
	}

	cmd := command{name: args[0]}
	switch cmd.name {
	case "up", "down", "version":
		return cmd, nil
	case "steps", "goto", "force":
		if len(args) < 2 {
			return command{}, fmt.Errorf("%s requires a number", cmd.name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid number %q", args[1])
		}
		if cmd.name == "steps" && n == 0 {
			return command{}, errors.New("steps must not be zero")
		}
		if cmd.name == "goto" && n < 1 {
			return command{}, errors.New("goto version must be positive")
		}
		if cmd.name == "force" && n < -1 {
			return command{}, errors.New("force version must be -1 or above")
		}
		cmd.n = n
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
}

// migrateLogger routes golang-migrate's progress output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	var migrationDir string
	var verbose bool
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.BoolVar(&verbose, "v", false, "Log every applied migration")
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		printUsage()
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	m.Log = migrateLogger{log: log, verbose: verbose}

	if err := run(m, cmd, log); err != nil {
		log.Fatal().Err(err).Str("command", cmd.name).Msg("Migration failed")
	}

	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Close failed")
	}
}

func run(m *migrate.Migrate, cmd command, log zerolog.Logger) error {
	var err error
	switch cmd.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(cmd.n)
	case "goto":
		err = m.Migrate(uint(cmd.n))
	case "force":
		err = m.Force(cmd.n)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info().Msg("No migration applied yet")
			return nil
		}
		if verr != nil {
			return verr
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("command", cmd.name).Msg("No change")
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	log.Info().Str("command", cmd.name).Uint("version", version).Bool("dirty", dirty).Msg("Migration applied")
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up            apply every pending migration")
	fmt.Fprintln(os.Stderr, "  down          roll back every migration")
	fmt.Fprintln(os.Stderr, "  steps N       apply N migrations, or roll back -N")
	fmt.Fprintln(os.Stderr, "  goto V        migrate up or down to version V")
	fmt.Fprintln(os.Stderr, "  version       print the current version")
	fmt.Fprintln(os.Stderr, "  force V       set the version without running migrations (-1 clears it)")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
