package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daviddao/aurora/pkg/config"
	"github.com/daviddao/aurora/pkg/logger"
	"github.com/daviddao/aurora/pkg/store"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitConflict = 2 // delivery state transition refused
)

// codedError carries a specific exit code up to main.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &codedError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitError
}

// annotConfigOptional marks commands that may run before the file named
// by --config exists.
const annotConfigOptional = "aurora/config-optional"

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	db         string
	replica    string
	logLevel   string
	jsonOut    bool
}

// app holds shared state for all CLI subcommands.
type app struct {
	opts  rootOptions
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
	out   io.Writer
}

// setup resolves configuration (file, then environment, then flags) and
// builds the logger. It does not touch the database.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.opts.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			path = config.DefaultPath
		}
	} else if cmd.Annotations[annotConfigOptional] != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = a.opts.db
	}
	if flags.Changed("replica") {
		cfg.Replica = a.opts.replica
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.NewWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	a.out = cmd.OutOrStdout()
	return nil
}

// openStore opens the database, creating its directory if needed.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if dir := filepath.Dir(a.cfg.DB); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	s, err := store.New(a.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", a.cfg.DB, err)
	}
	a.log.Debug("database opened", zap.String("path", a.cfg.DB))
	a.store = s
	return s, nil
}

// Close releases the database connection and flushes the logger.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// requireReplica returns the configured replica ID.
func (a *app) requireReplica() (string, error) {
	if a.cfg.Replica == "" {
		return "", fmt.Errorf("no replica ID: pass --replica or set %s", config.EnvReplica)
	}
	return a.cfg.Replica, nil
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// truncate shortens s to n runes for one-line display.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
