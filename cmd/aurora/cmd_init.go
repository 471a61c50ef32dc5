package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daviddao/aurora/pkg/config"
)

func newInitCommand(a *app) *cobra.Command {
	var skipConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and config, optionally registering --replica",
		Args:  cobra.NoArgs,

		// init creates the file --config names.
		Annotations: map[string]string{annotConfigOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd.Context(), skipConfig)
		},
	}
	cmd.Flags().BoolVar(&skipConfig, "skip-config", false, "don't write a config file")
	return cmd
}

func (a *app) runInit(ctx context.Context, skipConfig bool) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	replicas, err := s.ListReplicas(ctx)
	if err != nil {
		return fmt.Errorf("init: database error: %w", err)
	}

	result := map[string]any{"db": a.cfg.DB, "existing_replicas": len(replicas)}
	a.log.Debug("initialized", zap.String("db", a.cfg.DB))

	if a.cfg.Replica != "" {
		r, err := s.RegisterReplica(ctx, a.cfg.Replica)
		if err != nil {
			return fmt.Errorf("init: register: %w", err)
		}
		result["replica"] = r
	}

	if !skipConfig {
		path := a.opts.configPath
		if path == "" {
			path = filepath.Join(filepath.Dir(a.cfg.DB), filepath.Base(config.DefaultPath))
		}
		written, err := writeConfigOnce(path, a.cfg)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if written {
			result["config"] = path
		}
	}

	if a.opts.jsonOut {
		a.printJSON(result)
		return nil
	}
	a.printf("initialized aurora (db: %s)\n", a.cfg.DB)
	if len(replicas) > 0 {
		a.printf("  %d existing replica(s)\n", len(replicas))
	}
	if a.cfg.Replica != "" {
		a.printf("  registered replica %q\n", a.cfg.Replica)
	}
	if p, ok := result["config"]; ok {
		a.printf("  wrote %s\n", p)
	}
	a.printf("\nnext steps:\n")
	if a.cfg.Replica == "" {
		a.printf("  export %s=<device-id>\n", config.EnvReplica)
		a.printf("  aurora register <device-id>\n")
	}
	a.printf("  aurora send <conversation> <message>\n")
	a.printf("  aurora status\n")
	return nil
}

// writeConfigOnce saves cfg to path unless a file is already there.
func writeConfigOnce(path string, cfg config.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := cfg.Save(path); err != nil {
		return false, fmt.Errorf("write config %s: %w", path, err)
	}
	return true, nil
}
