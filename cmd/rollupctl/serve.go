package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/blockstate"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/config"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/rlog"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/session"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open a configured store backend and run a scripted sequence of block operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		opsPath, _ := cmd.Flags().GetString("ops")
		return runServe(cfgPath, opsPath)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a backend configuration YAML file (required)")
	serveCmd.Flags().String("ops", "", "Path to a scripted operations YAML file (required)")
	serveCmd.MarkFlagRequired("config")
	serveCmd.MarkFlagRequired("ops")
}

// opStep is one entry of a scripted operations file: open a child
// under parent, apply writes through a working set, and optionally
// finalize it immediately afterward.
type opStep struct {
	Parent   string            `yaml:"parent"`
	Block    string            `yaml:"block"`
	Writes   map[string]string `yaml:"writes"`
	Finalize bool              `yaml:"finalize"`
}

type opsFile struct {
	Steps []opStep `yaml:"steps"`
}

func loadOps(path string) (opsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return opsFile{}, fmt.Errorf("read ops file %s: %w", path, err)
	}
	var ops opsFile
	if err := yaml.Unmarshal(data, &ops); err != nil {
		return opsFile{}, fmt.Errorf("parse ops file %s: %w", path, err)
	}
	return ops, nil
}

func openBackend(cfg config.Config) (store.Adapter, error) {
	var backend store.Adapter
	var err error
	switch cfg.Backend {
	case config.BackendMemory:
		backend = store.NewMemory()
	case config.BackendBolt:
		backend, err = store.OpenBolt(cfg.Path)
	case config.BackendLevelDB:
		backend, err = store.OpenLevelDB(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store.NewCached(backend, cfg.CacheSize)
}

func runServe(cfgPath, opsPath string) error {
	log := rlog.WithComponent("rollupctl")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rlog.Init(rlog.Config{Level: cfg.LogLevel(), JSONOutput: cfg.Log.JSON})

	ops, err := loadOps(opsPath)
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("open backend %q: %w", cfg.Backend, err)
	}
	defer backend.Close()

	ctx := context.Background()
	m := blockstate.NewManager(backend)
	defer m.Stop()

	for _, step := range ops.Steps {
		handle, err := m.OpenChild(step.Parent, step.Block)
		if err != nil {
			return fmt.Errorf("open child %s under %s: %w", step.Block, step.Parent, err)
		}

		cp := session.NewCheckpoint(handle)
		ws := cp.Begin()
		for k, v := range step.Writes {
			ws.Set([]byte(k), []byte(v))
		}
		cp = ws.Commit()

		frozen, witness := cp.Freeze()
		if err := m.RegisterLayer(frozen); err != nil {
			return fmt.Errorf("register layer %s: %w", step.Block, err)
		}
		log.Info("registered block", "block", step.Block, "parent", step.Parent, "witness_entries", witness.Len())

		if step.Finalize {
			if err := m.Finalize(ctx, step.Block); err != nil {
				return fmt.Errorf("finalize %s: %w", step.Block, err)
			}
			log.Info("finalized block", "block", step.Block)
		}
	}

	fmt.Println("ops complete")
	return nil
}
