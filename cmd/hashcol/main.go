// Package main implements the hashcol binary. It validates model
// declaration files, plans migration scripts against the recorded snapshot,
// and records new snapshots after scripts have been applied.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hashcol/hashcol/internal/app"
	"github.com/hashcol/hashcol/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile   string
		modelFile    string
		dataDir      string
		mode         string
		outDir       string
		snapshotPath string
		showVersion  bool
		showHelp     bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&modelFile, "model", "", "Path to the model declaration file")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for local state")
	flag.StringVar(&mode, "mode", "plan", "Run mode: validate, plan, snapshot")
	flag.StringVar(&outDir, "out", "", "Directory for generated migration scripts")
	flag.StringVar(&snapshotPath, "snapshot-db", "", "Path to the snapshot database")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Hashcol - Computed Hash Columns For SQL Server Schemas\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hashcol [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hashcol --mode validate --model model.yaml\n")
		fmt.Fprintf(os.Stderr, "  hashcol --mode plan --model model.yaml --data-dir /var/lib/hashcol\n")
		fmt.Fprintf(os.Stderr, "  hashcol --mode snapshot --config /etc/hashcol/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  HASHCOL_DATA_DIR       Base directory for local state\n")
		fmt.Fprintf(os.Stderr, "  HASHCOL_MODEL_FILE     Path to the model declaration file\n")
		fmt.Fprintf(os.Stderr, "  HASHCOL_SNAPSHOT_PATH  Path to the snapshot database\n")
		fmt.Fprintf(os.Stderr, "  HASHCOL_ARTIFACT_TYPE  Artifact store type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  HASHCOL_S3_BUCKET      S3 bucket for archived scripts\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("hashcol version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, modelFile, dataDir, outDir, snapshotPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	ctx := context.Background()

	switch mode {
	case "validate":
		err = application.Validate(ctx)
	case "plan":
		err = application.Plan(ctx)
	case "snapshot":
		err = application.Snapshot(ctx)
	default:
		log.Fatalf("Unknown mode: %s (must be validate, plan, or snapshot)", mode)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", mode, err)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, modelFile, dataDir, outDir, snapshotPath string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if modelFile != "" {
		cfg.ModelFile = modelFile
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if snapshotPath != "" {
		cfg.SnapshotPath = snapshotPath
	}

	return cfg, nil
}
