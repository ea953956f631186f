// Package app wires the hashcol components into the CLI's three run modes:
// validate, plan, and snapshot.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hashcol/hashcol/internal/artifact"
	"github.com/hashcol/hashcol/internal/config"
	"github.com/hashcol/hashcol/internal/errors"
	"github.com/hashcol/hashcol/internal/migration"
	"github.com/hashcol/hashcol/internal/model"
	"github.com/hashcol/hashcol/internal/snapshot"
	"github.com/hashcol/hashcol/internal/sqlgen"
)

// App holds the resolved configuration for one CLI invocation.
type App struct {
	cfg *config.Config
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &App{cfg: cfg}, nil
}

// Validate loads the model file, normalizes every declaration, and reports
// the computed columns it found. Any invalid declaration fails the run.
func (a *App) Validate(ctx context.Context) error {
	m, err := model.LoadFile(a.cfg.ModelFile)
	if err != nil {
		return err
	}

	computed := 0
	for _, entity := range m.Entities {
		for _, prop := range entity.Properties {
			d, ok, err := prop.HashDescriptor()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			computed++
			log.Printf("app: %s.%s = %s over %v -> %s",
				entity.Name, prop.Name, d.Algorithm, d.SourceColumns, sqlgen.StorageType(d).SQL())
			if a.cfg.WarnInsecure && !d.Algorithm.Secure() {
				log.Printf("[WARN] app: %s.%s uses insecure algorithm %s",
					entity.Name, prop.Name, d.Algorithm)
			}
		}
	}

	log.Printf("app: model valid: %d entities, %d computed hash columns",
		len(m.Entities), computed)
	return nil
}

// Plan diffs the model file against the current snapshot and, when the model
// changed, writes the migration script to the output directory and archives
// it in the artifact store. The snapshot itself is not advanced; run the
// snapshot mode once the script has been applied.
func (a *App) Plan(ctx context.Context) error {
	m, err := model.LoadFile(a.cfg.ModelFile)
	if err != nil {
		return err
	}

	store, err := snapshot.Open(a.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var oldModel *model.Model
	nextVersion := 1
	current, err := store.Current(ctx)
	switch {
	case err == nil:
		oldModel = current.Model
		nextVersion = current.Version + 1
	case errors.GetCode(err) == errors.CodeSnapshotNotFound:
		// First migration: diff against the empty model.
	default:
		return err
	}

	plan, err := migration.NewPlan(oldModel, m)
	if err != nil {
		return err
	}
	if plan.Empty() {
		log.Printf("app: model unchanged, nothing to plan")
		return nil
	}

	name := fmt.Sprintf("%04d_%016x.sql", nextVersion, plan.Fingerprint)
	script := plan.Script()

	outPath := filepath.Join(a.cfg.OutDir, name)
	if err := os.WriteFile(outPath, []byte(script), 0644); err != nil {
		return fmt.Errorf("app: failed to write migration script: %w", err)
	}
	log.Printf("app: wrote %s (%d operations)", outPath, len(plan.Operations))

	archive, err := a.artifactStore(ctx)
	if err != nil {
		return err
	}
	if err := archive.Put(ctx, "migrations/"+name, []byte(script)); err != nil {
		return err
	}
	log.Printf("app: archived migrations/%s to %s artifact store", name, a.cfg.Artifact.Type)
	return nil
}

// Snapshot records the model file as the new baseline for future diffs.
func (a *App) Snapshot(ctx context.Context) error {
	m, err := model.LoadFile(a.cfg.ModelFile)
	if err != nil {
		return err
	}

	store, err := snapshot.Open(a.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.Save(ctx, m)
	if err != nil {
		return err
	}
	log.Printf("app: model recorded as snapshot version %d", version)
	return nil
}

// artifactStore builds the configured artifact store backend.
func (a *App) artifactStore(ctx context.Context) (artifact.Store, error) {
	switch a.cfg.Artifact.Type {
	case "s3":
		return artifact.NewS3Store(ctx, a.cfg.Artifact.S3.Bucket, artifact.S3Config{
			Region:   a.cfg.Artifact.S3.Region,
			Endpoint: a.cfg.Artifact.S3.Endpoint,
		})
	default:
		return artifact.NewLocalStore(a.cfg.Artifact.Path)
	}
}
