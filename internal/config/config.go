// Package config provides unified configuration for the hashcol CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a hashcol run.
type Config struct {
	// DataDir is the base directory for all local state
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ModelFile is the path to the YAML model declaration file
	ModelFile string `json:"model_file" yaml:"model_file"`

	// SnapshotPath is the path to the snapshot database
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`

	// OutDir is the directory generated scripts are written to
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// WarnInsecure controls whether insecure algorithms log a warning
	WarnInsecure bool `json:"warn_insecure" yaml:"warn_insecure"`

	// Artifact configuration
	Artifact ArtifactConfig `json:"artifact" yaml:"artifact"`
}

// ArtifactConfig holds artifact store configuration.
type ArtifactConfig struct {
	// Type is the artifact store type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local artifact directory (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 artifact store configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      "./data/hashcol",
		ModelFile:    "model.yaml",
		WarnInsecure: true,
		Artifact: ArtifactConfig{
			Type: "local",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/hashcol"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = filepath.Join(c.DataDir, "snapshots.db")
	}
	if c.OutDir == "" {
		c.OutDir = filepath.Join(c.DataDir, "migrations")
	}
	if c.Artifact.Path == "" {
		c.Artifact.Path = filepath.Join(c.DataDir, "artifacts")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ModelFile == "" {
		return fmt.Errorf("model_file is required")
	}
	if c.Artifact.Type != "local" && c.Artifact.Type != "s3" {
		return fmt.Errorf("invalid artifact type: %s (must be local or s3)", c.Artifact.Type)
	}
	if c.Artifact.Type == "s3" && c.Artifact.S3.Bucket == "" {
		return fmt.Errorf("artifact.s3.bucket is required when artifact type is s3")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HASHCOL_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("HASHCOL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("HASHCOL_MODEL_FILE"); v != "" {
		cfg.ModelFile = v
	}
	if v := os.Getenv("HASHCOL_SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("HASHCOL_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("HASHCOL_WARN_INSECURE"); v != "" {
		cfg.WarnInsecure = v == "true" || v == "1"
	}
	if v := os.Getenv("HASHCOL_ARTIFACT_TYPE"); v != "" {
		cfg.Artifact.Type = v
	}
	if v := os.Getenv("HASHCOL_ARTIFACT_PATH"); v != "" {
		cfg.Artifact.Path = v
	}
	if v := os.Getenv("HASHCOL_S3_BUCKET"); v != "" {
		cfg.Artifact.S3.Bucket = v
	}
	if v := os.Getenv("HASHCOL_S3_REGION"); v != "" {
		cfg.Artifact.S3.Region = v
	}
	if v := os.Getenv("HASHCOL_S3_ENDPOINT"); v != "" {
		cfg.Artifact.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.OutDir,
	}
	if c.Artifact.Type == "local" {
		dirs = append(dirs, c.Artifact.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
