package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashcol/hashcol/internal/app"
	"github.com/hashcol/hashcol/internal/config"
)

const modelV1 = `
entities:
  - name: Post
    properties:
      - name: Title
        kind: string
      - name: Content
        kind: string
      - name: ContentHash
        kind: bytes
        hash:
          algorithm: SHA2_512
          sources: [Title, Content]
`

const modelV2 = `
entities:
  - name: Post
    properties:
      - name: Title
        kind: string
      - name: Content
        kind: string
      - name: ContentHash
        kind: bytes
        hash:
          algorithm: SHA2_256
          sources: [Title, Content]
`

const modelV3 = `
entities:
  - name: Post
    properties:
      - name: Title
        kind: string
      - name: Content
        kind: string
      - name: ContentHash
        kind: bytes
`

// newApp builds an App rooted in a fresh temp directory and returns it with
// the paths the test needs to inspect.
func newApp(t *testing.T, dataDir, modelPath string) *app.App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.ModelFile = modelPath
	cfg.Resolve()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return a
}

func writeModel(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}
	return path
}

func readScripts(t *testing.T, outDir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("failed to read out dir: %v", err)
	}
	scripts := make(map[string]string)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			t.Fatalf("failed to read script %s: %v", e.Name(), err)
		}
		scripts[e.Name()] = string(data)
	}
	return scripts
}

func TestLifecycle_CreateAlterConvert(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	outDir := filepath.Join(dataDir, "migrations")
	modelPath := writeModel(t, dir, modelV1)
	ctx := context.Background()

	a := newApp(t, dataDir, modelPath)

	// First plan: everything is new, the computed column is created with
	// the SHA2_512 width.
	if err := a.Plan(ctx); err != nil {
		t.Fatalf("first plan failed: %v", err)
	}
	scripts := readScripts(t, outDir)
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	for name, body := range scripts {
		if !strings.HasPrefix(name, "0001_") {
			t.Errorf("script name %q should carry version 1", name)
		}
		if !strings.Contains(body, "HASHBYTES('SHA2_512'") {
			t.Errorf("script must create the SHA2_512 computed column:\n%s", body)
		}
		if !strings.Contains(body, "PERSISTED") {
			t.Errorf("computed column must be persisted:\n%s", body)
		}
	}

	// Record the baseline, then plan again without edits: no new script.
	if err := a.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if err := a.Plan(ctx); err != nil {
		t.Fatalf("idempotent plan failed: %v", err)
	}
	if scripts = readScripts(t, outDir); len(scripts) != 1 {
		t.Fatalf("unchanged model must not produce a new script, got %d", len(scripts))
	}

	// Change the algorithm: the next plan alters the definition, width and
	// expression together.
	writeModel(t, dir, modelV2)
	if err := a.Plan(ctx); err != nil {
		t.Fatalf("alter plan failed: %v", err)
	}
	scripts = readScripts(t, outDir)
	if len(scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(scripts))
	}
	var alterBody string
	for name, body := range scripts {
		if strings.HasPrefix(name, "0002_") {
			alterBody = body
		}
	}
	if alterBody == "" {
		t.Fatalf("missing version-2 script, have %v", keys(scripts))
	}
	if !strings.Contains(alterBody, "DROP COLUMN [ContentHash]") {
		t.Errorf("algorithm change must drop the old definition:\n%s", alterBody)
	}
	if !strings.Contains(alterBody, "HASHBYTES('SHA2_256'") {
		t.Errorf("algorithm change must re-add with SHA2_256:\n%s", alterBody)
	}

	// Remove the declaration: the column converts to plain storage.
	if err := a.Snapshot(ctx); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}
	writeModel(t, dir, modelV3)
	if err := a.Plan(ctx); err != nil {
		t.Fatalf("convert plan failed: %v", err)
	}
	scripts = readScripts(t, outDir)
	if len(scripts) != 3 {
		t.Fatalf("got %d scripts, want 3", len(scripts))
	}
	var convertBody string
	for name, body := range scripts {
		if strings.HasPrefix(name, "0003_") {
			convertBody = body
		}
	}
	if convertBody == "" {
		t.Fatalf("missing version-3 script, have %v", keys(scripts))
	}
	if strings.Contains(convertBody, "HASHBYTES") {
		t.Errorf("converted column must carry no generated expression:\n%s", convertBody)
	}
	if !strings.Contains(convertBody, "ADD [ContentHash]") {
		t.Errorf("column must be re-added as plain storage:\n%s", convertBody)
	}
}

func TestLifecycle_PlanArchivesScript(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	modelPath := writeModel(t, dir, modelV1)

	a := newApp(t, dataDir, modelPath)
	if err := a.Plan(context.Background()); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	archived, err := os.ReadDir(filepath.Join(dataDir, "artifacts", "migrations"))
	if err != nil {
		t.Fatalf("artifact directory missing: %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("got %d archived scripts, want 1", len(archived))
	}
}

func TestLifecycle_InvalidModelFailsValidate(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeModel(t, dir, `
entities:
  - name: Post
    properties:
      - name: ContentHash
        kind: bytes
        hash:
          algorithm: SHA9000
          sources: [Title]
`)

	a := newApp(t, filepath.Join(dir, "data"), modelPath)
	err := a.Validate(context.Background())
	if err == nil {
		t.Fatal("expected validation failure for unknown algorithm")
	}
	if !strings.Contains(err.Error(), "SHA9000") {
		t.Errorf("error %q must name the offending token", err)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
