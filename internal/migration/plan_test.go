package migration

import (
	"strings"
	"testing"

	"github.com/hashcol/hashcol/internal/model"
)

func buildModel(t *testing.T, configure func(*model.Builder)) *model.Model {
	t.Helper()
	b := model.NewBuilder()
	configure(b)
	m, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build model: %v", err)
	}
	return m
}

func TestNewPlan_FirstMigration(t *testing.T) {
	m := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("Content").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_256", "Title", "Content")
	})

	plan, err := NewPlan(nil, m)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if len(plan.Operations) != 3 {
		t.Fatalf("got %d operations, want 3 adds", len(plan.Operations))
	}

	script := plan.Script()
	if !strings.Contains(script, "ALTER TABLE [Post] ADD [ContentHash] AS (HASHBYTES('SHA2_256'") {
		t.Errorf("script missing computed column add:\n%s", script)
	}
	if !strings.Contains(script, ") PERSISTED;") {
		t.Errorf("computed column must be persisted:\n%s", script)
	}
	if !strings.Contains(script, "ALTER TABLE [Post] ADD [Title] NVARCHAR(MAX) NULL;") {
		t.Errorf("script missing plain column add:\n%s", script)
	}
}

func TestNewPlan_NoChanges(t *testing.T) {
	configure := func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_256", "Title")
	}
	oldM := buildModel(t, configure)
	newM := buildModel(t, configure)

	plan, err := NewPlan(oldM, newM)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if !plan.Empty() {
		t.Errorf("identical models must produce an empty plan, got %d ops", len(plan.Operations))
	}
}

func TestNewPlan_AlgorithmChange(t *testing.T) {
	oldM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_512", "Title")
	})
	newM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_256", "Title")
	})

	plan, err := NewPlan(oldM, newM)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if len(plan.Operations) != 1 {
		t.Fatalf("got %d operations, want 1 alter", len(plan.Operations))
	}
	op := plan.Operations[0]
	if op.Kind != OpAlterColumn {
		t.Errorf("kind = %s, want alter-column", op.Kind)
	}
	if op.Payload.TypeSQL != "BINARY(32)" {
		t.Errorf("type = %q, want BINARY(32) (was BINARY(64))", op.Payload.TypeSQL)
	}

	// SQL Server cannot redefine a computed column in place.
	script := plan.Script()
	if !strings.Contains(script, "DROP COLUMN [ContentHash];") {
		t.Errorf("alter of a computed definition must drop first:\n%s", script)
	}
	if !strings.Contains(script, "ADD [ContentHash] AS (HASHBYTES('SHA2_256'") {
		t.Errorf("script must re-add with the new definition:\n%s", script)
	}
}

func TestNewPlan_RemoveHashDeclaration(t *testing.T) {
	oldM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_256", "Title")
	})
	newM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes()
	})

	plan, err := NewPlan(oldM, newM)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if len(plan.Operations) != 1 {
		t.Fatalf("got %d operations, want 1", len(plan.Operations))
	}
	op := plan.Operations[0]
	if op.Payload.Computed || op.Payload.Persisted || op.Payload.Expression != "" {
		t.Errorf("convert-to-plain payload = %+v, want cleared markers", op.Payload)
	}

	script := plan.Script()
	if strings.Contains(script, "HASHBYTES") {
		t.Errorf("converted column must carry no generated expression:\n%s", script)
	}
	if !strings.Contains(script, "ADD [ContentHash]") {
		t.Errorf("column must be re-added as plain storage:\n%s", script)
	}
}

func TestNewPlan_DropColumn(t *testing.T) {
	oldM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("MD5", "Title")
	})
	newM := buildModel(t, func(b *model.Builder) {
		b.Entity("Post").Property("Title").String()
	})

	plan, err := NewPlan(oldM, newM)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if len(plan.Operations) != 1 {
		t.Fatalf("got %d operations, want 1 drop", len(plan.Operations))
	}
	if plan.Operations[0].Kind != OpDropColumn {
		t.Errorf("kind = %s, want drop-column", plan.Operations[0].Kind)
	}
	if !strings.Contains(plan.Script(), "ALTER TABLE [Post] DROP COLUMN [ContentHash];") {
		t.Errorf("script missing drop:\n%s", plan.Script())
	}
}

func TestNewPlan_DeterministicBody(t *testing.T) {
	oldM := buildModel(t, func(b *model.Builder) {
		b.Entity("Post").Property("Title").String()
	})
	configure := func(b *model.Builder) {
		e := b.Entity("Post")
		e.Property("Title").String()
		e.Property("ContentHash").Bytes().HashOf("SHA2_256", "Title")
	}

	p1, err := NewPlan(oldM, buildModel(t, configure))
	if err != nil {
		t.Fatalf("first plan failed: %v", err)
	}
	p2, err := NewPlan(oldM, buildModel(t, configure))
	if err != nil {
		t.Fatalf("second plan failed: %v", err)
	}

	if p1.scriptBody() != p2.scriptBody() {
		t.Error("same model transition must render an identical script body")
	}
	if p1.Fingerprint != p2.Fingerprint {
		t.Errorf("fingerprints differ: %016x vs %016x", p1.Fingerprint, p2.Fingerprint)
	}
	if p1.ID == p2.ID {
		t.Error("plan IDs must be unique per run")
	}
}

func TestDiff_NewEntityAddsAllColumns(t *testing.T) {
	newM := buildModel(t, func(b *model.Builder) {
		e := b.Entity("Document")
		e.Property("Body").String()
		e.Property("BodyHash").Bytes().HashOf("SHA1", "Body")
	})

	ops := Diff(nil, newM)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}
	for _, op := range ops {
		if op.Kind != OpAddColumn {
			t.Errorf("op %s kind = %s, want add-column", op.Column, op.Kind)
		}
	}
}
