package artifact

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return store
}

func TestLocalStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	script := []byte("ALTER TABLE [Post] ADD [ContentHash] AS (HASHBYTES('SHA2_256', ...)) PERSISTED;\n")
	if err := store.Put(ctx, "migrations/0001_content_hash.sql", script); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "migrations/0001_content_hash.sql")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(script) {
		t.Errorf("payload mismatch: got %q", got)
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing.sql")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLocalStore_Exists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a.sql")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Exists = true for missing artifact")
	}

	if err := store.Put(ctx, "a.sql", []byte("-- empty\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	ok, err = store.Exists(ctx, "a.sql")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Exists = false for stored artifact")
	}
}

func TestLocalStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"migrations/0002_b.sql", "migrations/0001_a.sql", "other/readme.txt"} {
		if err := store.Put(ctx, name, []byte("x")); err != nil {
			t.Fatalf("Put %s failed: %v", name, err)
		}
	}

	names, err := store.List(ctx, "migrations/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2: %v", len(names), names)
	}
	if names[0] != "migrations/0001_a.sql" || names[1] != "migrations/0002_b.sql" {
		t.Errorf("names = %v, want sorted migration scripts", names)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, "a.sql", []byte("x")); err == nil {
		t.Error("Put with canceled context should fail")
	}
}
