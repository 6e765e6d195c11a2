package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../db/migrations"

// Every up migration must have a matching down migration, or golang-migrate
// cannot roll back past it.
func TestMigrationsPairUpAndDown(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("reading migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migration files found")
	}

	files := map[string]bool{}
	for _, e := range entries {
		files[e.Name()] = true
	}

	for name := range files {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if !files[down] {
				t.Errorf("%s has no matching down migration", name)
			}
		case strings.HasSuffix(name, ".down.sql"):
			up := strings.TrimSuffix(name, ".down.sql") + ".up.sql"
			if !files[up] {
				t.Errorf("%s has no matching up migration", name)
			}
		default:
			t.Errorf("unexpected file in migrations dir: %s", name)
		}
	}
}

// The join table schema backs the application's invariants: the unique
// (poster_id, tag_id) pair prevents duplicate associations, and the poster
// foreign key cascades so association rows never outlive their poster.
func TestPostersTagsSchemaConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(migrationsDir, "*_create_posters_tags.up.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected exactly one posters_tags migration, got %v (err: %v)", matches, err)
	}

	raw, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}
	schema := strings.ToUpper(string(raw))

	if !strings.Contains(schema, "UNIQUE KEY") || !strings.Contains(schema, "(POSTER_ID, TAG_ID)") {
		t.Error("posters_tags must declare a unique (poster_id, tag_id) pair")
	}
	if !strings.Contains(schema, "ON DELETE CASCADE") {
		t.Error("posters_tags foreign keys must cascade on delete")
	}
}
