package test

import (
	"log"
	"testing"

	"thingstodo/internal/adapter/database/sqlite"
)

type TestSetup[T any] struct {
	DB   *sqlite.DB
	Repo *T
}

// InitTestDB opens a migrated in-memory database.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Options{Path: ":memory:"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

func SetupTest[T any](t *testing.T, build func(db *sqlite.DB) *T) *TestSetup[T] {
	db := InitTestDB()

	return &TestSetup[T]{
		DB:   db,
		Repo: build(db),
	}
}

func TeardownTest[T any](t *testing.T, setup *TestSetup[T]) {
	if setup.DB != nil {
		CleanDB(t, setup.DB)
		setup.DB.Close()
	}
}

func CleanDB(t *testing.T, db *sqlite.DB) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}

	var tables []string

	for rows.Next() {
		var table string

		if err := rows.Scan(&table); err != nil {
			rows.Close()
			t.Fatalf("Failed to scan table name: %v", err)
		}

		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		t.Fatalf("Error iterating over rows: %v", err)
	}

	// the pool holds a single connection, so the cursor must be released first
	rows.Close()

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to execute delete for table %s: %v", table, err)
		}
	}
}
