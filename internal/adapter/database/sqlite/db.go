package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Masterminds/squirrel"

	_ "github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rs/zerolog"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Options struct {
	Path       string
	LogQueries bool
}

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

func New(opts Options) (*sql.DB, error) {
	if opts.Path == "" {
		opts.Path = "todos.db"
	}

	sqlDB, err := otelsql.Open("sqlite3", opts.Path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("thingstodo"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", opts.Path, err)
	}

	db := sqlDB

	if opts.LogQueries {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sqlite").Logger()

		// sql.Open is lazy, so the traced handle has no connections to release
		db = sqldblogger.OpenDriver(opts.Path, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
			sqldblogger.WithSQLQueryAsMessage(true),
		)
	}

	// sqlite serialises writers and every :memory: connection is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewDB(opts Options) (*DB, error) {
	sqlDB, err := New(opts)

	if err != nil {
		return nil, err
	}

	return Wrap(sqlDB), nil
}

// Wrap attaches the query builder to an already migrated handle.
func Wrap(sqlDB *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}

func RunMigrations(db *sql.DB) error {
	start := time.Now()

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Debug("SQLite migrations applied", "duration", time.Since(start))

	return nil
}
