// Package database opens the planner's SQL database and runs its migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/DeivFF/study-space-wire-57-sub000/assets"
	"github.com/DeivFF/study-space-wire-57-sub000/core"
)

// Supported engines
const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
)

var gooseRunFunc = goose.Run // mockable

func dataSourceName(dbName string, admin bool, dc core.DatabaseConfig) (string, error) {
	switch dc.Engine {
	case SQLite:
		// foreign keys are off by default in sqlite
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dc.Path), nil
	case Postgres:
		user := url.UserPassword(dc.User, dc.Password)
		if admin && dc.AdminUser != "" {
			user = url.UserPassword(dc.AdminUser, dc.AdminPassword)
		}

		sslMode := "require"
		if dc.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   dc.Engine,
			User:     user,
			Host:     dc.Address(),
			Path:     dbName,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", errors.Errorf("unsupported database engine %q", dc.Engine)
	}
}

func open(dbName string, admin bool, dc core.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := dataSourceName(dbName, admin, dc)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(dc.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if dc.Engine == SQLite {
		db.SetMaxOpenConns(1) // sqlite serializes writers
	}
	return db, nil
}

// Open connects to the configured database and waits until it answers.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf.Database)
	if err != nil {
		return nil, err
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping canceled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(ctx context.Context, db *sqlx.DB, query, name string) (bool, error) {
	var found bool
	err := db.GetContext(ctx, &found, db.Rebind(query), name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return found, err
}

func createAppUser(ctx context.Context, db *sqlx.DB, dc core.DatabaseConfig) error {
	if dc.User == "" {
		return nil
	}

	found, err := exists(ctx, db, "SELECT true FROM pg_roles WHERE rolname = ?", dc.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD %s", pq.QuoteIdentifier(dc.User), pq.QuoteLiteral(dc.Password))
		if _, err = db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(ctx context.Context, db *sqlx.DB, dc core.DatabaseConfig) error {
	found, err := exists(ctx, db, "SELECT true FROM pg_database WHERE datname = ?", dc.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dc.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres app user and database. It is a no-op for sqlite,
// whose file is created on first connection.
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	if conf.Database.Engine != Postgres {
		return nil
	}

	// connect as admin
	db, err := open("postgres", true, conf.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err = ping(ctx, db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(ctx, db, conf.Database); err != nil {
		return err
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf.Database)
	if err != nil {
		return err
	}
	defer func() { _ = appDB.Close() }()
	return createDB(ctx, appDB, conf.Database)
}

// Migrate runs a goose command ("up", "down", "status", "redo", "version"...) with the embedded migrations.
func Migrate(db *sqlx.DB, command string, args ...string) error {
	goose.SetBaseFS(assets.FS)
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := gooseRunFunc(command, db.DB, assets.MigrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %q", command)
	}
	return nil
}
