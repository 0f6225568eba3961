package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases to a supported Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "pg", "pgx", "pgsql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", s)
	}
}

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sqlx.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:mindengage-tasks.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/mindengage_tasks?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sqlx.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	tunePool(driver, db.DB)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db: sqlite pragma: %w", err)
		}
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// WithTx starts a transaction, runs fn, and commits if fn returns nil.
// If fn returns an error or panics, the transaction is rolled back.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	if db == nil {
		return errors.New("db: nil handle")
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("db: commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}

// IsNoRows reports whether err is sql.ErrNoRows.
func IsNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

func tunePool(driver Driver, db *sql.DB) {
	maxOpen := 20
	maxIdle := 10
	connLife := 45 * time.Minute
	idleLife := 15 * time.Minute

	if driver == DriverSQLite {
		// single writer
		maxOpen = 1
		maxIdle = 1
		connLife = 0
		idleLife = 0
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connLife)
	db.SetConnMaxIdleTime(idleLife)
}

func ensureSchema(ctx context.Context, db *sqlx.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	// Some drivers reject multi-statement scripts; fall back to one statement at a time.
	if _, err := db.ExecContext(ctx, schema); err != nil {
		for _, stmt := range strings.Split(schema, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, e := db.ExecContext(ctx, stmt); e != nil {
				return fmt.Errorf("db: schema: %w", e)
			}
		}
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  max_questions_count INTEGER NOT NULL DEFAULT 1 CHECK (max_questions_count >= 0)
);

CREATE TABLE IF NOT EXISTS incorrect_word_blanks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  correct_word TEXT NOT NULL,
  incorrect_word TEXT NOT NULL,
  incorrect_letter_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS options_blanks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  question TEXT NOT NULL DEFAULT '',
  option1 TEXT NOT NULL DEFAULT '',
  option1_is_true INTEGER NOT NULL DEFAULT 0,
  option2 TEXT NOT NULL DEFAULT '',
  option2_is_true INTEGER NOT NULL DEFAULT 0,
  option3 TEXT NOT NULL DEFAULT '',
  option3_is_true INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_exams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  task_id INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
  task_title TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  started_at INTEGER,
  finished_at INTEGER
);

CREATE TABLE IF NOT EXISTS exam_incorrect_word_questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam_id INTEGER NOT NULL REFERENCES user_exams(id) ON DELETE RESTRICT,
  position INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  correct_word TEXT NOT NULL,
  incorrect_word TEXT NOT NULL,
  incorrect_letter_index INTEGER NOT NULL,
  selected_letter_index INTEGER,
  finished_at INTEGER
);

CREATE TABLE IF NOT EXISTS exam_options_questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam_id INTEGER NOT NULL REFERENCES user_exams(id) ON DELETE RESTRICT,
  position INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  question TEXT NOT NULL DEFAULT '',
  option1 TEXT NOT NULL DEFAULT '',
  option1_is_true INTEGER NOT NULL DEFAULT 0,
  option2 TEXT NOT NULL DEFAULT '',
  option2_is_true INTEGER NOT NULL DEFAULT 0,
  option3 TEXT NOT NULL DEFAULT '',
  option3_is_true INTEGER NOT NULL DEFAULT 0,
  selected_option1_is_true INTEGER,
  selected_option2_is_true INTEGER,
  selected_option3_is_true INTEGER,
  finished_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_user_exams_user ON user_exams(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_exam_iw_exam ON exam_incorrect_word_questions(exam_id);
CREATE INDEX IF NOT EXISTS idx_exam_opt_exam ON exam_options_questions(exam_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  max_questions_count INTEGER NOT NULL DEFAULT 1 CHECK (max_questions_count >= 0)
);

CREATE TABLE IF NOT EXISTS incorrect_word_blanks (
  id BIGSERIAL PRIMARY KEY,
  task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  correct_word TEXT NOT NULL,
  incorrect_word TEXT NOT NULL,
  incorrect_letter_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS options_blanks (
  id BIGSERIAL PRIMARY KEY,
  task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  question TEXT NOT NULL DEFAULT '',
  option1 TEXT NOT NULL DEFAULT '',
  option1_is_true BOOLEAN NOT NULL DEFAULT FALSE,
  option2 TEXT NOT NULL DEFAULT '',
  option2_is_true BOOLEAN NOT NULL DEFAULT FALSE,
  option3 TEXT NOT NULL DEFAULT '',
  option3_is_true BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS user_exams (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  task_id BIGINT REFERENCES tasks(id) ON DELETE SET NULL,
  task_title TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  started_at BIGINT,
  finished_at BIGINT
);

CREATE TABLE IF NOT EXISTS exam_incorrect_word_questions (
  id BIGSERIAL PRIMARY KEY,
  exam_id BIGINT NOT NULL REFERENCES user_exams(id) ON DELETE RESTRICT,
  position INTEGER NOT NULL,
  created_at BIGINT NOT NULL,
  correct_word TEXT NOT NULL,
  incorrect_word TEXT NOT NULL,
  incorrect_letter_index INTEGER NOT NULL,
  selected_letter_index INTEGER,
  finished_at BIGINT
);

CREATE TABLE IF NOT EXISTS exam_options_questions (
  id BIGSERIAL PRIMARY KEY,
  exam_id BIGINT NOT NULL REFERENCES user_exams(id) ON DELETE RESTRICT,
  position INTEGER NOT NULL,
  created_at BIGINT NOT NULL,
  question TEXT NOT NULL DEFAULT '',
  option1 TEXT NOT NULL DEFAULT '',
  option1_is_true BOOLEAN NOT NULL DEFAULT FALSE,
  option2 TEXT NOT NULL DEFAULT '',
  option2_is_true BOOLEAN NOT NULL DEFAULT FALSE,
  option3 TEXT NOT NULL DEFAULT '',
  option3_is_true BOOLEAN NOT NULL DEFAULT FALSE,
  selected_option1_is_true BOOLEAN,
  selected_option2_is_true BOOLEAN,
  selected_option3_is_true BOOLEAN,
  finished_at BIGINT
);

CREATE INDEX IF NOT EXISTS idx_user_exams_user ON user_exams(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_exam_iw_exam ON exam_incorrect_word_questions(exam_id);
CREATE INDEX IF NOT EXISTS idx_exam_opt_exam ON exam_options_questions(exam_id);
`
