package definitions

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"slices"

	"github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/jobrunner/meridian/internal/domain"
)

const sqliteDriver = "sqlite3_definitions"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON", []driver.Value{})
			return err
		},
	})
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS crs_definition (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	definition TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS crs_identifier (
	identifier TEXT PRIMARY KEY,
	code       TEXT NOT NULL REFERENCES crs_definition(code) ON DELETE CASCADE
);`

// SQLite serves definitions stored as YAML documents in a SQLite database.
// Every structured identifier of a definition is indexed in crs_identifier.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates a definition database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open(sqliteDriver, "file:"+path+"?_txlock=immediate")
	if err != nil {
		return nil, &domain.BackingStoreError{Operation: "open", Code: path, Err: err}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &domain.BackingStoreError{Operation: "open", Code: path, Err: err}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Lookup implements output.DefinitionSource. Only structured codes are indexed.
func (s *SQLite) Lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	if !code.IsStructured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
	}

	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT d.definition
		FROM crs_identifier i JOIN crs_definition d ON d.code = i.code
		WHERE i.identifier = ?`, code.Key()).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
	}
	if err != nil {
		return nil, &domain.BackingStoreError{Operation: "lookup", Code: code.String(), Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(text)))
	dec.KnownFields(true)
	var def domain.RawDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, &domain.DefinitionError{Code: code.String(), Message: fmt.Sprintf("stored definition: %v", err)}
	}
	return &def, nil
}

// Codes implements output.DefinitionLister.
func (s *SQLite) Codes(ctx context.Context) ([]domain.CRSCode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM crs_definition`)
	if err != nil {
		return nil, &domain.BackingStoreError{Operation: "list", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var codes []domain.CRSCode
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, &domain.BackingStoreError{Operation: "list", Err: err}
		}
		codes = append(codes, domain.ParseCode(code))
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.BackingStoreError{Operation: "list", Err: err}
	}
	slices.SortFunc(codes, compareCodes)
	return codes, nil
}

// Store inserts or replaces definitions in a single transaction.
func (s *SQLite) Store(ctx context.Context, defs ...*domain.RawDefinition) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.BackingStoreError{Operation: "store", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, def := range defs {
		codes := def.Codes()
		if len(codes) == 0 {
			return &domain.DefinitionError{Code: def.Code, Field: "code",
				Message: "definition has no CODESPACE:CODE identifier"}
		}
		text, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", def.Code, err)
		}
		primary := codes[0].Key()
		if _, err := tx.ExecContext(ctx, `DELETE FROM crs_definition WHERE code = ?`, primary); err != nil {
			return &domain.BackingStoreError{Operation: "store", Code: primary, Err: err}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO crs_definition (code, name, definition) VALUES (?, ?, ?)`,
			primary, def.Name, string(text)); err != nil {
			return &domain.BackingStoreError{Operation: "store", Code: primary, Err: err}
		}
		for _, c := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO crs_identifier (identifier, code) VALUES (?, ?)`,
				c.Key(), primary); err != nil {
				return &domain.BackingStoreError{Operation: "store", Code: c.Key(), Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.BackingStoreError{Operation: "store", Err: err}
	}
	return nil
}
