package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE routes (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	methods TEXT NOT NULL,
	handler TEXT NOT NULL,
	source TEXT NOT NULL,
	responses TEXT NOT NULL,
	capabilities TEXT NOT NULL DEFAULT '',
	debug INTEGER NOT NULL DEFAULT 0,
	doc TEXT NOT NULL DEFAULT ''
);

CREATE TABLE fields (
	route_id INTEGER NOT NULL REFERENCES routes(id),
	position INTEGER NOT NULL,
	location TEXT NOT NULL,
	name TEXT NOT NULL,
	shape TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (route_id, location, position)
) WITHOUT ROWID;
CREATE INDEX idx_fields_name ON fields(name);
`

// WriteSQLite writes m to a fresh SQLite database at path. Routes get ids
// in dispatch order starting at 1; list columns are '|'-joined.
func (m Manifest) WriteSQLite(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := m.insert(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (m Manifest) insert(tx *sql.Tx) error {
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('generator', ?), ('schema', ?)`,
		m.Generator, fmt.Sprint(m.Schema)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	stmtRoute, err := tx.Prepare(`
		INSERT INTO routes (id, path, methods, handler, source, responses, capabilities, debug, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtRoute.Close() }()

	stmtField, err := tx.Prepare(`
		INSERT INTO fields (route_id, position, location, name, shape, type)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtField.Close() }()

	for i, e := range m.Routes {
		id := i + 1
		debug := 0
		if e.Debug {
			debug = 1
		}
		if _, err := stmtRoute.Exec(id, e.Path,
			strings.Join(e.Methods, "|"), e.Handler, e.Source,
			strings.Join(e.Responses, "|"), strings.Join(e.Capabilities, "|"),
			debug, e.Doc); err != nil {
			return fmt.Errorf("insert route %s: %w", e.Path, err)
		}

		for location, list := range map[string][]Field{"path": e.Captures, "query": e.Query, "form": e.Form} {
			for pos, f := range list {
				if _, err := stmtField.Exec(id, pos, location, f.Name, f.Shape, f.Type); err != nil {
					return fmt.Errorf("insert field %s of %s: %w", f.Name, e.Path, err)
				}
			}
		}
	}
	return nil
}
