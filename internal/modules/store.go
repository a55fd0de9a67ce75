package modules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS modules (
	path TEXT PRIMARY KEY,
	ast  TEXT NOT NULL
)`

// Store keeps module ASTs in a SQLite database, keyed by import path.
// A Store is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the store at dsn. ":memory:" gives a private
// in-memory store.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open module store %s: %w", dsn, err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init module store %s: %w", dsn, err)
	}
	return &Store{db: db}, nil
}

// Put stores the AST of the module at path, replacing any earlier one.
func (s *Store) Put(ctx context.Context, path string, node *ast.Node) error {
	data, err := json.Marshal(ast.Encode(node))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO modules (path, ast) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET ast = excluded.ast`, path, string(data))
	if err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	return nil
}

// PutSource decodes a JSON or YAML module source and stores it.
func (s *Store) PutSource(ctx context.Context, path, name string, data []byte) error {
	node, err := Decode(name, data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return s.Put(ctx, path, node)
}

// Load implements the evaluator loader capability.
func (s *Store) Load(path string) (*ast.Node, error) {
	return s.LoadContext(context.Background(), path)
}

func (s *Store) LoadContext(ctx context.Context, path string) (*ast.Node, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT ast FROM modules WHERE path = ?`, path).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, object.NewError(object.ModuleNotFound, "module %s is not in the store", path)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	node, err := ast.ParseJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("stored module %s: %w", path, err)
	}
	return node, nil
}

// Paths lists the stored module paths in order.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM modules ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Delete removes the module at path. Deleting a missing module is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
