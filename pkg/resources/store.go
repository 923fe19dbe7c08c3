// Package resources backs resources/list and resources/read with a small
// sqlite-backed store, sharing its persistence pattern with pkg/prompts
// (both are thin wrappers over database/sql + modernc.org/sqlite).
package resources

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS resources (
	uri         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	mime_type   TEXT NOT NULL DEFAULT 'text',
	content     TEXT NOT NULL DEFAULT ''
);`

// Store holds resources constructed through protocol.NewResource, so every
// row that makes it in has already passed URI/mime-type validation.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resource store database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create resources table: %w", err)
	}
	s := &Store{db: db}
	s.ensureSampleResources()
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put validates and stores a resource, replacing any existing row with the
// same URI.
func (s *Store) Put(resource protocol.Resource, content string) error {
	validated, err := protocol.NewResource(resource.URI, resource.Name, resource.MimeType)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO resources (uri, name, description, mime_type, content) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(uri) DO UPDATE SET name=excluded.name, description=excluded.description, mime_type=excluded.mime_type, content=excluded.content`,
		resource.URI, validated.Name, resource.Description, validated.MimeType, content,
	)
	return err
}

func (s *Store) List() ([]protocol.Resource, error) {
	rows, err := s.db.Query(`SELECT uri, name, description, mime_type FROM resources ORDER BY uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.Resource
	for rows.Next() {
		var r protocol.Resource
		if err := rows.Scan(&r.URI, &r.Name, &r.Description, &r.MimeType); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Read returns the content of a resource as the text-or-blob contents shape
// resources/read expects, chosen by the stored mime category.
func (s *Store) Read(uri string) ([]protocol.ResourceContents, error) {
	row := s.db.QueryRow(`SELECT mime_type, content FROM resources WHERE uri = ?`, uri)
	var mimeType, content string
	if err := row.Scan(&mimeType, &content); err != nil {
		if err == sql.ErrNoRows {
			return nil, protocol.NewResourceError(protocol.ResourceNotFound, "resource not found: %s", uri)
		}
		return nil, err
	}

	rc := protocol.ResourceContents{URI: uri, MimeType: mimeType}
	if mimeType == "blob" {
		rc.Blob = content
	} else {
		rc.Text = content
	}
	return []protocol.ResourceContents{rc}, nil
}

func (s *Store) ensureSampleResources() {
	resource, err := protocol.NewResource("str://example/welcome", "welcome", "text")
	if err != nil {
		return
	}
	resource = resource.WithDescription("A short welcome note published as a sample resource")
	_ = s.Put(*resource, "This MCP server publishes this resource as a worked example of resources/read.")
}
