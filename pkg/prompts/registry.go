// Package prompts stores reusable prompt templates behind the same
// database/sql + modernc.org/sqlite pattern the teacher's persistence layer
// uses for its football-statistics store, repointed at a fixed four-column
// schema since a prompt registry only ever stores one shape of row.
package prompts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	template    TEXT NOT NULL,
	arguments   TEXT NOT NULL DEFAULT '[]'
);`

// storedPrompt is the row shape; Arguments round-trips through the protocol
// package's PromptArgument so prompts/list and prompts/get never need a
// second copy of that type.
type storedPrompt struct {
	Description string
	Template    string
	Arguments   []protocol.PromptArgument
}

// Registry is a sqlite-backed store of prompt templates, rendered with
// {{var}} substitution exactly as the teacher's filesystem-JSON registry did.
type Registry struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and seeds the
// sample prompts the teacher always shipped, so a fresh server has something
// to show on prompts/list out of the box.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt registry database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create prompts table: %w", err)
	}
	r := &Registry{db: db}
	r.ensureSamplePrompts()
	return r, nil
}

func (r *Registry) Close() error { return r.db.Close() }

// List returns every registered prompt as the protocol.Prompt shape used on
// the wire for prompts/list.
func (r *Registry) List() ([]protocol.Prompt, error) {
	rows, err := r.db.Query(`SELECT name, description, arguments FROM prompts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.Prompt
	for rows.Next() {
		var name, description, argsJSON string
		if err := rows.Scan(&name, &description, &argsJSON); err != nil {
			return nil, err
		}
		var args []protocol.PromptArgument
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, fmt.Errorf("corrupt arguments for prompt %q: %w", name, err)
		}
		out = append(out, protocol.Prompt{Name: name, Description: description, Arguments: args})
	}
	return out, rows.Err()
}

// Get renders a prompt's template against arguments and returns the
// prompts/get result: a single user-role text message, matching the
// teacher's one-message-per-prompt convention.
func (r *Registry) Get(name string, arguments map[string]string) (*protocol.GetPromptResult, error) {
	stored, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	for _, arg := range stored.Arguments {
		if arg.Required {
			if _, ok := arguments[arg.Name]; !ok {
				return nil, protocol.NewPromptError(protocol.PromptInvalidParameters, "missing required argument %q", arg.Name)
			}
		}
	}

	rendered := stored.Template
	for k, v := range arguments {
		rendered = strings.ReplaceAll(rendered, "{{"+k+"}}", v)
	}

	return &protocol.GetPromptResult{
		Description: stored.Description,
		Messages:    []protocol.PromptMessage{protocol.NewTextPromptMessage(protocol.RoleUser, rendered)},
	}, nil
}

func (r *Registry) lookup(name string) (*storedPrompt, error) {
	row := r.db.QueryRow(`SELECT description, template, arguments FROM prompts WHERE name = ?`, name)
	var sp storedPrompt
	var argsJSON string
	if err := row.Scan(&sp.Description, &sp.Template, &argsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, protocol.NewPromptError(protocol.PromptNotFound, "prompt not found: %s", name)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(argsJSON), &sp.Arguments); err != nil {
		return nil, fmt.Errorf("corrupt arguments for prompt %q: %w", name, err)
	}
	return &sp, nil
}

// Save inserts or replaces a prompt template.
func (r *Registry) Save(name, description, template string, arguments []protocol.PromptArgument) error {
	argsJSON, err := json.Marshal(arguments)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`INSERT INTO prompts (name, description, template, arguments) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET description=excluded.description, template=excluded.template, arguments=excluded.arguments`,
		name, description, template, string(argsJSON),
	)
	return err
}

func (r *Registry) ensureSamplePrompts() {
	samples := []struct {
		name, description, template string
		args                        []protocol.PromptArgument
	}{
		{
			name:        "code-review",
			description: "Review code for best practices, bugs, and improvements",
			template:    "Please review the following {{language}} code for:\n- Best practices\n- Potential bugs\n- Performance improvements\n- Security issues\n\nCode:\n```{{language}}\n{{code}}\n```",
			args: []protocol.PromptArgument{
				{Name: "language", Description: "Programming language of the code", Required: true},
				{Name: "code", Description: "The code to review", Required: true},
			},
		},
		{
			name:        "explain-concept",
			description: "Explain a technical concept in simple terms",
			template:    "Please explain {{concept}} in simple terms that a {{audience}} would understand. Include what it is, why it's important, how it works, and real-world examples.",
			args: []protocol.PromptArgument{
				{Name: "concept", Description: "The technical concept to explain", Required: true},
				{Name: "audience", Description: "Target audience (e.g. beginner, expert)", Required: false},
			},
		},
		{
			name:        "sample",
			description: "A sample prompt for testing",
			template:    "This is a sample prompt with {{variable1}} and {{variable2}}.",
			args: []protocol.PromptArgument{
				{Name: "variable1", Description: "First variable", Required: true},
				{Name: "variable2", Description: "Second variable", Required: false},
			},
		},
	}

	for _, s := range samples {
		if _, err := r.lookup(s.name); err == nil {
			continue
		}
		if err := r.Save(s.name, s.description, s.template, s.args); err != nil {
			logger.Warn("failed to seed sample prompt", s.name, err)
		}
	}
}
