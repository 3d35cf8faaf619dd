package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"jotter/internal/database/models"
	"os"
	"path/filepath"
	"strconv"
)

// NoteRepository loads and saves the whole notes collection as one unit.
type NoteRepository interface {
	Load(ctx context.Context) (models.Document, error)
	Save(ctx context.Context, doc models.Document) error
	Health() map[string]string
}

const notesTempPrefix = "notes-tmp-"

type fileNoteRepository struct {
	path string
}

// NewFileNoteRepository stores the collection as a JSON array in the file at
// path. Relative paths resolve against the working directory.
func NewFileNoteRepository(path string) NoteRepository {
	return &fileNoteRepository{path: path}
}

func (r *fileNoteRepository) Load(ctx context.Context) (models.Document, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.EmptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading notes file %s: %w", r.path, err)
	}
	var raw json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("error decoding notes file %s: %w", r.path, err)
	}
	return models.Document(raw), nil
}

func (r *fileNoteRepository) Save(ctx context.Context, doc models.Document) error {
	if !json.Valid(doc) {
		return fmt.Errorf("error saving notes file %s: invalid JSON document", r.path)
	}
	if err := writeFileAtomic(r.path, doc, 0o644); err != nil {
		return fmt.Errorf("error saving notes file %s: %w", r.path, err)
	}
	return nil
}

func (r *fileNoteRepository) Health() map[string]string {
	stats := map[string]string{
		"backend": "file",
		"path":    r.path,
	}
	info, err := os.Stat(r.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		stats["status"] = "up"
		stats["message"] = "notes file not created yet"
	case err != nil:
		stats["status"] = "down"
		stats["error"] = err.Error()
	default:
		stats["status"] = "up"
		stats["size"] = strconv.FormatInt(info.Size(), 10)
	}
	return stats
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it over filename, so readers never observe a partial write.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), notesTempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	return os.Rename(tmp.Name(), filename)
}

type postgresNoteRepository struct {
	db   *sql.DB
	name string
}

// NewPostgresNoteRepository keeps the collection as a single json row keyed
// by name in the note_documents table.
func NewPostgresNoteRepository(db *sql.DB, name string) NoteRepository {
	return &postgresNoteRepository{db: db, name: name}
}

func (r *postgresNoteRepository) Load(ctx context.Context) (models.Document, error) {
	var body []byte
	query := `SELECT body FROM note_documents WHERE name = $1`
	err := r.db.QueryRowContext(ctx, query, r.name).Scan(&body)
	if err == sql.ErrNoRows {
		return models.EmptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting notes: %w", err)
	}
	return models.Document(body), nil
}

func (r *postgresNoteRepository) Save(ctx context.Context, doc models.Document) error {
	query := `
		INSERT INTO note_documents (name, body, updated_at)
		VALUES ($1, $2::json, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, r.name, string(doc)); err != nil {
		return fmt.Errorf("error saving notes: %w", err)
	}
	return nil
}

func (r *postgresNoteRepository) Health() map[string]string {
	// liveness is reported by database.Service
	return map[string]string{
		"backend":  "postgres",
		"document": r.name,
	}
}
