// Package notes serialises access to the notes collection.
package notes

import (
	"context"
	"jotter/internal/database/models"
	"jotter/internal/database/repositories"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

// Book is the only path to the store within a process. Its mutex makes an
// append's load, append and save a single step relative to other requests.
type Book struct {
	mu   sync.Mutex
	repo repositories.NoteRepository
}

func NewBook(repo repositories.NoteRepository) *Book {
	return &Book{repo: repo}
}

// List returns the stored collection as it was loaded.
func (b *Book) List(ctx context.Context) (models.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.repo.Load(ctx)
}

// Add appends note to the end of the collection and persists the result.
func (b *Book) Add(ctx context.Context, note string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}
	next, err := doc.Append(note)
	if err != nil {
		return err
	}
	if err := b.repo.Save(ctx, next); err != nil {
		return err
	}
	log.Debugf("note appended (%d bytes)", len(note))
	return nil
}

func (b *Book) Health() map[string]string {
	return b.repo.Health()
}
