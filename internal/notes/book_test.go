package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"jotter/internal/database/models"
	"jotter/internal/database/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newFileBook(t testing.TB) (*Book, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	return NewBook(repositories.NewFileNoteRepository(path)), path
}

func decodeNotes(t testing.TB, doc models.Document) []string {
	t.Helper()
	got := []string{}
	require.NoError(t, json.Unmarshal(doc, &got))
	return got
}

func TestBookColdStart(t *testing.T) {
	ctx := context.Background()
	book, path := newFileBook(t)

	doc, err := book.List(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(doc))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "listing must not create the file")

	require.NoError(t, book.Add(ctx, "buy milk"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["buy milk"]`, string(b))
}

func TestBookPreservesOrderAndDuplicates(t *testing.T) {
	ctx := context.Background()
	book, _ := newFileBook(t)

	for _, n := range []string{"b", "a", "b"} {
		require.NoError(t, book.Add(ctx, n))
	}
	doc, err := book.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, decodeNotes(t, doc))
}

func TestBookAddToNonArrayFails(t *testing.T) {
	ctx := context.Background()
	book, path := newFileBook(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	err := book.Add(ctx, "x")
	assert.ErrorIs(t, err, models.ErrNotArray)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(b))
}

func TestBookAddToMalformedFileFails(t *testing.T) {
	ctx := context.Background()
	book, path := newFileBook(t)
	require.NoError(t, os.WriteFile(path, []byte(`["a"`), 0o644))

	var syntaxErr *json.SyntaxError
	err := book.Add(ctx, "x")
	require.Error(t, err)
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestBookConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	book, _ := newFileBook(t)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				assert.NoError(t, book.Add(ctx, fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	doc, err := book.List(ctx)
	require.NoError(t, err)
	got := decodeNotes(t, doc)
	assert.Len(t, got, workers*perWorker)

	// each writer's notes keep their relative order
	next := make(map[int]int)
	for _, n := range got {
		var w, i int
		_, err := fmt.Sscanf(n, "w%d-%d", &w, &i)
		require.NoError(t, err)
		assert.Equal(t, next[w], i, "worker %d out of order", w)
		next[w] = i + 1
	}
}

func TestBookAppendThenListProperty(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(t *rapid.T) {
		runDir, err := os.MkdirTemp(dir, "run-*")
		if err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		book := NewBook(repositories.NewFileNoteRepository(filepath.Join(runDir, "notes.json")))
		ctx := context.Background()

		for _, n := range rapid.SliceOf(rapid.StringMatching(`[a-z ]{1,12}`)).Draw(t, "existing") {
			if err := book.Add(ctx, n); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}

		before, err := book.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		again, err := book.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if string(before) != string(again) {
			t.Fatalf("listing twice differs: %s vs %s", before, again)
		}

		note := rapid.StringMatching(`[A-Za-z0-9 ]{1,30}`).Draw(t, "note")
		if err := book.Add(ctx, note); err != nil {
			t.Fatalf("add: %v", err)
		}
		after, err := book.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}

		var prev, next []string
		if err := json.Unmarshal(before, &prev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if err := json.Unmarshal(after, &next); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(next) != len(prev)+1 {
			t.Fatalf("length %d, want %d", len(next), len(prev)+1)
		}
		if next[len(next)-1] != note {
			t.Fatalf("last note %q, want %q", next[len(next)-1], note)
		}
	})
}
