package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteInputValid(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"note": "buy milk"}`, true},
		{`{"note": "0"}`, true},
		{`{"note": " "}`, true},
		{`{"note": ""}`, false},
		{`{"note": null}`, false},
		{`{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			var in NoteInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			assert.Equal(t, tc.want, in.Valid())
		})
	}
}

func TestDocumentNotes(t *testing.T) {
	notes, err := Document(` ["a", 1, {"k": true}] `).Notes()
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.JSONEq(t, `"a"`, string(notes[0]))
	assert.JSONEq(t, `{"k": true}`, string(notes[2]))

	notes, err = EmptyDocument().Notes()
	require.NoError(t, err)
	assert.Empty(t, notes)

	for _, doc := range []string{`{"a": 1}`, `null`, `"text"`, `3`, ``} {
		_, err := Document(doc).Notes()
		assert.ErrorIs(t, err, ErrNotArray, doc)
	}
}

func TestDocumentAppend(t *testing.T) {
	doc, err := EmptyDocument().Append("a")
	require.NoError(t, err)
	doc, err = doc.Append("b")
	require.NoError(t, err)
	assert.JSONEq(t, `["a", "b"]`, string(doc))

	// existing values of other types survive untouched
	doc, err = Document(`[1, "x"]`).Append("x")
	require.NoError(t, err)
	assert.JSONEq(t, `[1, "x", "x"]`, string(doc))

	_, err = Document(`{"notes": []}`).Append("a")
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestNewDocumentNil(t *testing.T) {
	doc, err := NewDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(doc))
}
