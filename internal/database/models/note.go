package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotArray = errors.New("notes document is not a JSON array")

// NoteInput is the body accepted when appending a note.
type NoteInput struct {
	Note string `json:"note"`
}

// Valid reports whether a note was supplied. A missing field, null and the
// empty string all leave Note empty.
func (n NoteInput) Valid() bool {
	return n.Note != ""
}

// Document is the whole persisted notes collection. It is normally a JSON
// array, but whatever valid JSON the store holds is passed through as-is.
type Document json.RawMessage

func EmptyDocument() Document {
	return Document("[]")
}

// Notes decodes the document as an ordered list of raw note values.
func (d Document) Notes() ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	notes := []json.RawMessage{}
	if err := json.Unmarshal(trimmed, &notes); err != nil {
		return nil, fmt.Errorf("error decoding notes: %w", err)
	}
	return notes, nil
}

// Append returns a new document holding d's notes followed by note.
func (d Document) Append(note string) (Document, error) {
	notes, err := d.Notes()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("error encoding note: %w", err)
	}
	return NewDocument(append(notes, raw))
}

func NewDocument(notes []json.RawMessage) (Document, error) {
	if notes == nil {
		notes = []json.RawMessage{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("error encoding notes: %w", err)
	}
	return Document(b), nil
}
