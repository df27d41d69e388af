package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-manager/internal/converter"
)

func TestNotesModifiedSince(t *testing.T) {
	notes := []converter.NoteResponse{
		{ID: "old", LastModified: "2024-05-01T10:00:00.000Z"},
		{ID: "fresh", LastModified: "2024-05-01T12:00:00.000Z"},
	}

	cutoff, err := converter.ParseLastModified("2024-05-01T11:00:00.000Z")
	require.NoError(t, err)

	filtered, err := notesModifiedSince(notes, cutoff)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "fresh", filtered[0].ID)
}

func TestNotesModifiedSince_BadTimestamp(t *testing.T) {
	notes := []converter.NoteResponse{
		{ID: "broken", LastModified: "not-a-timestamp"},
	}

	_, err := notesModifiedSince(notes, time.Now())
	assert.Error(t, err)
}

func TestEventsURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/notes/events"},
		{"https://notes.example.com", "wss://notes.example.com/notes/events"},
		{"http://localhost:8080/", "ws://localhost:8080/notes/events"},
	}

	for _, tt := range tests {
		got, err := eventsURL(tt.addr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
