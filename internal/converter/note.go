package converter

import (
	"time"

	"notes-manager/internal/model"
)

// lastModifiedLayout формат ISO-8601 с миллисекундной точностью
const lastModifiedLayout = "2006-01-02T15:04:05.000Z07:00"

// NoteResponse представление заметки в JSON API
type NoteResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	LastModified string `json:"lastModified"`
}

// ModelToResponse конвертирует domain модель Note в JSON представление
func ModelToResponse(note model.Note) NoteResponse {
	var lastModified string
	if !note.LastModified.IsZero() {
		lastModified = note.LastModified.UTC().Format(lastModifiedLayout)
	}

	return NoteResponse{
		ID:           note.ID,
		Title:        note.Title,
		Content:      note.Content,
		LastModified: lastModified,
	}
}

// ModelsToResponses конвертирует слайс domain моделей в слайс JSON представлений
func ModelsToResponses(notes []model.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = ModelToResponse(note)
	}

	return responses
}

// ParseLastModified разбирает значение lastModified из JSON представления
func ParseLastModified(value string) (time.Time, error) {
	return time.Parse(lastModifiedLayout, value)
}
