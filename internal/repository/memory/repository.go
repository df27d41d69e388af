package memory

import (
	"context"
	"errors"
	"sync"

	"notes-manager/internal/model"
	"notes-manager/internal/repository"
)

// ErrNoteNotFound возвращается, когда заметка не найдена
var ErrNoteNotFound = errors.New("note not found")

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	mu    sync.RWMutex
	notes map[string]model.Note
	order []string // Порядок вставки ключей для детерминированного List
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return &repo{
		notes: make(map[string]model.Note),
	}
}

// Save сохраняет заметку (вставка или перезапись по ID)
func (r *repo) Save(ctx context.Context, note model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[note.ID]; !exists {
		r.order = append(r.order, note.ID)
	}
	r.notes[note.ID] = note

	return nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, ErrNoteNotFound
	}

	return note, nil
}

// Has проверяет существование заметки с указанным ID
func (r *repo) Has(ctx context.Context, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.notes[id]
	return exists
}

// List возвращает список всех заметок в порядке вставки
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]model.Note, 0, len(r.notes))
	for _, id := range r.order {
		if note, exists := r.notes[id]; exists {
			notes = append(notes, note)
		}
	}

	return notes, nil
}

// Delete удаляет заметку по ID
func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return ErrNoteNotFound
	}

	delete(r.notes, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Clear удаляет все заметки из хранилища
func (r *repo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes = make(map[string]model.Note)
	r.order = nil

	return nil
}
