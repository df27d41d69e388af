package service

import (
	"context"

	"notes-manager/internal/model"
)

// NoteService интерфейс для бизнес-логики работы с заметками
type NoteService interface {
	// Create создает новую заметку из валидированных входных данных
	Create(ctx context.Context, input model.CreateNoteInput) (model.Note, error)

	// Get возвращает заметку по её ID
	Get(ctx context.Context, id string) (model.Note, error)

	// List возвращает список всех заметок
	List(ctx context.Context) ([]model.Note, error)

	// Update частично обновляет заметку: изменяются только переданные поля
	Update(ctx context.Context, id string, input model.UpdateNoteInput) (model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Reset очищает хранилище и журнал действий (для тестов и отладки)
	Reset(ctx context.Context) error
}
