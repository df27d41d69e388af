package repository

import (
	"context"

	"notes-manager/internal/model"
)

// NoteRepository интерфейс для работы с заметками в хранилище.
// Чистый контейнер данных: идентификаторы и временные метки
// назначает сервисный слой.
type NoteRepository interface {
	// Save сохраняет заметку (вставка или перезапись по ID)
	Save(ctx context.Context, note model.Note) error

	// GetByID возвращает заметку по её ID
	GetByID(ctx context.Context, id string) (model.Note, error)

	// Has проверяет существование заметки с указанным ID
	Has(ctx context.Context, id string) bool

	// List возвращает список всех заметок в порядке вставки
	List(ctx context.Context) ([]model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Clear удаляет все заметки из хранилища
	Clear(ctx context.Context) error
}
