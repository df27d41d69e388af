package model

import "time"

// Note представляет заметку (доменная модель)
type Note struct {
	ID           string    // UUID заметки
	Title        string    // Заголовок заметки
	Content      string    // Содержание заметки
	CreatedAt    time.Time // Дата создания
	LastModified time.Time // Дата последнего изменения
}

// IsEmpty проверяет, пуста ли заметка
func (n *Note) IsEmpty() bool {
	return n.ID == "" && n.Title == "" && n.Content == ""
}

// CreateNoteInput входные данные для создания заметки.
// Оба поля обязательны и не могут состоять только из пробельных символов.
type CreateNoteInput struct {
	Title   string `json:"title" validate:"required,notblank"`
	Content string `json:"content" validate:"required,notblank"`
}

// UpdateNoteInput входные данные для частичного обновления заметки.
// nil означает "поле не передано" - такое поле не изменяется.
type UpdateNoteInput struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,notblank"`
	Content *string `json:"content,omitempty" validate:"omitempty,notblank"`
}

// IsEmpty проверяет, что не передано ни одно поле для обновления
func (u *UpdateNoteInput) IsEmpty() bool {
	return u.Title == nil && u.Content == nil
}
