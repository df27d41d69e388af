package notes

import (
	"context"
	"errors"
	"strings"
	"time"

	"notes-manager/internal/audit"
	"notes-manager/internal/model"
	"notes-manager/internal/repository"
	"notes-manager/internal/repository/memory"
	svc "notes-manager/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	auditLog       audit.Recorder
	events         *EventService
	validate       *validator.Validate

	now   func() time.Time // Источник времени (подменяется в тестах)
	newID func() string    // Генератор ID заметок (подменяется в тестах)
}

// Option настраивает сервис заметок
type Option func(*service)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithIDGenerator подменяет генератор ID заметок
func WithIDGenerator(newID func() string) Option {
	return func(s *service) {
		s.newID = newID
	}
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками.
// Хранилище и журнал действий принадлежат сервису: никакой другой
// компонент не изменяет их напрямую.
func NewNoteService(
	noteRepository repository.NoteRepository,
	auditLog audit.Recorder,
	events *EventService,
	validate *validator.Validate,
	opts ...Option,
) svc.NoteService {
	s := &service{
		noteRepository: noteRepository,
		auditLog:       auditLog,
		events:         events,
		validate:       validate,
		now: func() time.Time {
			// UTC с миллисекундной точностью
			return time.Now().UTC().Truncate(time.Millisecond)
		},
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create создает новую заметку из валидированных входных данных
func (s *service) Create(ctx context.Context, input model.CreateNoteInput) (model.Note, error) {
	if err := s.validate.Struct(&input); err != nil {
		return model.Note{}, model.NewValidationError("invalid note data", model.ValidationDetails(err))
	}

	now := s.now()
	note := model.Note{
		ID:           s.newID(),
		Title:        strings.TrimSpace(input.Title),
		Content:      strings.TrimSpace(input.Content),
		CreatedAt:    now,
		LastModified: now,
	}

	if err := s.noteRepository.Save(ctx, note); err != nil {
		return model.Note{}, model.WrapUnknown(err)
	}

	// Запись в журнал только после успешной мутации.
	// Содержание заметки в журнал не попадает.
	s.auditLog.Record(audit.ActionCreated, map[string]string{
		"id":    note.ID,
		"title": note.Title,
	})
	s.events.Publish(NoteEvent{Type: EventCreated, Note: note})

	return note, nil
}

// Get возвращает заметку по её ID
func (s *service) Get(ctx context.Context, id string) (model.Note, error) {
	note, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNoteNotFound) {
			return model.Note{}, model.NewNotFoundError(id)
		}
		return model.Note{}, model.WrapUnknown(err)
	}

	return note, nil
}

// List возвращает список всех заметок
func (s *service) List(ctx context.Context) ([]model.Note, error) {
	notes, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, model.WrapUnknown(err)
	}

	s.auditLog.Record(audit.ActionListViewed, nil)

	return notes, nil
}

// Update частично обновляет заметку: изменяются только переданные поля
func (s *service) Update(ctx context.Context, id string, input model.UpdateNoteInput) (model.Note, error) {
	existing, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNoteNotFound) {
			return model.Note{}, model.NewNotFoundError(id)
		}
		return model.Note{}, model.WrapUnknown(err)
	}

	if err := s.validate.Struct(&input); err != nil {
		return model.Note{}, model.NewValidationError("invalid note data", model.ValidationDetails(err))
	}

	// Изменяем только переданные поля на копии существующей заметки
	updated := existing
	updatedFields := make([]string, 0, 2)
	if input.Title != nil {
		updated.Title = strings.TrimSpace(*input.Title)
		updatedFields = append(updatedFields, "title")
	}
	if input.Content != nil {
		updated.Content = strings.TrimSpace(*input.Content)
		updatedFields = append(updatedFields, "content")
	}
	updated.LastModified = s.now()

	if err := s.noteRepository.Save(ctx, updated); err != nil {
		return model.Note{}, model.WrapUnknown(err)
	}

	s.auditLog.Record(audit.ActionUpdated, map[string]string{
		"id":             updated.ID,
		"updated_fields": strings.Join(updatedFields, ","),
	})
	s.events.Publish(NoteEvent{Type: EventUpdated, Note: updated})

	return updated, nil
}

// Delete удаляет заметку по ID
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.noteRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, memory.ErrNoteNotFound) {
			return model.NewNotFoundError(id)
		}
		return model.WrapUnknown(err)
	}

	s.auditLog.Record(audit.ActionDeleted, map[string]string{"id": id})
	s.events.Publish(NoteEvent{Type: EventDeleted, Note: model.Note{ID: id}})

	return nil
}

// Reset очищает хранилище и журнал действий, после чего фиксирует сброс
func (s *service) Reset(ctx context.Context) error {
	if err := s.noteRepository.Clear(ctx); err != nil {
		return model.WrapUnknown(err)
	}

	s.auditLog.Clear()
	s.auditLog.Record(audit.ActionDBReset, nil)

	return nil
}
