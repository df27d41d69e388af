// Package audit - append-only журнал действий в памяти
package audit

import (
	"maps"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Entry запись журнала аудита. После записи в журнал не изменяется.
type Entry struct {
	ID        string            `json:"id" validate:"required"`
	Action    Action            `json:"action" validate:"required,action_type"`
	Timestamp time.Time         `json:"timestamp" validate:"required"`
	Details   map[string]string `json:"details,omitempty"`
}

// Recorder интерфейс журнала действий.
// Record работает по принципу fire-and-forget: ошибки записи
// никогда не доходят до вызывающей стороны.
type Recorder interface {
	// Record добавляет запись о действии (best-effort)
	Record(action Action, details map[string]string)

	// List возвращает копию всех записей в порядке добавления
	List() []Entry

	// ListByAction возвращает записи с указанным типом действия
	ListByAction(action Action) []Entry

	// Clear очищает журнал (для тестов и сброса)
	Clear()
}

var _ Recorder = (*memoryLog)(nil)

type memoryLog struct {
	mu       sync.RWMutex
	entries  []Entry
	validate *validator.Validate

	now   func() time.Time // Источник времени (подменяется в тестах)
	newID func() string    // Генератор ID записей (подменяется в тестах)
}

// Option настраивает журнал аудита
type Option func(*memoryLog)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(l *memoryLog) {
		l.now = now
	}
}

// WithIDGenerator подменяет генератор ID записей
func WithIDGenerator(newID func() string) Option {
	return func(l *memoryLog) {
		l.newID = newID
	}
}

// NewLog создает новый in-memory журнал действий.
// Валидатор должен иметь зарегистрированную проверку action_type.
func NewLog(validate *validator.Validate, opts ...Option) Recorder {
	l := &memoryLog{
		validate: validate,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
		newID: func() string {
			return ulid.Make().String()
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Record добавляет запись о действии (best-effort)
func (l *memoryLog) Record(action Action, details map[string]string) {
	// Сбой журналирования не должен влиять на основную операцию
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("audit record discarded after panic")
		}
	}()

	entry := Entry{
		ID:        l.newID(),
		Action:    action,
		Timestamp: l.now(),
	}
	if len(details) > 0 {
		entry.Details = maps.Clone(details)
	}

	if err := l.validate.Struct(&entry); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Msg("invalid audit entry discarded")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// List возвращает копию всех записей в порядке добавления
func (l *memoryLog) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	// Details тоже копируются, чтобы вызывающая сторона не могла изменить журнал
	for i := range entries {
		entries[i].Details = maps.Clone(entries[i].Details)
	}
	return entries
}

// ListByAction возвращает записи с указанным типом действия
func (l *memoryLog) ListByAction(action Action) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, 0)
	for _, entry := range l.entries {
		if entry.Action == action {
			entry.Details = maps.Clone(entry.Details)
			entries = append(entries, entry)
		}
	}
	return entries
}

// Clear очищает журнал
func (l *memoryLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
