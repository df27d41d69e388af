package audit

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Action тип действия в журнале аудита (закрытое перечисление)
type Action string

const (
	// ActionCreated заметка создана
	ActionCreated Action = "created"

	// ActionUpdated заметка обновлена
	ActionUpdated Action = "updated"

	// ActionDeleted заметка удалена
	ActionDeleted Action = "deleted"

	// ActionListViewed просмотрен список заметок
	ActionListViewed Action = "list-viewed"

	// ActionDetailsViewed просмотрена отдельная заметка
	ActionDetailsViewed Action = "details-viewed"

	// ActionAppStarted приложение запущено
	ActionAppStarted Action = "app-started"

	// ActionDBReset хранилище сброшено
	ActionDBReset Action = "db-reset"
)

// RegisterWithValidator регистрирует в валидаторе кастомную проверку типа действия
func RegisterWithValidator(v *validator.Validate) error {
	return v.RegisterValidation("action_type", validateActionType)
}

func validateActionType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch Action(fl.Field().String()) {
	case ActionCreated, ActionUpdated, ActionDeleted,
		ActionListViewed, ActionDetailsViewed,
		ActionAppStarted, ActionDBReset:
		return true
	}
	return false
}
