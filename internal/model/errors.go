package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode машиночитаемый код ошибки
type ErrorCode string

const (
	// CodeValidation некорректные входные данные клиента
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	// CodeNotFound запрошенная заметка не существует
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeInternal неожиданная внутренняя ошибка
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error типизированная ошибка сервиса с кодом и деталями
type Error struct {
	Code    ErrorCode         // Машиночитаемый код
	Message string            // Человекочитаемое сообщение
	Details map[string]string // Детали на уровне полей
	cause   error             // Исходная ошибка (для INTERNAL_ERROR)
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus возвращает рекомендуемый HTTP статус для кода ошибки
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError создает ошибку валидации с деталями по полям
func NewValidationError(message string, details map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError создает ошибку для отсутствующей заметки
func NewNotFoundError(id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("note with id %q not found", id),
		Details: map[string]string{"id": id},
	}
}

// NewInternalError оборачивает неожиданную ошибку, сохраняя исходное сообщение
func NewInternalError(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "internal error",
		cause:   err,
	}
}

// WrapUnknown оборачивает неизвестную ошибку как внутреннюю.
// Уже типизированные ошибки возвращаются без повторного оборачивания.
func WrapUnknown(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return NewInternalError(err)
}
