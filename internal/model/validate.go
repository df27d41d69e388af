package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator создает валидатор с зарегистрированными кастомными правилами
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
		return nil, err
	}

	return v, nil
}

// validateNotBlank проверяет, что строка не пуста после удаления пробельных символов
func validateNotBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidationDetails преобразует ошибки валидатора в детали по полям
func ValidationDetails(err error) map[string]string {
	details := map[string]string{}

	valErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["input"] = err.Error()
		return details
	}

	for _, fe := range valErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[field] = field + " is required"
		case "notblank":
			details[field] = field + " must not be empty or whitespace-only"
		default:
			details[field] = field + " is invalid"
		}
	}

	return details
}
