package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeVersionConflict = "VERSION_CONFLICT"
)

type Resource string

const (
	ResourceUser         Resource = "Пользователь"
	ResourceTask         Resource = "Задача"
	ResourceComment      Resource = "Комментарий"
	ResourceNotification Resource = "Уведомление"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
}

func NewForbidden(action string, resource Resource) *BusinessError {
	return NewBusinessError(CodeForbidden,
		fmt.Sprintf("Недостаточно прав: %s (%s)", action, resource),
		ToDetail("action", action),
		ToDetail("resource", resource))
}

func NewConflict(field, value string) *BusinessError {
	return NewBusinessError(CodeConflict,
		fmt.Sprintf("Значение поля '%s' уже занято: %s", field, value),
		ToDetail("field", field),
		ToDetail("value", value))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}

func NewUnauthorized(reason string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, reason)
}

func NewVersionConflict(resource Resource, id string, err error) *BusinessError {
	busErr := NewBusinessError(CodeVersionConflict,
		fmt.Sprintf("%s %s была изменена параллельно, повторите запрос", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
	busErr.Err = err
	return busErr
}

func hasCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, CodeForbidden)
}

func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}
