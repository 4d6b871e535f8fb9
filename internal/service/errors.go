package service

import "fmt"

// BusinessError — ошибка бизнес-логики со структурным кодом.
// Перевод кода в HTTP-статус делает только слой handlers.
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
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

const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAlreadyExists      = "ALREADY_EXISTS"
)

func NewNotFound(resource string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource},
	}
}

func NewValidationError(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewForbidden(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInvalidCredentials() *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func NewAlreadyExists(field, message string) *BusinessError {
	return &BusinessError{
		Code:    CodeAlreadyExists,
		Message: message,
		Details: map[string]any{"field": field},
	}
}
