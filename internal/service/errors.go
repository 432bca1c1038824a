package service

import (
	"errors"
	"fmt"
)

const CodeValidation = "VALIDATION_ERROR"

var ErrEmptyDescription = errors.New("описание задачи не указано")

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
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, err error, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
		Err:     err,
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewValidationError(field, reason string, err error) *BusinessError {
	return NewBusinessError(
		CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		err,
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}
