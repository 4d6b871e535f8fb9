package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("запись не найдена")
var ErrNothingToUpdate = errors.New("нет полей для обновления")

// DuplicateError — нарушение уникальности с указанием поля,
// чтобы handler мог вернуть осмысленное сообщение вместо
// разбора текста ошибки БД
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("значение поля %s уже занято", e.Field)
}

func IsDuplicate(err error) (*DuplicateError, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
