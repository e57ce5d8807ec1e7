// Package errs содержит ошибки-сентинелы, общие для хранилища, сервисов и HTTP слоя.
package errs

import "errors"

var (
	// ErrValidation - некорректные или отсутствующие входные данные (400).
	ErrValidation = errors.New("validation error")

	// ErrNotFound - проблема или другая сущность не найдена (404).
	ErrNotFound = errors.New("not found")

	// ErrForbidden - роль не позволяет выполнить действие (403).
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated - нет принципала или токен невалиден (401).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrVersionConflict - документ изменён параллельно, запись нужно повторить.
	ErrVersionConflict = errors.New("version conflict")

	// ErrStorage - сбой хранилища (500).
	ErrStorage = errors.New("storage error")
)
