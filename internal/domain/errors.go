package domain

import "errors"

// Типизированные ошибки ядра. Хранилище и шлюз не глотают ошибки —
// они возвращают одну из этих (обёрнутую контекстом через %w),
// а HTTP-слой переводит её в код ответа.
var (
	// ErrNotFound — неизвестный id или название.
	ErrNotFound = errors.New("not found")

	// ErrConflict — нарушение уникальности (например, дубликат email).
	ErrConflict = errors.New("conflict")

	// ErrValidation — отсутствующие или некорректные обязательные поля.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized — нет валидной сессии для защищённого действия.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream — сбой внешнего шлюза метаданных.
	ErrUpstream = errors.New("upstream failure")
)
