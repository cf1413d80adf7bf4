package model

import "errors"

// Ошибки предметной области. Проверяются через errors.Is, поверх них
// допускается оборачивание с уточнением контекста.
var (
	// ErrNotFound возвращается, если заказ, позиция или сотрудник не найдены.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus возвращается для статуса вне перечисленных значений.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrValidation возвращается при некорректных входных данных.
	ErrValidation = errors.New("validation failed")
	// ErrStaleRevision возвращается при попытке сохранить заказ по устаревшей ревизии.
	ErrStaleRevision = errors.New("stale revision")
	// ErrInvalidTransition возвращается, если политика переходов запрещает смену статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
)
