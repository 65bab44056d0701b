// Package store описывает внешнее иерархическое key-value хранилище
// документов, адресуемое путями вида links/{slug}.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable сигнализирует транспортную недоступность хранилища.
// Конвейер резолва не ретраит её сам, а отдаёт вызывающей стороне.
var ErrUnavailable = errors.New("document store unavailable")

// Document определяет операции над хранилищем документов.
type Document interface {
	// Read возвращает документ по пути. Отсутствие документа — не ошибка:
	// (nil, false, nil).
	Read(ctx context.Context, path string) (json.RawMessage, bool, error)
	// Write записывает документ по пути, перезаписывая существующий.
	Write(ctx context.Context, path string, value any) error
	// Update сливает частичные поля в существующий документ.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove удаляет документ и всех его потомков.
	Remove(ctx context.Context, path string) error
	// Exists проверяет наличие документа по пути.
	Exists(ctx context.Context, path string) (bool, error)
	// CreateIfAbsent записывает документ только если путь свободен.
	// Возвращает false, если документ уже существовал. Это единственный
	// авторитет по уникальности slug: read-then-write здесь недопустим.
	CreateIfAbsent(ctx context.Context, path string, value any) (bool, error)
	// IncrementField атомарно увеличивает числовое поле документа и
	// возвращает новое значение. Конкурентные вызовы не теряют инкременты.
	IncrementField(ctx context.Context, path, field string, delta int64) (int64, error)
	// List возвращает прямых потомков префикса: ключ — последний сегмент пути.
	List(ctx context.Context, prefix string) (map[string]json.RawMessage, error)
}
