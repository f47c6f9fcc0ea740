package storage

import (
	"context"
	"errors"
)

// ErrNegativeOffset возвращается при попытке сохранить отрицательный offset.
var ErrNegativeOffset = errors.New("negative offset")

// CursorStore определяет интерфейс для хранения позиции long polling между перезапусками.
type CursorStore interface {
	// Load возвращает сохранённый offset. ok == false, если ничего не сохранено.
	Load(ctx context.Context) (offset int, ok bool, err error)

	// Save сохраняет offset следующего ожидаемого обновления.
	Save(ctx context.Context, offset int) error
}
