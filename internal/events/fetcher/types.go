package fetcher

import (
	"context"

	"github.com/letsssgooo/pollbot/internal/client"
)

// Fetcher  определяет основной интерфейс для получения обновлений.
type Fetcher interface {
	// Restore восстанавливает позицию из хранилища, если оно задано.
	Restore(ctx context.Context) error

	// Fetch получает очередную пачку Update и сдвигает курсор за последнее из них.
	Fetch(ctx context.Context) ([]client.Update, error)

	// Cursor возвращает текущую позицию.
	Cursor() Cursor
}

// UpdatesClient — часть клиента Bot API, нужная для long polling.
type UpdatesClient interface {
	GetUpdates(ctx context.Context, params client.GetUpdatesParams) ([]client.Update, error)
}

// DefaultTimeout — серверный таймаут long polling в секундах.
const DefaultTimeout = 30

// Cursor — позиция в ленте обновлений.
// Пока HasOffset == false, offset в запрос не передаётся.
type Cursor struct {
	Offset    int
	HasOffset bool
	Timeout   int
}

// Params собирает параметры запроса getUpdates.
func (c Cursor) Params() client.GetUpdatesParams {
	params := client.GetUpdatesParams{Timeout: c.Timeout}
	if c.HasOffset {
		offset := c.Offset
		params.Offset = &offset
	}

	return params
}

// Advance возвращает курсор, указывающий за максимальный update_id пачки.
// Курсор никогда не уменьшается.
func (c Cursor) Advance(updates []client.Update) Cursor {
	for _, update := range updates {
		next := update.UpdateID + 1
		if !c.HasOffset || next > c.Offset {
			c.Offset = next
			c.HasOffset = true
		}
	}

	return c
}
