package fetcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/letsssgooo/pollbot/internal/client"
	"github.com/letsssgooo/pollbot/internal/storage"
)

// TelegramFetcher реализует Fetcher через Telegram Bot API.
type TelegramFetcher struct {
	client         UpdatesClient
	limit          int
	allowedUpdates []string
	store          storage.CursorStore
	onStoreError   func(error)

	mu     sync.Mutex
	cursor Cursor
}

// Option настраивает TelegramFetcher.
type Option func(*TelegramFetcher)

// WithLimit ограничивает размер пачки (1-100, 0 — значение сервера).
func WithLimit(limit int) Option {
	return func(f *TelegramFetcher) { f.limit = limit }
}

// WithAllowedUpdates ограничивает типы обновлений, которые отдаёт сервер.
func WithAllowedUpdates(types ...string) Option {
	return func(f *TelegramFetcher) { f.allowedUpdates = types }
}

// WithCursorStore включает сохранение позиции между перезапусками.
func WithCursorStore(store storage.CursorStore) Option {
	return func(f *TelegramFetcher) { f.store = store }
}

// WithStoreErrorHandler задаёт обработчик ошибок сохранения позиции.
func WithStoreErrorHandler(onErr func(error)) Option {
	return func(f *TelegramFetcher) { f.onStoreError = onErr }
}

// NewTelegramFetcher создаёт фетчер с таймаутом long polling timeout секунд.
func NewTelegramFetcher(client UpdatesClient, timeout int, opts ...Option) *TelegramFetcher {
	f := &TelegramFetcher{
		client:       client,
		cursor:       Cursor{Timeout: timeout},
		onStoreError: func(error) {},
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Restore загружает сохранённый offset. Без хранилища ничего не делает.
func (f *TelegramFetcher) Restore(ctx context.Context) error {
	if f.store == nil {
		return nil
	}

	offset, ok, err := f.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	if !ok {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.cursor.HasOffset || offset > f.cursor.Offset {
		f.cursor.Offset = offset
		f.cursor.HasOffset = true
	}

	return nil
}

// Fetch получает слайс Update с текущей позиции.
// При непустом ответе курсор сдвигается до возврата, то есть до обработки пачки:
// после падения во время обработки эти обновления повторно не придут.
// При ошибке курсор не меняется.
func (f *TelegramFetcher) Fetch(ctx context.Context) ([]client.Update, error) {
	params := f.Cursor().Params()
	params.Limit = f.limit
	params.AllowedUpdates = f.allowedUpdates

	updates, err := f.client.GetUpdates(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return updates, nil
	}

	f.mu.Lock()
	f.cursor = f.cursor.Advance(updates)
	next := f.cursor.Offset
	f.mu.Unlock()

	if f.store != nil {
		if err := f.store.Save(ctx, next); err != nil {
			f.onStoreError(fmt.Errorf("save cursor %d: %w", next, err))
		}
	}

	return updates, nil
}

// Cursor возвращает текущую позицию.
func (f *TelegramFetcher) Cursor() Cursor {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.cursor
}
