package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/letsssgooo/pollbot/internal/client"
	"github.com/letsssgooo/pollbot/internal/events"
	"github.com/letsssgooo/pollbot/internal/events/dispatcher"
	"github.com/letsssgooo/pollbot/internal/events/fetcher"
	"github.com/letsssgooo/pollbot/internal/storage"
)

// Client — часть клиента Bot API, нужная боту.
type Client interface {
	fetcher.UpdatesClient
	GetMe(ctx context.Context) (*client.BotInfo, error)
}

// Bot связывает клиента, фетчер и диспетчер событий.
type Bot struct {
	me         client.BotInfo
	dispatcher *dispatcher.Dispatcher
}

type options struct {
	timeout        int
	limit          int
	allowedUpdates []string
	cursorStore    func(me client.BotInfo) storage.CursorStore
	logger         *slog.Logger
	dispatcherOpts []dispatcher.Option
}

// Option настраивает Bot.
type Option func(*options)

// WithPollTimeout задаёт таймаут long polling в секундах.
func WithPollTimeout(seconds int) Option {
	return func(o *options) { o.timeout = seconds }
}

// WithLimit ограничивает размер пачки обновлений.
func WithLimit(limit int) Option {
	return func(o *options) { o.limit = limit }
}

// WithAllowedUpdates ограничивает типы обновлений на стороне сервера.
func WithAllowedUpdates(types ...string) Option {
	return func(o *options) { o.allowedUpdates = types }
}

// WithCursorStore включает сохранение позиции. Фабрика получает сведения о боте,
// чтобы хранилище могло различать ботов.
func WithCursorStore(factory func(me client.BotInfo) storage.CursorStore) Option {
	return func(o *options) { o.cursorStore = factory }
}

// WithLogger задаёт логгер бота и диспетчера.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDispatcherOptions передаёт опции диспетчеру.
func WithDispatcherOptions(opts ...dispatcher.Option) Option {
	return func(o *options) { o.dispatcherOpts = append(o.dispatcherOpts, opts...) }
}

// NewBot создаёт нового бота. Сведения о боте запрашиваются один раз, здесь.
func NewBot(ctx context.Context, c Client, opts ...Option) (*Bot, error) {
	o := options{
		timeout: fetcher.DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	me, err := c.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bot info: %w", err)
	}
	o.logger.Info("bot identity loaded", "id", me.ID, "username", me.Username)

	fetcherOpts := []fetcher.Option{
		fetcher.WithLimit(o.limit),
		fetcher.WithAllowedUpdates(o.allowedUpdates...),
		fetcher.WithStoreErrorHandler(func(err error) {
			o.logger.Warn("cursor not saved", "error", err)
		}),
	}
	if o.cursorStore != nil {
		fetcherOpts = append(fetcherOpts, fetcher.WithCursorStore(o.cursorStore(*me)))
	}

	dispatcherOpts := append([]dispatcher.Option{dispatcher.WithLogger(o.logger)}, o.dispatcherOpts...)

	return &Bot{
		me: *me,
		dispatcher: dispatcher.New(
			fetcher.NewTelegramFetcher(c, o.timeout, fetcherOpts...),
			dispatcherOpts...,
		),
	}, nil
}

// Me возвращает сведения о боте, полученные при создании.
func (b *Bot) Me() client.BotInfo {
	return b.me
}

// Dispatcher возвращает диспетчер событий.
func (b *Bot) Dispatcher() *dispatcher.Dispatcher {
	return b.dispatcher
}

// On регистрирует обработчик для eventType.
func (b *Bot) On(eventType events.EventType, handler dispatcher.Handler) dispatcher.HandlerID {
	return b.dispatcher.Register(eventType, handler)
}

// OnMessage регистрирует обработчик новых сообщений.
func (b *Bot) OnMessage(handler func(ctx context.Context, msg *client.Message) error) dispatcher.HandlerID {
	return dispatcher.Handle(b.dispatcher, func(ctx context.Context, e events.MessageEvent) error {
		return handler(ctx, e.Message)
	})
}

// OnEditedMessage регистрирует обработчик отредактированных сообщений.
func (b *Bot) OnEditedMessage(handler func(ctx context.Context, msg *client.Message) error) dispatcher.HandlerID {
	return dispatcher.Handle(b.dispatcher, func(ctx context.Context, e events.EditedMessageEvent) error {
		return handler(ctx, e.Message)
	})
}

// OnCallbackQuery регистрирует обработчик нажатий inline кнопок.
func (b *Bot) OnCallbackQuery(
	handler func(ctx context.Context, query *client.CallbackQuery) error,
) dispatcher.HandlerID {
	return dispatcher.Handle(b.dispatcher, func(ctx context.Context, e events.CallbackQueryEvent) error {
		return handler(ctx, e.CallbackQuery)
	})
}

// Run запускает бота (long polling) и блокируется до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	return b.dispatcher.Start(ctx)
}
