package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/letsssgooo/pollbot/internal/client"
	"github.com/letsssgooo/pollbot/internal/events"
	"github.com/letsssgooo/pollbot/internal/events/fetcher"
	"github.com/letsssgooo/pollbot/internal/metrics"
)

// Dispatcher крутит цикл long polling и раздаёт события обработчикам.
//
// Обработчики вызываются синхронно, по одному, в порядке регистрации:
// медленный обработчик задерживает следующий запрос getUpdates.
// По умолчанию первая ошибка обработчика останавливает цикл и возвращается из Start.
// С WithHandlerIsolation ошибки и паники обработчиков логируются, а цикл продолжается.
type Dispatcher struct {
	fetcher  fetcher.Fetcher
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	onError  func(error)
	isolate  bool
	retry    backoff.BackOff

	running atomic.Bool
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

// WithLogger задаёт логгер.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics включает запись метрик.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithOnError задаёт обработчик некритичных ошибок: сбоев getUpdates
// и изолированных ошибок обработчиков.
func WithOnError(onError func(error)) Option {
	return func(d *Dispatcher) { d.onError = onError }
}

// WithHandlerIsolation включает изоляцию обработчиков.
func WithHandlerIsolation() Option {
	return func(d *Dispatcher) { d.isolate = true }
}

// WithRetryBackoff задаёт паузы между повторами после ошибок getUpdates.
// Без этой опции повтор выполняется сразу, темп задаёт только таймаут long polling.
func WithRetryBackoff(b backoff.BackOff) Option {
	return func(d *Dispatcher) { d.retry = b }
}

// WithRegistry задаёт общий Registry.
func WithRegistry(r *Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// New создаёт Dispatcher поверх фетчера f.
func New(f fetcher.Fetcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		fetcher:  f,
		registry: NewRegistry(),
		logger:   slog.Default(),
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Register добавляет обработчик для eventType. handler не может быть nil.
func (d *Dispatcher) Register(eventType events.EventType, handler Handler) HandlerID {
	return d.registry.Register(eventType, handler)
}

// Remove удаляет обработчик.
func (d *Dispatcher) Remove(id HandlerID) bool {
	return d.registry.Remove(id)
}

// Cursor возвращает текущую позицию в ленте.
func (d *Dispatcher) Cursor() fetcher.Cursor {
	return d.fetcher.Cursor()
}

// Handle регистрирует типизированный обработчик для варианта E.
// E — один из вариантов события, например events.MessageEvent.
func Handle[E events.Variant](d *Dispatcher, handler func(ctx context.Context, event E) error) HandlerID {
	var zero E
	eventType := zero.Type()

	return d.Register(eventType, func(ctx context.Context, event events.Event) error {
		typed, ok := event.(E)
		if !ok {
			return fmt.Errorf("unexpected event %T for %s handler", event, eventType)
		}

		return handler(ctx, typed)
	})
}

// Start запускает цикл опроса и блокируется до отмены ctx.
// Возвращает nil после отмены ctx, ErrAlreadyRunning при повторном запуске,
// ошибку восстановления курсора или *HandlerError, остановившую цикл.
func (d *Dispatcher) Start(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	if err := d.fetcher.Restore(ctx); err != nil {
		return fmt.Errorf("restore cursor: %w", err)
	}

	d.logger.Info("polling started", "offset", d.fetcher.Cursor().Offset)

	for {
		if ctx.Err() != nil {
			d.logger.Info("polling stopped")
			return nil
		}

		updates, err := d.fetcher.Fetch(ctx)
		d.metrics.RecordFetch(err, len(updates))
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("polling stopped")
				return nil
			}

			d.reportFetchError(err)
			if !d.waitRetry(ctx) {
				d.logger.Info("polling stopped")
				return nil
			}

			continue
		}

		if d.retry != nil {
			d.retry.Reset()
		}

		if len(updates) == 0 {
			continue
		}

		cursor := d.fetcher.Cursor()
		d.metrics.RecordCursor(cursor.Offset)
		d.logger.Debug("updates received", "count", len(updates), "next_offset", cursor.Offset)

		if err := d.dispatchBatch(ctx, updates); err != nil {
			d.logger.Error("polling aborted by handler error", "error", err)
			return err
		}
	}
}

// dispatchBatch классифицирует и обрабатывает пачку в порядке получения.
// Пачка обрабатывается целиком даже после отмены ctx: курсор уже сдвинут за неё.
func (d *Dispatcher) dispatchBatch(ctx context.Context, updates []client.Update) error {
	start := time.Now()
	defer func() {
		d.metrics.ObserveDispatch(time.Since(start).Seconds())
	}()

	for _, update := range updates {
		event := events.Classify(update)
		if event == nil {
			d.metrics.RecordUnclassified()
			d.logger.Debug("update skipped: unknown type", "update_id", update.UpdateID)
			continue
		}

		d.metrics.RecordEvent(string(event.Type()))

		for _, reg := range d.registry.snapshot(event.Type()) {
			err := d.invoke(ctx, reg.handler, event)
			if err == nil {
				continue
			}

			d.metrics.RecordHandlerError(string(event.Type()))
			handlerErr := &HandlerError{
				EventType: event.Type(),
				UpdateID:  event.UpdateID(),
				HandlerID: reg.id,
				Err:       err,
			}
			if !d.isolate {
				return handlerErr
			}

			d.logger.Error("handler failed", "error", handlerErr)
			d.onError(handlerErr)
		}
	}

	return nil
}

func (d *Dispatcher) invoke(ctx context.Context, handler Handler, event events.Event) (err error) {
	if d.isolate {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r}
			}
		}()
	}

	return handler(ctx, event)
}

func (d *Dispatcher) reportFetchError(err error) {
	d.logger.Error("fetch updates failed", "error", err, "offset", d.fetcher.Cursor().Offset)
	d.onError(err)
}

// waitRetry ждёт паузу из backoff. Возвращает false, если ctx отменён.
func (d *Dispatcher) waitRetry(ctx context.Context) bool {
	if d.retry == nil {
		return true
	}

	wait := d.retry.NextBackOff()
	if wait == backoff.Stop {
		d.retry.Reset()
		wait = d.retry.NextBackOff()
	}

	return sleepWithContext(ctx, wait)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
