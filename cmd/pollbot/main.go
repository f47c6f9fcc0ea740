package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/pollbot/internal/bot"
	"github.com/letsssgooo/pollbot/internal/client"
	"github.com/letsssgooo/pollbot/internal/config"
	"github.com/letsssgooo/pollbot/internal/events/dispatcher"
	"github.com/letsssgooo/pollbot/internal/events/sender"
	"github.com/letsssgooo/pollbot/internal/lib/slogcustom"
	"github.com/letsssgooo/pollbot/internal/metrics"
	"github.com/letsssgooo/pollbot/internal/storage"
	"github.com/letsssgooo/pollbot/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	log := setupLogger(cfg)
	slog.SetDefault(log)
	slog.Info("starting pollbot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("pollbot stopped", "error", err)
		os.Exit(1)
	}

	log.Info("pollbot stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	tg := client.NewHTTPClient(cfg.Token).WithBaseURL(cfg.APIURL)
	m := metrics.NewMetrics()

	dispatcherOpts := []dispatcher.Option{dispatcher.WithMetrics(m)}
	if cfg.ErrorBackoff {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithRetryBackoff(newRetryBackoff()))
	}
	if cfg.IsolateHandlers {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithHandlerIsolation())
	}

	botOpts := []bot.Option{
		bot.WithLogger(log),
		bot.WithPollTimeout(cfg.PollTimeout),
		bot.WithLimit(cfg.Limit),
		bot.WithDispatcherOptions(dispatcherOpts...),
	}

	if cfg.DatabaseDSN != "" {
		db, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}

		botOpts = append(botOpts, bot.WithCursorStore(func(me client.BotInfo) storage.CursorStore {
			return db.ForBot(me.ID)
		}))
	}

	b, err := bot.NewBot(ctx, tg, botOpts...)
	if err != nil {
		return err
	}

	if cfg.Echo {
		registerEcho(b, sender.NewSender(tg), log)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return b.Run(ctx)
}

// registerEcho отвечает на текстовые сообщения их же текстом.
// Отказы Bot API при отправке только логируются: устаревший callback
// или заблокировавший бота пользователь не должны останавливать опрос.
func registerEcho(b *bot.Bot, s sender.Sender, log *slog.Logger) {
	b.OnMessage(func(ctx context.Context, msg *client.Message) error {
		if msg.Text == "" || (msg.From != nil && msg.From.IsBot) {
			return nil
		}

		_, err := s.Reply(ctx, msg, msg.Text)
		return skipSendError(log, "reply", err)
	})

	b.OnCallbackQuery(func(ctx context.Context, query *client.CallbackQuery) error {
		log.Debug("callback received", "data", query.Data)
		return skipSendError(log, "answer callback", s.AnswerCallback(ctx, query, query.Data))
	})
}

// skipSendError гасит ошибки отправки, на которые бот повлиять не может.
func skipSendError(log *slog.Logger, action string, err error) error {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) || errors.Is(err, sender.ErrNoChat) {
		log.Warn("echo send failed", "action", action, "error", err)
		return nil
	}

	return err
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

func newRetryBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func setupLogger(cfg *config.Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	return slog.New(slogcustom.NewCustomHandler(out, level))
}
