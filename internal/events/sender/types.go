package sender

import (
	"context"

	"github.com/letsssgooo/pollbot/internal/client"
)

// Sender определяет основной интерфейс для отправки ответов.
type Sender interface {
	// Message отправляет текстовое сообщение.
	Message(ctx context.Context, chatID int64, text string, opts *client.SendOptions) (*client.Message, error)

	// Reply отвечает на сообщение в том же чате.
	Reply(ctx context.Context, to *client.Message, text string) (*client.Message, error)

	// AnswerCallback подтверждает нажатие inline кнопки.
	AnswerCallback(ctx context.Context, query *client.CallbackQuery, text string) error
}

// MessageClient — часть клиента Bot API, нужная для отправки.
type MessageClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *client.SendOptions) (*client.Message, error)
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}
