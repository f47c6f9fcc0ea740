package sender

import (
	"context"
	"errors"

	"github.com/letsssgooo/pollbot/internal/client"
)

// ErrNoChat возвращается, если у сообщения нет чата для ответа.
var ErrNoChat = errors.New("message has no chat")

// TelegramSender реализует отправку сообщений через Telegram Bot API.
type TelegramSender struct {
	client MessageClient
}

// NewSender создает новый объект структуры TelegramSender.
func NewSender(client MessageClient) *TelegramSender {
	return &TelegramSender{client: client}
}

// Message отправляет текстовое сообщение.
func (s *TelegramSender) Message(
	ctx context.Context,
	chatID int64,
	text string,
	opts *client.SendOptions,
) (*client.Message, error) {
	return s.client.SendMessage(ctx, chatID, text, opts)
}

// Reply отвечает на сообщение to в его чате.
func (s *TelegramSender) Reply(ctx context.Context, to *client.Message, text string) (*client.Message, error) {
	if to == nil || to.Chat == nil {
		return nil, ErrNoChat
	}

	return s.client.SendMessage(ctx, to.Chat.ID, text, &client.SendOptions{ReplyToMessageID: to.MessageID})
}

// AnswerCallback подтверждает нажатие inline кнопки.
func (s *TelegramSender) AnswerCallback(ctx context.Context, query *client.CallbackQuery, text string) error {
	return s.client.AnswerCallback(ctx, query.ID, text)
}
