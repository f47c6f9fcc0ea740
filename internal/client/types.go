package client

import (
	"context"
	"time"
)

// Update представляет обновление от Telegram.
// В одном обновлении заполнено не более одного поля с полезной нагрузкой.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	EditedMessage *Message       `json:"edited_message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message представляет сообщение.
type Message struct {
	MessageID int       `json:"message_id"`
	From      *User     `json:"from,omitempty"`
	Chat      *Chat     `json:"chat,omitempty"`
	Date      int64     `json:"date,omitempty"`
	Text      string    `json:"text,omitempty"`
	Document  *Document `json:"document,omitempty"`
}

// User представляет пользователя Telegram.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// BotInfo представляет ответ getMe: сведения о самом боте.
type BotInfo struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	FirstName               string `json:"first_name"`
	Username                string `json:"username"`
	CanJoinGroups           bool   `json:"can_join_groups"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries"`
}

// Chat представляет чат.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Document представляет документ (файл).
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int    `json:"file_size"`
}

// CallbackQuery представляет callback от inline кнопки.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// SendOptions содержит опции отправки сообщения.
type SendOptions struct {
	ParseMode        string `json:"parse_mode,omitempty"`
	ReplyToMessageID int    `json:"reply_to_message_id,omitempty"`
}

// GetUpdatesParams содержит параметры запроса getUpdates.
// Offset == nil означает, что сервер отдаст всё, что у него накоплено.
type GetUpdatesParams struct {
	Offset         *int     `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// Client определяет интерфейс Telegram клиента.
type Client interface {
	// GetUpdates получает обновления (long polling).
	GetUpdates(ctx context.Context, params GetUpdatesParams) ([]Update, error)

	// GetMe возвращает сведения о боте.
	GetMe(ctx context.Context) (*BotInfo, error)

	// SendMessage отправляет сообщение.
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, error)

	// AnswerCallback отвечает на callback query.
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}

// Таймауты
const (
	timeoutSend = 3 * time.Second
	// запас поверх серверного long polling таймаута
	timeoutPollGrace = 10 * time.Second
)
