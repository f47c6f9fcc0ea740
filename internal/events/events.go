// Package events описывает типизированные события, в которые превращаются
// обновления Bot API, и их классификацию.
package events

import "github.com/letsssgooo/pollbot/internal/client"

// EventType — тип события обновления.
type EventType string

const (
	EventTypeMessage       EventType = "message"
	EventTypeEditedMessage EventType = "edited_message"
	EventTypeCallbackQuery EventType = "callback_query"
)

// Event — типизированное событие, полученное из одного Update.
// Набор реализаций закрыт: новые варианты добавляются только в этом пакете.
type Event interface {
	// Type возвращает тег варианта.
	Type() EventType

	// UpdateID возвращает идентификатор исходного обновления.
	UpdateID() int

	isEvent()
}

// MessageEvent — новое сообщение.
type MessageEvent struct {
	ID      int
	Message *client.Message
}

func (MessageEvent) Type() EventType { return EventTypeMessage }

func (e MessageEvent) UpdateID() int { return e.ID }

func (MessageEvent) isEvent() {}

// EditedMessageEvent — отредактированное сообщение.
type EditedMessageEvent struct {
	ID      int
	Message *client.Message
}

func (EditedMessageEvent) Type() EventType { return EventTypeEditedMessage }

func (e EditedMessageEvent) UpdateID() int { return e.ID }

func (EditedMessageEvent) isEvent() {}

// CallbackQueryEvent — нажатие на inline кнопку.
type CallbackQueryEvent struct {
	ID            int
	CallbackQuery *client.CallbackQuery
}

func (CallbackQueryEvent) Type() EventType { return EventTypeCallbackQuery }

func (e CallbackQueryEvent) UpdateID() int { return e.ID }

func (CallbackQueryEvent) isEvent() {}

// Variant — ограничение для обобщённых обработчиков: ровно один из вариантов события.
type Variant interface {
	MessageEvent | EditedMessageEvent | CallbackQueryEvent

	Event
}
