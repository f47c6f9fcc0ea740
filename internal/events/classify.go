package events

import "github.com/letsssgooo/pollbot/internal/client"

// Classify превращает обновление в событие.
// Поля проверяются в фиксированном порядке: message, edited_message, callback_query;
// первое заполненное определяет вариант.
// Возвращает nil, если обновление не подходит ни под один известный вариант:
// это не ошибка, такое обновление просто некому обрабатывать.
func Classify(update client.Update) Event {
	switch {
	case update.Message != nil:
		return MessageEvent{ID: update.UpdateID, Message: update.Message}
	case update.EditedMessage != nil:
		return EditedMessageEvent{ID: update.UpdateID, Message: update.EditedMessage}
	case update.CallbackQuery != nil:
		return CallbackQueryEvent{ID: update.UpdateID, CallbackQuery: update.CallbackQuery}
	default:
		return nil
	}
}
