package dispatcher

import (
	"errors"
	"fmt"

	"github.com/letsssgooo/pollbot/internal/events"
)

// ErrAlreadyRunning возвращается при повторном вызове Start, пока цикл работает.
var ErrAlreadyRunning = errors.New("dispatcher is already running")

// HandlerError описывает ошибку (или панику) обработчика события.
type HandlerError struct {
	EventType events.EventType
	UpdateID  int
	HandlerID HandlerID
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s for %s (update %d): %v", e.HandlerID, e.EventType, e.UpdateID, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError оборачивает панику обработчика в режиме изоляции.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}
