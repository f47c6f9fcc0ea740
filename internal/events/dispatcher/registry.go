package dispatcher

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/letsssgooo/pollbot/internal/events"
)

// Handler обрабатывает одно событие.
type Handler func(ctx context.Context, event events.Event) error

// HandlerID идентифицирует зарегистрированный обработчик.
type HandlerID string

type registration struct {
	id      HandlerID
	handler Handler
}

// Registry хранит обработчики по типам событий в порядке регистрации.
// Безопасен для конкурентного использования: цикл опроса работает со снимком.
type Registry struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]registration
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[events.EventType][]registration),
	}
}

// Register добавляет обработчик в конец списка для eventType.
// Паникует, если handler равен nil.
func (r *Registry) Register(eventType events.EventType, handler Handler) HandlerID {
	if handler == nil {
		panic("dispatcher: nil handler for " + string(eventType))
	}

	id := HandlerID(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[eventType] = append(r.handlers[eventType], registration{id: id, handler: handler})

	return id
}

// Remove удаляет обработчик. Возвращает false, если такого нет.
func (r *Registry) Remove(id HandlerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, regs := range r.handlers {
		for i, reg := range regs {
			if reg.id != id {
				continue
			}

			rest := make([]registration, 0, len(regs)-1)
			rest = append(rest, regs[:i]...)
			rest = append(rest, regs[i+1:]...)
			if len(rest) == 0 {
				delete(r.handlers, eventType)
			} else {
				r.handlers[eventType] = rest
			}

			return true
		}
	}

	return false
}

// Len возвращает число обработчиков для eventType.
func (r *Registry) Len(eventType events.EventType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers[eventType])
}

// snapshot возвращает копию списка обработчиков для eventType.
func (r *Registry) snapshot(eventType events.EventType) []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.handlers[eventType]
	if len(regs) == 0 {
		return nil
	}

	out := make([]registration, len(regs))
	copy(out, regs)

	return out
}
