// Package events реализует внутрипроцессный pub/sub, развязывающий сервер и
// специфичную для хост-программы доставку в главный поток.
package events

import "sync"

// Темы событий сервера.
const (
	// TopicExecute — запрос моста на выполнение команды в главном потоке.
	TopicExecute = "execute"
	// TopicCommand — любая выполненная команда, для хуков наблюдаемости.
	TopicCommand = "command"
	// TopicTerminated — сервер остановлен.
	TopicTerminated = "terminated"
)

// Event — полезная нагрузка события.
type Event struct {
	Name       string
	Parameters map[string]interface{}
	// Module задает модуль для поиска функции (только TopicExecute).
	Module string
	// Payload — произвольная строка (TopicTerminated несет "TERMINATED").
	Payload string
	// Success и RequestID заполняются для TopicCommand.
	Success   bool
	RequestID string
}

// Handler получает событие. Вызывается синхронно в горутине, сделавшей Emit.
type Handler func(Event)

// Emitter рассылает события подписчикам по темам.
type Emitter struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

// New создает пустой эмиттер.
func New() *Emitter {
	return &Emitter{subs: map[string][]Handler{}}
}

// Subscribe добавляет обработчик темы.
func (e *Emitter) Subscribe(topic string, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[topic] = append(e.subs[topic], h)
}

// Emit вызывает обработчики темы в порядке подписки.
func (e *Emitter) Emit(topic string, ev Event) {
	e.mu.RLock()
	handlers := e.subs[topic]
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}
