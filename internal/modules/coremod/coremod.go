// Package coremod — базовый модуль "core", загружается сервером всегда.
package coremod

import (
	"fmt"
	"time"

	"skyhook/internal/core"
)

// Module предоставляет служебные функции сервера.
type Module struct{}

// New создает модуль.
func New() (core.Module, error) { return &Module{}, nil }

func (m *Module) Name() string { return "core" }

func (m *Module) Functions() []core.Func {
	return []core.Func{
		{
			Name: "is_online",
			Call: func(map[string]interface{}) (interface{}, error) {
				// Сам факт ответа означает, что сервер жив.
				return true, nil
			},
		},
		{
			Name: "echo_message",
			Args: []string{"message"},
			Call: func(params map[string]interface{}) (interface{}, error) {
				message, ok := params["message"]
				if !ok {
					return nil, fmt.Errorf("echo_message: missing parameter %q", "message")
				}
				fmt.Println(message)
				return fmt.Sprintf("I printed: %v", message), nil
			},
		},
		{
			Name: "sleep",
			Args: []string{"seconds"},
			Call: func(params map[string]interface{}) (interface{}, error) {
				seconds, ok := params["seconds"].(float64)
				if !ok || seconds < 0 {
					return nil, fmt.Errorf("sleep: parameter %q must be a non-negative number", "seconds")
				}
				time.Sleep(time.Duration(seconds * float64(time.Second)))
				return seconds, nil
			},
		},
	}
}
