// Package client — HTTP-клиент сервера skyhook: собирает JSON-команду,
// отправляет POST и разбирает результат.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skyhook/pkg/protocol"
)

const defaultTimeout = 30 * time.Second

// Client обращается к одному серверу skyhook.
type Client struct {
	Addr    string
	Port    int
	Timeout time.Duration

	httpc *http.Client
}

// New создает клиент. Пустой addr означает 127.0.0.1, нулевой таймаут — 30 с.
func New(addr string, port int, timeout time.Duration) *Client {
	if addr == "" {
		addr = "127.0.0.1"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		Addr:    addr,
		Port:    port,
		Timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// NewBlender создает клиент Blender на порту по умолчанию.
func NewBlender() *Client { return New("", protocol.PortBlender, 0) }

// NewMaya создает клиент Maya на порту по умолчанию.
func NewMaya() *Client { return New("", protocol.PortMaya, 0) }

// NewHoudini создает клиент Houdini на порту по умолчанию.
func NewHoudini() *Client { return New("", protocol.PortHoudini, 0) }

// NewSubstancePainter создает клиент Substance Painter на порту по умолчанию.
func NewSubstancePainter() *Client { return New("", protocol.PortSubstancePainter, 0) }

// Execute отправляет команду с параметрами и возвращает результат сервера.
func (c *Client) Execute(function string, params map[string]interface{}) (protocol.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	payload, err := json.Marshal(protocol.Command{FunctionName: function, Parameters: params})
	if err != nil {
		return protocol.Result{}, fmt.Errorf("encode payload: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/", c.Addr, c.Port)
	resp, err := c.httpc.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return protocol.Result{}, fmt.Errorf("post command: %w", err)
	}
	defer resp.Body.Close()

	var result protocol.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return protocol.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// ExecuteModule выполняет функцию в конкретном модуле: добавляет служебный
// ключ _Module, который сервер уберет перед вызовом.
func (c *Client) ExecuteModule(module, function string, params map[string]interface{}) (protocol.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	params[protocol.KeyModule] = module
	return c.Execute(function, params)
}

// IsHostOnline проверяет доступность сервера через is_online из модуля core.
func (c *Client) IsHostOnline() bool {
	result, err := c.Execute("is_online", nil)
	if err != nil {
		return false
	}
	return result.Success
}

// ListFunctions возвращает имена функций всех загруженных модулей.
func (c *Client) ListFunctions() ([]string, error) {
	result, err := c.Execute(protocol.CommandListFunctions, nil)
	if err != nil {
		return nil, err
	}
	items, ok := result.ReturnValue.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected return value %T", result.ReturnValue)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Shutdown останавливает сервер.
func (c *Client) Shutdown() (protocol.Result, error) {
	return c.Execute(protocol.CommandShutdown, nil)
}
