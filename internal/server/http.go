package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"skyhook/pkg/protocol"
)

// Скрипт, закрывающий вкладку браузера после GET-запроса из адресной строки.
const autoCloseScript = "<script type='text/javascript'>window.open('','_self').close();</script>"

const maxRequestBody = 1 << 20

// Start запускает HTTP-листенер и останавливает его при отмене контекста.
func (s *Server) Start(ctx context.Context) error {
	s.httpMu.Lock()
	if s.httpServer != nil {
		s.httpMu.Unlock()
		return errors.New("server already started")
	}
	srv := &http.Server{
		Addr:        fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:     s.routes(),
		ReadTimeout: 5 * time.Second,
		// Ответ пишется после ожидания моста, поэтому запас поверх таймаута.
		WriteTimeout: s.bridgeTimeout() + 5*time.Second,
	}
	s.httpServer = srv
	s.httpMu.Unlock()

	go func() {
		<-ctx.Done()
		s.stopHTTP()
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("listener stopped", "err", err)
		}
	}()
	s.log.Info("started skyhook server", "port", s.port)
	return nil
}

func (s *Server) bridgeTimeout() time.Duration {
	if s.opts.Timeout > 0 {
		return s.opts.Timeout
	}
	return 10 * time.Second
}

func (s *Server) stopHTTP() {
	s.httpMu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.httpMu.Unlock()
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Warn("listener shutdown", "err", err)
	}
	s.log.Info("server shut down")
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handlePost)
	mux.HandleFunc("GET /", s.handleGet)
	return mux
}

// handlePost принимает JSON-команду {"FunctionName": ..., "Parameters": ...}
// и отвечает JSON-результатом. Неразборчивое тело логируется, ответ не
// пишется, листенер продолжает работать.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var cmd protocol.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.log.Warn("discarding malformed POST request", "err", err, "request_id", requestID)
		return
	}
	if cmd.FunctionName == "" {
		s.log.Warn("discarding POST request without FunctionName", "request_id", requestID)
		return
	}

	result := s.HandleCommand(cmd, requestID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Warn("failed to write response", "err", err, "request_id", requestID)
	}
}

// handleGet принимает запрос прямо из адресной строки браузера:
// /<"имя-функции">&<json-параметры> в percent-кодировке. Первая часть обязана
// быть строковым литералом в кавычках; иначе запрос логируется и остается
// без ответа. В конец ответа дописывается скрипт, закрывающий вкладку.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	// Браузеры попутно запрашивают favicon, это не команда.
	if r.URL.Path == "/favicon.ico" {
		return
	}
	requestID := uuid.NewString()

	data, err := url.PathUnescape(r.RequestURI)
	if err != nil {
		s.log.Warn("discarding undecodable GET request", "uri", r.RequestURI, "err", err, "request_id", requestID)
		return
	}
	data = strings.TrimPrefix(data, "/")

	parts := strings.SplitN(data, "&", 2)
	if len(parts) != 2 {
		s.log.Warn("discarding GET request without parameters", "uri", data, "request_id", requestID)
		return
	}
	functionName, err := strconv.Unquote(parts[0])
	if err != nil {
		s.log.Warn("got a GET request with an unquoted function name", "uri", data, "err", err, "request_id", requestID)
		return
	}
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(parts[1]), &params); err != nil {
		s.log.Warn("discarding GET request with malformed parameters", "uri", data, "err", err, "request_id", requestID)
		return
	}

	result := s.HandleCommand(protocol.Command{FunctionName: functionName, Parameters: params}, requestID)
	body, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("failed to encode response", "err", err, "request_id", requestID)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte(autoCloseScript))
}

// PortInUse проверяет, занят ли порт другим процессом. Полезно перед стартом
// сервера на порту хост-программы по умолчанию.
func PortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 125*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
