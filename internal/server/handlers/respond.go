package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

// maxBodySize ограничение размера тела запроса
const maxBodySize = 1 << 20

// decodeJSON читает тело запроса в dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	// после JSON объекта ничего быть не должно
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с кодом ошибки
func sendError(logger *slog.Logger, w http.ResponseWriter, code, message string, statusCode int) {
	sendJSON(logger, w, api.ErrorResponse{Error: code, Message: message}, statusCode)
}

// sendInternalError логирует причину и отвечает 500 без подробностей
func sendInternalError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	sendError(logger, w, api.CodeInternalError, "internal server error", http.StatusInternalServerError)
}

// WriteError отвечает ошибкой в общем формате API. Используется middleware
func WriteError(w http.ResponseWriter, code string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: code})
}

// NotFound отвечает 404 NOT_FOUND на неизвестные маршруты
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, api.CodeNotFound, http.StatusNotFound)
}

// MethodNotAllowed отвечает 405 на известный путь с неподдерживаемым методом
// allow перечисляет разрешенные методы для заголовка Allow
func MethodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		WriteError(w, api.CodeMethodNotAllowed, http.StatusMethodNotAllowed)
	}
}
