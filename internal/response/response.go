// Package response пишет JSON-ответы в едином конверте.
package response

import (
	"encoding/json"
	"net/http"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/audit"
)

const (
	StatusFailed  = 0
	StatusSuccess = 1
)

// Pagination: метаданные страницы списка пользователей. limit в ответ не попадает.
type Pagination struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	TotalUsers int64 `json:"totalUsers"`
}

// NewPagination считает число страниц.
func NewPagination(total int64, page, limit int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, TotalPages: pages, TotalUsers: total}
}

// Envelope: тело любого ответа API. status = 1 только для успешных ответов.
type Envelope struct {
	Status     int         `json:"status"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Token      string      `json:"token,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Option func(*Envelope)

func WithToken(token string) Option {
	return func(e *Envelope) { e.Token = token }
}

func WithPagination(p *Pagination) Option {
	return func(e *Envelope) { e.Pagination = p }
}

// JSON пишет успешный ответ.
func JSON(w http.ResponseWriter, r *http.Request, code int, message string, data any, opts ...Option) {
	env := Envelope{
		Status:     StatusSuccess,
		StatusCode: code,
		Message:    message,
		Data:       data,
	}
	for _, o := range opts {
		o(&env)
	}
	write(w, r, env)
}

// Error нормализует ошибку и пишет ответ без внутренних подробностей.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.Normalize(err, r.URL.Path)
	audit.TrailFrom(r.Context()).SetError(err)
	write(w, r, Envelope{
		Status:     StatusFailed,
		StatusCode: appErr.Status,
		Message:    appErr.Message,
	})
}

func write(w http.ResponseWriter, r *http.Request, env Envelope) {
	audit.TrailFrom(r.Context()).SetResponse(env)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}
