package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithGzip сжимает JSON и текстовые ответы, если клиент принимает gzip.
func WithGzip(next http.Handler) http.Handler {
	return chimw.Compress(5, "application/json", "text/plain", "text/html")(next)
}
