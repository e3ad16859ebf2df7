package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"SpeakShift/internal/response"
)

// Recover перехватывает панику обработчика и отвечает 500 в общем формате.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Errorw("panic in handler",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			response.Error(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}
