package audit

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
)

// maxBodySnapshot: сколько байт тела JSON-запроса попадает в журнал.
const maxBodySnapshot = 64 << 10

const redacted = "[REDACTED]"

// Middleware оборачивает обработчик записью аудита: ровно одна запись на вызов,
// успешная если обработчик не сообщил об ошибке в Trail.
func Middleware(rec *Recorder, functionName, fileName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trail := &Trail{}
			req := snapshotRequest(r)

			next.ServeHTTP(w, r.WithContext(WithTrail(r.Context(), trail)))

			userID, err, resp := trail.snapshot()
			entry := Entry{
				UserID:       userID,
				FunctionName: functionName,
				File:         fileName,
				Request:      req,
				Response:     scrub(resp),
			}
			if err != nil {
				rec.LogFailure(r.Context(), err, entry)
				return
			}
			rec.LogSuccess(r.Context(), entry)
		})
	}
}

func snapshotRequest(r *http.Request) map[string]any {
	snap := map[string]any{
		"url":    r.URL.RequestURI(),
		"method": r.Method,
	}
	if body := snapshotBody(r); body != nil {
		snap["body"] = body
	}
	return snap
}

// snapshotBody читает JSON-тело и возвращает его обратно в запрос. Multipart не читается.
func snapshotBody(r *http.Request) any {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot+1))
	rest := r.Body
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), rest), Closer: rest}
	if err != nil || len(raw) > maxBodySnapshot {
		return nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return redact(body)
}

// scrub приводит значение к JSON-виду и вырезает чувствительные поля (например, выданный токен).
func scrub(v any) any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return redact(out)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// redact заменяет значения полей с паролями и токенами.
func redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if sensitive(k) {
				t[k] = redacted
				continue
			}
			t[k] = redact(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = redact(t[i])
		}
		return t
	default:
		return v
	}
}

func sensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "token") || strings.Contains(k, "secret")
}
