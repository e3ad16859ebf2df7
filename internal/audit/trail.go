package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type trailKey struct{}

// Trail собирает сведения о запросе для записи аудита: кто вызвал, чем ответили, была ли ошибка.
// Заполняется мидлварью авторизации и хелперами ответа. Методы безопасны для nil.
type Trail struct {
	mu       sync.Mutex
	userID   *uuid.UUID
	err      error
	response any
}

func WithTrail(ctx context.Context, t *Trail) context.Context {
	return context.WithValue(ctx, trailKey{}, t)
}

// TrailFrom возвращает Trail запроса или nil, если запрос не обёрнут Middleware.
func TrailFrom(ctx context.Context) *Trail {
	t, _ := ctx.Value(trailKey{}).(*Trail)
	return t
}

func (t *Trail) SetUser(id uuid.UUID) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.userID = &id
	t.mu.Unlock()
}

func (t *Trail) SetError(err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

func (t *Trail) SetResponse(v any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.response = v
	t.mu.Unlock()
}

func (t *Trail) snapshot() (userID *uuid.UUID, err error, response any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID, t.err, t.response
}
