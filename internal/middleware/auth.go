package middleware

import (
	"context"
	"net/http"
	"strings"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/audit"
	"SpeakShift/internal/auth"
	"SpeakShift/internal/model"
	"SpeakShift/internal/response"

	"github.com/google/uuid"
)

// TokenCookie имя cookie с JWT, используется если нет заголовка Authorization.
const TokenCookie = "token"

type ctxKey string

const userKey ctxKey = "user"

// UserLoader загружает активного пользователя по id из токена.
type UserLoader interface {
	LoadActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticated пропускает запрос только с действующим токеном текущей сессии пользователя.
func Authenticated(issuer *auth.Issuer, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Error(w, r, apperr.Unauthorized("You are not authorized"))
				return
			}
			claims, err := issuer.Parse(token)
			if err != nil {
				response.Error(w, r, apperr.Wrap(err, http.StatusUnauthorized, "You are not authorized or token expired"))
				return
			}
			id, err := claims.UserUUID()
			if err != nil {
				response.Error(w, r, apperr.Wrap(err, http.StatusUnauthorized, "You are not authorized or token expired"))
				return
			}
			audit.TrailFrom(r.Context()).SetUser(id)

			user, err := users.LoadActiveUser(r.Context(), id)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			// после logout или повторного входа старый токен не принимается
			if user.JWTToken != token {
				response.Error(w, r, apperr.Unauthorized("You are not authorized or token expired"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// RequireRole пропускает только пользователей с указанной ролью. Ставится после Authenticated.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				response.Error(w, r, apperr.Unauthorized("You are not authorized to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext возвращает пользователя, установленного Authenticated.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithUser кладёт пользователя в контекст (для тестов обработчиков).
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// SetLoginCookie выставляет cookie с токеном сессии.
func SetLoginCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearLoginCookie удаляет cookie с токеном.
func ClearLoginCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
