package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const internalMessage = "Internal Server Error"

// pgUniqueViolation код SQLSTATE нарушения уникального индекса.
const pgUniqueViolation = "23505"

var (
	pgKeyRe     = regexp.MustCompile(`Key \(([^)]+)\)=`)
	sqliteKeyRe = regexp.MustCompile(`UNIQUE constraint failed: [\w]+\.(\w+)`)
)

// Normalize приводит произвольную ошибку к *Error с клиентским сообщением и статусом.
// path: путь запроса, попадает в сообщение о ненайденном ресурсе.
func Normalize(err error, path string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("Resource not found: %s", path), Err: err}
	case errors.Is(err, ErrCast):
		return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("Resource not found: %s", path), Err: err}
	}

	if field, ok := DuplicateField(err); ok {
		return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("Duplicate field value: %s", field), Err: err}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return &Error{Status: http.StatusUnauthorized, Message: fmt.Sprintf("Token expired: %s", err.Error()), Err: err}
	}
	if isJWTError(err) {
		return &Error{Status: http.StatusUnauthorized, Message: fmt.Sprintf("Invalid token: %s", err.Error()), Err: err}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("Validation error: %s", validationMessage(verrs)), Err: err}
	}

	return &Error{Status: http.StatusInternalServerError, Message: internalMessage, Err: err}
}

// DuplicateField определяет нарушение уникальности и возвращает имя поля.
func DuplicateField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if m := pgKeyRe.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return m[1], true
		}
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "unknown", true
	}
	// SQLite (modernc) отдаёт нарушение уникальности только текстом
	if m := sqliteKeyRe.FindStringSubmatch(err.Error()); len(m) == 2 {
		return m[1], true
	}
	return "", false
}

func isJWTError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenInvalidClaims,
		jwt.ErrSignatureInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, ", ")
}
