// Package apperr описывает ошибки приложения с HTTP-статусом и местом возникновения.
// Место (функция, файл, строка) фиксируется через runtime.Caller при создании ошибки
// и используется журналом аудита вместо разбора текста stack trace.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrCast: некорректный идентификатор ресурса в запросе.
var ErrCast = errors.New("cast error")

// Error ошибка с HTTP-статусом и сообщением для клиента.
type Error struct {
	Status  int
	Message string
	Err     error

	Func string
	File string
	Line int
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New создаёт ошибку и запоминает место вызова.
func New(status int, message string) *Error {
	e := &Error{Status: status, Message: message}
	e.capture(2)
	return e
}

// Wrap оборачивает err, сохраняя исходную ошибку для errors.Is/As.
func Wrap(err error, status int, message string) *Error {
	e := &Error{Status: status, Message: message, Err: err}
	e.capture(2)
	return e
}

// Newf как New, но с форматированием сообщения.
func Newf(status int, format string, args ...any) *Error {
	e := &Error{Status: status, Message: fmt.Sprintf(format, args...)}
	e.capture(2)
	return e
}

func BadRequest(message string) *Error {
	e := &Error{Status: http.StatusBadRequest, Message: message}
	e.capture(2)
	return e
}

func Unauthorized(message string) *Error {
	e := &Error{Status: http.StatusUnauthorized, Message: message}
	e.capture(2)
	return e
}

func Forbidden(message string) *Error {
	e := &Error{Status: http.StatusForbidden, Message: message}
	e.capture(2)
	return e
}

func NotFound(message string) *Error {
	e := &Error{Status: http.StatusNotFound, Message: message}
	e.capture(2)
	return e
}

func Internal(err error) *Error {
	e := &Error{Status: http.StatusInternalServerError, Message: internalMessage, Err: err}
	e.capture(2)
	return e
}

func (e *Error) capture(skip int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}
	e.File = filepath.Base(file)
	e.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.Func = shortFuncName(fn.Name())
	}
}

// shortFuncName убирает путь пакета: SpeakShift/internal/service.(*UserService).Login -> (*UserService).Login
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Site возвращает место возникновения ошибки, если err (или обёрнутая ею) — *Error.
func Site(err error) (fn, file string, line int, ok bool) {
	var e *Error
	if !errors.As(err, &e) || e.File == "" {
		return "", "", 0, false
	}
	return e.Func, e.File, e.Line, true
}
