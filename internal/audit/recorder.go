// Package audit пишет журнал вызовов обработчиков в таблицу logs.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SuccessMessage сообщение записи об успешном вызове.
const SuccessMessage = "Success"

const defaultWriteTimeout = 5 * time.Second

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "speakshift_audit_write_failures_total",
	Help: "Number of audit log entries that could not be persisted",
})

// Entry: данные одной записи аудита.
type Entry struct {
	UserID       *uuid.UUID
	FunctionName string
	File         string
	Line         *int
	Request      any
	Response     any
}

// Recorder пишет записи аудита в фоне. Ошибки записи логируются и не доходят до вызывающего.
type Recorder struct {
	logs    repo.LogRepository
	logger  *zap.SugaredLogger
	now     func() time.Time
	timeout time.Duration

	wg sync.WaitGroup
}

func NewRecorder(logs repo.LogRepository, logger *zap.SugaredLogger) *Recorder {
	return &Recorder{
		logs:    logs,
		logger:  logger,
		now:     time.Now,
		timeout: defaultWriteTimeout,
	}
}

// LogSuccess записывает успешный вызов с сообщением "Success".
func (r *Recorder) LogSuccess(ctx context.Context, e Entry) {
	r.write(ctx, e, SuccessMessage)
}

// LogFailure записывает неуспешный вызов. Сообщение: текст исходной ошибки.
// Если err несёт место возникновения (*apperr.Error), файл и строка берутся из него парой,
// имя функции из Entry сохраняется. Иначе остаётся файл маршрута без номера строки.
func (r *Recorder) LogFailure(ctx context.Context, err error, e Entry) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if fn, file, line, ok := apperr.Site(err); ok {
		if e.FunctionName == "" {
			e.FunctionName = fn
		}
		e.File = file
		e.Line = &line
	}
	r.write(ctx, e, msg)
}

// Wait дожидается завершения всех начатых записей.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) write(ctx context.Context, e Entry, message string) {
	now := r.now()
	entry := &model.Log{
		UserID:       e.UserID,
		FunctionName: e.FunctionName,
		File:         e.File,
		LineNo:       e.Line,
		Message:      message,
		Request:      r.toJSON(e.Request),
		Response:     r.toJSON(e.Response),
		LoggingTime:  now.Add(model.LoggingTimeSkew),
	}
	entry.CreatedAt = now

	// запрос может завершиться раньше записи, поэтому отмена контекста запроса не наследуется
	base := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		wctx, cancel := context.WithTimeout(base, r.timeout)
		defer cancel()

		if err := r.logs.Create(wctx, entry); err != nil {
			writeFailures.Inc()
			r.logger.Errorw("audit log write failed",
				"function", entry.FunctionName,
				"file", entry.File,
				"error", err,
			)
		}
	}()
}

func (r *Recorder) toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		r.logger.Warnw("audit payload is not serializable", "error", err)
		return nil
	}
	return datatypes.JSON(b)
}
