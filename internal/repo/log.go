package repo

import (
	"context"

	"SpeakShift/internal/model"

	"gorm.io/gorm"
)

// LogRepository пишет записи журнала аудита.
type LogRepository interface {
	Create(ctx context.Context, l *model.Log) error
}

type logRepo struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepo{db: db}
}

func (r *logRepo) Create(ctx context.Context, l *model.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}
