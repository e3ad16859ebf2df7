package repo

import (
	"context"

	"SpeakShift/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageRepository хранит записи о загруженных файлах. Записи только добавляются.
type StorageRepository interface {
	Create(ctx context.Context, s *model.Storage) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Storage, error)
}

type storageRepo struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &storageRepo{db: db}
}

func (r *storageRepo) Create(ctx context.Context, s *model.Storage) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ListByUser возвращает файлы пользователя от новых к старым.
func (r *storageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Storage, error) {
	var out []model.Storage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
