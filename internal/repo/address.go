package repo

import (
	"context"

	"SpeakShift/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressRepository: адреса пользователей, не более одного на пользователя.
type AddressRepository interface {
	Upsert(ctx context.Context, a *model.Address) error
}

type addressRepo struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepo{db: db}
}

// Upsert создаёт адрес или обновляет существующий по user_id.
func (r *addressRepo) Upsert(ctx context.Context, a *model.Address) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address", "latitude", "longitude", "city", "state", "country", "zip_code", "updated_at",
		}),
	}).Create(a).Error
}
