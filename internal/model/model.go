package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base: общие поля всех серверных моделей: uuid-идентификатор и метки времени.
type Base struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate выдаёт идентификатор, если он не задан вызывающим.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All возвращает все модели для AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Interest{},
		&Language{},
		&Country{},
		&Room{},
		&Chat{},
		&Friend{},
		&Reaction{},
		&Notification{},
		&Storage{},
		&Log{},
	}
}
