package model

import "github.com/google/uuid"

// Storage: запись о загруженном в объектное хранилище файле.
// Создаётся один раз после успешной загрузки и больше не изменяется.
type Storage struct {
	Base

	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Bucket   string    `gorm:"not null" json:"bucket"`
	FileURL  string    `gorm:"not null" json:"fileUrl"`
	FileID   string    `gorm:"not null" json:"fileId"`
	FileName string    `gorm:"not null" json:"fileName"`
	FileSize *int64    `json:"fileSize"`
	MimeType string    `gorm:"not null" json:"mimeType"`
}
