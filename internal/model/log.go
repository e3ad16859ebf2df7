package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoggingTimeSkew смещение loggingTime относительно времени создания записи (UTC+5).
const LoggingTimeSkew = 5 * time.Hour

// Log: запись журнала аудита об одном вызове обработчика.
type Log struct {
	Base

	UserID       *uuid.UUID     `gorm:"type:uuid;index" json:"userId"`
	FunctionName string         `gorm:"not null" json:"functionName"`
	File         string         `gorm:"not null" json:"file"`
	LineNo       *int           `json:"lineNo,omitempty"`
	Message      string         `json:"message"`
	Request      datatypes.JSON `json:"request,omitempty"`
	Response     datatypes.JSON `json:"response,omitempty"`
	LoggingTime  time.Time      `gorm:"not null" json:"loggingTime"`
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if err := l.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if l.LoggingTime.IsZero() {
		l.LoggingTime = l.CreatedAt.Add(LoggingTimeSkew)
	}
	return nil
}
