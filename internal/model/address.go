package model

import "github.com/google/uuid"

// Address: адрес пользователя, не более одного на пользователя.
type Address struct {
	Base

	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Address   *string   `json:"address"`
	Latitude  *string   `json:"latitude"`
	Longitude *string   `json:"longitude"`
	City      *string   `gorm:"index" json:"city"`
	State     *string   `json:"state"`
	Country   *string   `json:"country"`
	ZipCode   *string   `json:"zipCode"`
}
