package model

import (
	"fmt"
	"net/url"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive = "active"
	StatusBanned = "banned"
)

// User: учётная запись пользователя.
type User struct {
	Base

	Name     string `gorm:"not null" json:"name"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt-хеш
	Role     string `gorm:"not null;default:user" json:"role"`
	Avatar   string `json:"avatar"`
	Status   string `gorm:"not null;default:active" json:"status"`

	// Маркеры сессии
	IsLoggedIn         bool   `gorm:"not null;default:false" json:"isLoggedIn"`
	Disabled           bool   `gorm:"not null;default:false" json:"disabled"`
	JWTToken           string `json:"-"`
	FCMToken           string `json:"-"`
	ResetPasswordToken string `json:"-"`

	Address   *Address   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"address,omitempty"`
	Interests []Interest `gorm:"many2many:user_interests" json:"interests,omitempty"`
}

// Active: пользователь может аутентифицироваться.
func (u *User) Active() bool {
	return !u.Disabled && u.Status != StatusBanned
}

// AvatarURL строит ссылку на сгенерированный аватар по имени.
func AvatarURL(name string) string {
	if name == "" {
		name = "Default"
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(name))
}
