package model

import "github.com/google/uuid"

const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
	FriendRejected = "rejected"
)

// Friend: заявка в друзья между двумя пользователями.
type Friend struct {
	Base

	RequestBy      uuid.UUID `gorm:"type:uuid;not null;index:idx_friend_pair" json:"friendRequestBy"`
	AcceptBy       uuid.UUID `gorm:"type:uuid;not null;index:idx_friend_pair" json:"friendAcceptBy"`
	Status         string    `gorm:"not null;default:pending;index" json:"status"`
	IsAddedViaApp  bool      `gorm:"not null;default:false" json:"isAddedViaApp"`
	IsAddedViaLink bool      `gorm:"not null;default:false" json:"isAddedViaLink"`
}
