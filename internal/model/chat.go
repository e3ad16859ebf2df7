package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MessageText     = "text"
	MessageImage    = "image"
	MessageVideo    = "video"
	MessageAudio    = "audio"
	MessageLocation = "location"
	MessageDocument = "document"
)

// Room: комната чата. Ссылки на пользователей не ограничены внешними ключами.
type Room struct {
	Base

	CreatedBy       uuid.UUID `gorm:"type:uuid;not null;index" json:"createdBy"`
	RoomTitle       *string   `json:"roomTitle"`
	RoomDescription *string   `json:"roomDescription"`
	RoomPic         string    `json:"roomPic"`

	Members []User `gorm:"many2many:room_members" json:"members,omitempty"`
	LeftBy  []User `gorm:"many2many:room_left_by" json:"roomLeftBy,omitempty"`
}

// Chat: сообщение в комнате.
type Chat struct {
	Base

	SenderID          uuid.UUID  `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID        *uuid.UUID `gorm:"type:uuid" json:"receiverId"`
	RoomID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"roomId"`
	Message           *string    `json:"message"`
	TranslatedMessage *string    `json:"translatedMessage"`
	MessageType       string     `gorm:"not null;default:text" json:"messageType"`
	IsSenderRead      bool       `gorm:"not null;default:true" json:"isSenderRead"`
	IsReceiverRead    bool       `gorm:"not null;default:false" json:"isReceiverRead"`
	ReceiverReadAt    *time.Time `json:"receiverReadAt"`
	SocketID          string     `json:"socketId"`
	RepliesCount      int        `gorm:"not null;default:0" json:"repliesCount"`

	ReadBy    []User `gorm:"many2many:chat_read_by" json:"readBy,omitempty"`
	DeletedBy []User `gorm:"many2many:chat_deleted_by" json:"messageDeletedBy,omitempty"`
	RepliesBy []User `gorm:"many2many:chat_replies_by" json:"repliesBy,omitempty"`
	Replies   []Chat `gorm:"many2many:chat_replies" json:"replies,omitempty"`
}

// Reaction: реакция на сообщение; одна на пару (комната, сообщение).
type Reaction struct {
	Base

	Reaction   string    `gorm:"not null" json:"reaction"`
	ReactionBy uuid.UUID `gorm:"type:uuid;not null;index" json:"reactionBy"`
	MessageOf  uuid.UUID `gorm:"type:uuid;not null" json:"messageOf"`
	RoomID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_room_message" json:"roomId"`
	MessageID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_room_message" json:"messageId"`
}

// Notification: уведомление пользователя.
type Notification struct {
	Base

	UserID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	SenderID           uuid.UUID      `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID         uuid.UUID      `gorm:"type:uuid;not null" json:"receiverId"`
	IsChatNotification bool           `gorm:"not null;default:false" json:"isChatNotification"`
	Title              string         `gorm:"not null" json:"notificationTitle"`
	Body               string         `gorm:"not null" json:"notificationBody"`
	Data               datatypes.JSON `json:"notificationDataArray"`
	Slug               *string        `json:"notificationSlug"`
	Type               *string        `json:"notificationType"`
	IsViewed           bool           `gorm:"not null;default:false" json:"isViewed"`
}
