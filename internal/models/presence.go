package models

import (
	"time"
)

// UserPresence текущее состояние онлайн/оффлайн пользователя.
// Обновляется явными сигналами клиента, не выводится из активности.
type UserPresence struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	IsOnline   bool      `json:"is_online" gorm:"default:false;index"`
	LastSeenAt time.Time `json:"last_seen_at" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (UserPresence) TableName() string {
	return "user_presence"
}
