package models

import (
	"time"
)

// TrackingPoint неизменяемая точка местоположения пользователя.
// Записи только добавляются: после вставки точка никогда не обновляется
// и не удаляется этой подсистемой, история сохраняется полностью.
type TrackingPoint struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"not null;index:idx_tracking_user_time,priority:1"`
	Latitude   float64    `json:"lat" gorm:"not null"`
	Longitude  float64    `json:"lng" gorm:"not null"`
	DutyStatus DutyStatus `json:"duty" gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index:idx_tracking_user_time,priority:2;not null"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (TrackingPoint) TableName() string {
	return "tracking_points"
}

// TrackingPointResponse формат точки для ответов API
type TrackingPointResponse struct {
	Latitude   float64    `json:"lat"`
	Longitude  float64    `json:"lng"`
	DutyStatus DutyStatus `json:"duty"`
	CreatedAt  time.Time  `json:"created_at"`
}
