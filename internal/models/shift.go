package models

import (
	"time"
)

// Shift рабочая смена. Время начала и конца хранится строкой "HH:MM",
// привязка к дате происходит на уровне посещаемости.
type Shift struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"unique;not null;type:varchar(255)"`
	StartTime    string    `json:"start_time" gorm:"not null;type:varchar(5)"`
	EndTime      string    `json:"end_time" gorm:"not null;type:varchar(5)"`
	GraceMinutes int       `json:"grace_minutes" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
