package models

import (
	"time"
)

type Holiday struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;type:varchar(255)"`
	Date      time.Time `json:"date" gorm:"type:date;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
