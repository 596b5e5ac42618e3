package models

import (
	"time"
)

type LeaveCategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"unique;not null;type:varchar(255)"`
	DaysPerYear int       `json:"days_per_year" gorm:"default:0"`
	Paid        bool      `json:"paid" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LeaveCategory) TableName() string {
	return "leave_categories"
}
