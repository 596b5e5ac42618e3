package models

import (
	"time"
)

// Статусы заявки на отпуск
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

type LeaveRequest struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	EmployeeID      uint       `json:"employee_id" gorm:"not null;index"`
	LeaveCategoryID uint       `json:"leave_category_id" gorm:"not null"`
	StartDate       time.Time  `json:"start_date" gorm:"type:date;not null"`
	EndDate         time.Time  `json:"end_date" gorm:"type:date;not null"`
	Reason          string     `json:"reason" gorm:"type:text"`
	Status          string     `json:"status" gorm:"default:'pending';type:varchar(20)"`
	DecisionComment string     `json:"decision_comment" gorm:"type:text"`
	DecidedAt       *time.Time `json:"decided_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Employee      Employee      `json:"-" gorm:"foreignKey:EmployeeID"`
	LeaveCategory LeaveCategory `json:"category" gorm:"foreignKey:LeaveCategoryID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
