package models

import (
	"time"
)

// Attendance запись посещаемости сотрудника за один календарный день.
// Приход и уход заполняются по отдельности и могут отсутствовать.
type Attendance struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	EmployeeID uint       `json:"employee_id" gorm:"not null;uniqueIndex:idx_attendance_employee_date,priority:1"`
	Date       time.Time  `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendance_employee_date,priority:2"`
	ClockIn    *time.Time `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`

	// Координаты, с которых сотрудник отметился (если передавались)
	ClockInLatitude   *float64 `json:"clock_in_lat"`
	ClockInLongitude  *float64 `json:"clock_in_lng"`
	ClockOutLatitude  *float64 `json:"clock_out_lat"`
	ClockOutLongitude *float64 `json:"clock_out_lng"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Employee Employee `json:"-" gorm:"foreignKey:EmployeeID"`
}

func (Attendance) TableName() string {
	return "attendances"
}
