package models

import (
	"time"
)

// Employee карточка сотрудника. Связь с учетной записью пользователя
// необязательна: сотрудник может не иметь доступа в систему, а служебные
// учетные записи могут существовать без карточки.
type Employee struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       *uint      `json:"user_id" gorm:"column:user_id;uniqueIndex"`
	FirstName    string     `json:"firstName" gorm:"column:first_name;not null;type:varchar(255)"`
	LastName     string     `json:"lastName" gorm:"column:last_name;not null;type:varchar(255)"`
	Position     string     `json:"position" gorm:"column:position;type:varchar(255)"`
	DepartmentID *uint      `json:"department_id" gorm:"column:department_id"`
	ShiftID      *uint      `json:"shift_id" gorm:"column:shift_id"`
	HireDate     *time.Time `json:"hire_date" gorm:"column:hire_date;type:date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Shift      *Shift      `json:"shift,omitempty" gorm:"foreignKey:ShiftID"`
}

type EmployeeResponse struct {
	ID         uint       `json:"id"`
	UserID     *uint      `json:"user_id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Position   string     `json:"position"`
	Department string     `json:"department,omitempty"`
	Shift      string     `json:"shift,omitempty"`
	HireDate   *time.Time `json:"hire_date"`
	CreatedAt  time.Time  `json:"created_at"`
}
