package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	FirstName    string `json:"firstName" gorm:"column:first_name;not null;type:varchar(255)"`
	LastName     string `json:"lastName" gorm:"column:last_name;not null;type:varchar(255)"`
	Email        string `json:"email" gorm:"column:email;unique;not null;type:varchar(255)"`
	Phone        string `json:"phone" gorm:"column:phone;type:varchar(20)"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"`
	PhotoUrl     string `json:"photoUrl" gorm:"column:photo_url;type:text"`
	Role         string `json:"role" gorm:"column:role;default:'employee';type:varchar(20)"`
	FCMToken     string `json:"fcmToken" gorm:"column:fcm_token;type:text"`

	// Кэш последней известной позиции в формате "lat,lng".
	// Перезаписывается каждым принятым обновлением местоположения;
	// источником истины остается история в tracking_points.
	LatLong string `json:"latlong" gorm:"column:latlong;type:varchar(64)"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:UserID"`
}

type UserResponse struct {
	ID        uint              `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	PhotoUrl  string            `json:"photoUrl"`
	Role      string            `json:"role"`
	FCMToken  string            `json:"fcmToken"`
	LatLong   string            `json:"latlong"`
	CreatedAt time.Time         `json:"created_at"`
	Employee  *EmployeeResponse `json:"employee,omitempty"`
}

// AfterFind вызывается после загрузки модели из базы данных
func (u *User) AfterFind(tx *gorm.DB) error {
	if u.PhotoUrl != "" && u.PhotoUrl[0] != '/' {
		u.PhotoUrl = "/" + u.PhotoUrl
	}

	return nil
}
