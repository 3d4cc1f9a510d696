package model

import "time"

// User 账号（email 大小写不敏感唯一）
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null"`
	Password  string `gorm:"type:varchar(128);not null"` // bcrypt hash
	FirstName string `gorm:"type:varchar(32);not null;default:''"`
	LastName  string `gorm:"type:varchar(32);not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// DisplayName 优先用姓名，缺省回落到 email
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
