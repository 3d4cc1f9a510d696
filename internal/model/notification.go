package model

import "time"

// Notification 用户通知；只会被 dismiss 或响应，不做硬删除
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_notification_user"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	DtCreated time.Time `gorm:"autoCreateTime;index"`
	Title     string    `gorm:"type:varchar(4096);not null"`
	Message   string    `gorm:"type:varchar(4096);not null"`
	// 通知类型标签，如 INVITE
	Role      string `gorm:"type:varchar(16);not null;default:''"`
	Dismissed bool   `gorm:"not null;default:false"`
}

func (Notification) TableName() string { return "notifications" }

// RoleInvite 邀请类通知的 role 标签
const RoleInvite = "INVITE"
