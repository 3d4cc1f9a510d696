package model

import "time"

// Channel 用户拥有的频道；archived 为软删除，复建同名频道时复活
type Channel struct {
	ID      uint  `gorm:"primaryKey"`
	OwnerID *uint `gorm:"index:idx_channel_owner_name,unique"`
	Owner   *User `gorm:"constraint:OnDelete:SET NULL"`
	// 复合唯一键 idx_channel_owner_name = (owner_id, name)
	Name      string `gorm:"type:varchar(64);not null;index:idx_channel_owner_name,unique"`
	Archived  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Channel) TableName() string { return "channels" }

// ChannelMember 非 owner 的频道成员关系
type ChannelMember struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_member_user_channel,unique"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	ChannelID uint      `gorm:"not null;index:idx_member_user_channel,unique"`
	Channel   Channel   `gorm:"constraint:OnDelete:CASCADE"`
	Role      string    `gorm:"type:varchar(32);not null;default:''"`
	IsMod     bool      `gorm:"not null;default:false"`
	DtJoined  time.Time `gorm:"autoCreateTime"`
}

func (ChannelMember) TableName() string { return "channel_members" }

// ChannelInvite 待处理邀请，与 Notification 一对一；接受后删除并转成员
type ChannelInvite struct {
	ID             uint         `gorm:"primaryKey"`
	NotificationID uint         `gorm:"not null;uniqueIndex"`
	Notification   Notification `gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint         `gorm:"not null;index:idx_invite_user_channel,unique"`
	User           User         `gorm:"constraint:OnDelete:CASCADE"`
	ChannelID      uint         `gorm:"not null;index:idx_invite_user_channel,unique"`
	Channel        Channel      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
}

func (ChannelInvite) TableName() string { return "channel_invites" }

// ChannelMessage 每用户每频道每日一条，重复提交覆盖
type ChannelMessage struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index:idx_message_user_channel_date,unique"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	ChannelID uint      `gorm:"not null;index:idx_message_user_channel_date,unique"`
	Channel   Channel   `gorm:"constraint:OnDelete:CASCADE"`
	DtPosted  string    `gorm:"type:varchar(10);not null;index:idx_message_user_channel_date,unique"` // ISO date YYYY-MM-DD
	Body      string    `gorm:"type:varchar(4096);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ChannelMessage) TableName() string { return "channel_messages" }
