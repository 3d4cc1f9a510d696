package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
)

type InviteRepository interface {
	// PendingFor 查找某用户在某频道的待处理邀请
	PendingFor(ctx context.Context, userID, channelID uint) (*model.ChannelInvite, error)
	ByNotificationID(ctx context.Context, notificationID uint) (*model.ChannelInvite, error)
	// CreateWithNotification 在一个事务内写入通知与邀请，保证不留孤儿通知
	CreateWithNotification(ctx context.Context, notification *model.Notification, channelID, userID uint) error
	// AcceptIntoMembership 在一个事务内建立成员关系并删除邀请
	AcceptIntoMembership(ctx context.Context, invite *model.ChannelInvite) error
	Delete(ctx context.Context, id uint) error
}

type inviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository { return &inviteRepository{db: db} }

func (r *inviteRepository) PendingFor(ctx context.Context, userID, channelID uint) (*model.ChannelInvite, error) {
	var invite model.ChannelInvite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) ByNotificationID(ctx context.Context, notificationID uint) (*model.ChannelInvite, error) {
	var invite model.ChannelInvite
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) CreateWithNotification(ctx context.Context, notification *model.Notification, channelID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		invite := &model.ChannelInvite{
			NotificationID: notification.ID,
			UserID:         userID,
			ChannelID:      channelID,
		}
		return tx.Create(invite).Error
	})
}

func (r *inviteRepository) AcceptIntoMembership(ctx context.Context, invite *model.ChannelInvite) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &model.ChannelMember{UserID: invite.UserID, ChannelID: invite.ChannelID}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ChannelInvite{}, invite.ID).Error
	})
}

func (r *inviteRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.ChannelInvite{}, id).Error
}
