package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
)

type NotificationRepository interface {
	// OwnedByID 按 id 查找且限定属主，避免越权访问他人通知
	OwnedByID(ctx context.Context, userID, id uint) (*model.Notification, error)
	// ListUnread 未 dismiss 的通知，最新在前，最多 limit 条
	ListUnread(ctx context.Context, userID uint, limit int) ([]*model.Notification, error)
	Create(ctx context.Context, notification *model.Notification) error
	Save(ctx context.Context, notification *model.Notification) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) OwnedByID(ctx context.Context, userID, id uint) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID uint, limit int) ([]*model.Notification, error) {
	var res []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dismissed = ?", userID, false).
		Order("dt_created DESC").
		Order("id DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) Save(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}
