package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
)

type MessageRepository interface {
	GetByKey(ctx context.Context, userID, channelID uint, dtPosted string) (*model.ChannelMessage, error)
	Create(ctx context.Context, message *model.ChannelMessage) error
	Save(ctx context.Context, message *model.ChannelMessage) error
	// ListByChannelRange 区间内（含端点）的全部留言，按日期、用户升序
	ListByChannelRange(ctx context.Context, channelID uint, start, end string) ([]*model.ChannelMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) GetByKey(ctx context.Context, userID, channelID uint, dtPosted string) (*model.ChannelMessage, error) {
	var message model.ChannelMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ? AND dt_posted = ?", userID, channelID, dtPosted).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.ChannelMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Save(ctx context.Context, message *model.ChannelMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) ListByChannelRange(ctx context.Context, channelID uint, start, end string) ([]*model.ChannelMessage, error) {
	var res []*model.ChannelMessage
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("channel_id = ? AND dt_posted >= ? AND dt_posted <= ?", channelID, start, end).
		Order("dt_posted").
		Order("user_id").
		Find(&res).Error
	return res, err
}
