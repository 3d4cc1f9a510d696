package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
)

type ChannelRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Channel, error)
	// GetByOwnerAndName 名称大小写不敏感，含已归档频道
	GetByOwnerAndName(ctx context.Context, ownerID uint, name string) (*model.Channel, error)
	Create(ctx context.Context, channel *model.Channel) error
	Save(ctx context.Context, channel *model.Channel) error
	// ChannelsOwnedBy 该用户拥有的全部频道（含归档），按 id 升序
	ChannelsOwnedBy(ctx context.Context, userID uint) ([]*model.Channel, error)
	// ChannelsMemberOf 该用户作为成员加入的未归档频道，按加入时间升序
	ChannelsMemberOf(ctx context.Context, userID uint) ([]*model.Channel, error)
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository { return &channelRepository{db: db} }

func (r *channelRepository) GetByID(ctx context.Context, id uint) (*model.Channel, error) {
	var channel model.Channel
	err := r.db.WithContext(ctx).Preload("Owner").First(&channel, id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) GetByOwnerAndName(ctx context.Context, ownerID uint, name string) (*model.Channel, error) {
	var channel model.Channel
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ? AND LOWER(name) = LOWER(?)", ownerID, name).
		First(&channel).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) Create(ctx context.Context, channel *model.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *channelRepository) Save(ctx context.Context, channel *model.Channel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

func (r *channelRepository) ChannelsOwnedBy(ctx context.Context, userID uint) ([]*model.Channel, error) {
	var res []*model.Channel
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", userID).
		Order("id").
		Find(&res).Error
	return res, err
}

func (r *channelRepository) ChannelsMemberOf(ctx context.Context, userID uint) ([]*model.Channel, error) {
	var res []*model.Channel
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN channel_members ON channel_members.channel_id = channels.id").
		Where("channel_members.user_id = ? AND channels.archived = ?", userID, false).
		Order("channel_members.dt_joined").
		Find(&res).Error
	return res, err
}
