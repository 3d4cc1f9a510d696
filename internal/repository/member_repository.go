package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
)

type MemberRepository interface {
	Get(ctx context.Context, userID, channelID uint) (*model.ChannelMember, error)
	Exists(ctx context.Context, userID, channelID uint) (bool, error)
	Create(ctx context.Context, member *model.ChannelMember) error
	Delete(ctx context.Context, userID, channelID uint) error
	// ListByChannel 频道全部成员行（不含 owner），按加入时间升序
	ListByChannel(ctx context.Context, channelID uint) ([]*model.ChannelMember, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository { return &memberRepository{db: db} }

func (r *memberRepository) Get(ctx context.Context, userID, channelID uint) (*model.ChannelMember, error) {
	var member model.ChannelMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Exists(ctx context.Context, userID, channelID uint) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.ChannelMember{}).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *memberRepository) Create(ctx context.Context, member *model.ChannelMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) Delete(ctx context.Context, userID, channelID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Delete(&model.ChannelMember{}).Error
}

func (r *memberRepository) ListByChannel(ctx context.Context, channelID uint) ([]*model.ChannelMember, error) {
	var res []*model.ChannelMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("channel_id = ?", channelID).
		Order("dt_joined").
		Find(&res).Error
	return res, err
}
