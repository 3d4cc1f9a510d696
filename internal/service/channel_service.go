package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/logger"
)

// ChannelSummary 频道列表项
type ChannelSummary struct {
	ChannelID   uint   `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	Owner       string `json:"owner"`
	Archived    bool   `json:"archived"`
}

// ChannelService 频道与成员授权逻辑
type ChannelService interface {
	Create(ctx context.Context, ownerEmail, name string) error
	List(ctx context.Context, email string) ([]ChannelSummary, error)
	Members(ctx context.Context, email, channelIDArg string) ([]string, error)
	// ArchiveOrLeave owner 归档频道，成员退出频道；返回是否走了归档分支
	ArchiveOrLeave(ctx context.Context, email, channelIDArg string) (bool, error)
	// Resolve 成员视角解析频道：非成员与不存在一律 CHANNEL_NOT_FOUND，不泄露存在性
	Resolve(ctx context.Context, email, channelIDArg string) (*model.Channel, []*model.User, error)
}

type channelService struct {
	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
	memberRepo  repository.MemberRepository
}

func NewChannelService(
	userRepo repository.UserRepository,
	channelRepo repository.ChannelRepository,
	memberRepo repository.MemberRepository,
) ChannelService {
	return &channelService{userRepo: userRepo, channelRepo: channelRepo, memberRepo: memberRepo}
}

// ParseChannelID 校验 channel_id 为正整数
func ParseChannelID(arg string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.InvalidID
	}
	return uint(id), nil
}

func (s *channelService) Create(ctx context.Context, ownerEmail, name string) error {
	name = strings.TrimSpace(name)
	// 长度按字符计，多字节名称不吃亏
	if name == "" || utf8.RuneCountInString(name) > 64 {
		return apperr.InvalidName
	}

	owner, err := s.userRepo.GetByEmail(ctx, ownerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NoUser
		}
		return apperr.InternalDB
	}

	existing, err := s.channelRepo.GetByOwnerAndName(ctx, owner.ID, name)
	if err == nil {
		if existing.Archived {
			// 归档复活：与新建返回同样的成功语义
			existing.Archived = false
			if err := s.channelRepo.Save(ctx, existing); err != nil {
				return apperr.InternalDB
			}
			logger.Info("channel revived", zap.Uint("channel", existing.ID))
			return nil
		}
		return apperr.ChannelExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.InternalDB
	}

	channel := &model.Channel{OwnerID: &owner.ID, Name: name}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		// 并发创建同名频道时输给唯一约束
		logger.Warn("channel create failed", zap.String("name", name), zap.Error(err))
		return apperr.InternalDB
	}
	return nil
}

func (s *channelService) List(ctx context.Context, email string) ([]ChannelSummary, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NoUser
		}
		return nil, apperr.InternalDB
	}

	owned, err := s.channelRepo.ChannelsOwnedBy(ctx, user.ID)
	if err != nil {
		return nil, apperr.InternalDB
	}
	joined, err := s.channelRepo.ChannelsMemberOf(ctx, user.ID)
	if err != nil {
		return nil, apperr.InternalDB
	}

	res := make([]ChannelSummary, 0, len(owned)+len(joined))
	for _, ch := range append(owned, joined...) {
		ownerEmail := ""
		if ch.Owner != nil {
			ownerEmail = strings.ToLower(ch.Owner.Email)
		}
		res = append(res, ChannelSummary{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Owner:       ownerEmail,
			Archived:    ch.Archived,
		})
	}
	return res, nil
}

func (s *channelService) Members(ctx context.Context, email, channelIDArg string) ([]string, error) {
	_, members, err := s.Resolve(ctx, email, channelIDArg)
	if err != nil {
		return nil, err
	}
	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = strings.ToLower(m.Email)
	}
	return emails, nil
}

func (s *channelService) ArchiveOrLeave(ctx context.Context, email, channelIDArg string) (bool, error) {
	channel, _, err := s.Resolve(ctx, email, channelIDArg)
	if err != nil {
		return false, err
	}

	if channelOwnedBy(channel, email) {
		channel.Archived = true
		if err := s.channelRepo.Save(ctx, channel); err != nil {
			return false, apperr.InternalDB
		}
		logger.Info("channel archived", zap.Uint("channel", channel.ID))
		return true, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, apperr.InternalDB
	}
	if err := s.memberRepo.Delete(ctx, user.ID, channel.ID); err != nil {
		return false, apperr.InternalDB
	}
	return false, nil
}

func (s *channelService) Resolve(ctx context.Context, email, channelIDArg string) (*model.Channel, []*model.User, error) {
	id, err := ParseChannelID(channelIDArg)
	if err != nil {
		return nil, nil, err
	}

	channel, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ChannelNotFound
		}
		return nil, nil, apperr.InternalDB
	}
	// 归档频道对所有人不可见
	if channel.Archived {
		return nil, nil, apperr.ChannelNotFound
	}

	members, err := s.membersOf(ctx, channel)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range members {
		if strings.EqualFold(m.Email, email) {
			return channel, members, nil
		}
	}
	// 非成员与不存在同样应答
	return nil, nil, apperr.ChannelNotFound
}

// membersOf owner 在前，其后为去重的成员用户（按加入时间）
func (s *channelService) membersOf(ctx context.Context, channel *model.Channel) ([]*model.User, error) {
	var members []*model.User
	if channel.Owner != nil {
		members = append(members, channel.Owner)
	}

	rows, err := s.memberRepo.ListByChannel(ctx, channel.ID)
	if err != nil {
		return nil, apperr.InternalDB
	}
	seen := map[uint]bool{}
	if channel.OwnerID != nil {
		seen[*channel.OwnerID] = true
	}
	for _, row := range rows {
		if seen[row.UserID] {
			continue
		}
		seen[row.UserID] = true
		u := row.User
		members = append(members, &u)
	}
	return members, nil
}

func channelOwnedBy(channel *model.Channel, email string) bool {
	return channel.Owner != nil && strings.EqualFold(channel.Owner.Email, email)
}
