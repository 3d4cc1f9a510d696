package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/logger"
)

// DeclinePolicy 拒绝邀请后的清理策略
type DeclinePolicy string

const (
	// DeclineKeep 保留邀请记录，之后仍可接受
	DeclineKeep DeclinePolicy = "keep"
	// DeclineDelete 拒绝即删除邀请记录
	DeclineDelete DeclinePolicy = "delete"
)

const inviteTitleLimit = 16

// InviteService 邀请与通知响应流程
type InviteService interface {
	Invite(ctx context.Context, requesterEmail, channelIDArg, inviteEmail string) error
	// Respond dismissed 与 invite 响应可以合并在一次调用里
	Respond(ctx context.Context, email string, notificationID uint, dismissed *bool, inviteAction *string) error
}

type inviteService struct {
	userRepo   repository.UserRepository
	inviteRepo repository.InviteRepository
	noteRepo   repository.NotificationRepository
	channels   ChannelService
	notifySvc  NotificationService
	policy     DeclinePolicy
}

func NewInviteService(
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
	noteRepo repository.NotificationRepository,
	channels ChannelService,
	notifySvc NotificationService,
	policy DeclinePolicy,
) InviteService {
	if policy != DeclineDelete {
		policy = DeclineKeep
	}
	return &inviteService{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		noteRepo:   noteRepo,
		channels:   channels,
		notifySvc:  notifySvc,
		policy:     policy,
	}
}

func (s *inviteService) Invite(ctx context.Context, requesterEmail, channelIDArg, inviteEmail string) error {
	channel, members, err := s.channels.Resolve(ctx, requesterEmail, channelIDArg)
	if err != nil {
		return err
	}
	if !channelOwnedBy(channel, requesterEmail) {
		return apperr.NotChannelOwner
	}
	if strings.EqualFold(inviteEmail, requesterEmail) {
		return apperr.SelfInvite
	}
	for _, m := range members {
		if strings.EqualFold(m.Email, inviteEmail) {
			return apperr.AlreadyInvited
		}
	}

	invitee, err := s.userRepo.GetByEmail(ctx, inviteEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NoUser
		}
		return apperr.InternalDB
	}

	if _, err := s.inviteRepo.PendingFor(ctx, invitee.ID, channel.ID); err == nil {
		return apperr.AlreadyInvited
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.InternalDB
	}

	inviter := channel.Owner
	notification := &model.Notification{
		UserID:  invitee.ID,
		Role:    model.RoleInvite,
		Title:   truncate(channel.Name, inviteTitleLimit),
		Message: fmt.Sprintf("%s (%s) invited you to join %s", inviter.DisplayName(), inviter.Email, channel.Name),
	}
	// 通知与邀请作为同一事务落地
	if err := s.inviteRepo.CreateWithNotification(ctx, notification, channel.ID, invitee.ID); err != nil {
		logger.Error("invite write failed",
			zap.Uint("channel", channel.ID),
			zap.Uint("invitee", invitee.ID),
			zap.Error(err))
		return apperr.InternalDB
	}

	s.notifySvc.InvalidateUnread(ctx, invitee.ID)
	return nil
}

func (s *inviteService) Respond(ctx context.Context, email string, notificationID uint, dismissed *bool, inviteAction *string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NoUser
		}
		return apperr.InternalDB
	}

	// 限定属主查找：他人的通知视同不存在
	notification, err := s.noteRepo.OwnedByID(ctx, user.ID, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotificationNotFound
		}
		return apperr.InternalDB
	}

	if inviteAction != nil {
		switch strings.ToLower(strings.TrimSpace(*inviteAction)) {
		case "accept":
			if err := s.accept(ctx, notification); err != nil {
				return err
			}
		case "decline":
			if err := s.decline(ctx, notification); err != nil {
				return err
			}
		default:
			return apperr.InvalidArg
		}
	}

	if dismissed != nil {
		notification.Dismissed = *dismissed
	}
	if err := s.noteRepo.Save(ctx, notification); err != nil {
		return apperr.InternalDB
	}

	s.notifySvc.InvalidateUnread(ctx, user.ID)
	return nil
}

func (s *inviteService) accept(ctx context.Context, notification *model.Notification) error {
	invite, err := s.inviteRepo.ByNotificationID(ctx, notification.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 非邀请类通知不接受 invite 响应
			return apperr.InvalidArg
		}
		return apperr.InternalDB
	}
	if err := s.inviteRepo.AcceptIntoMembership(ctx, invite); err != nil {
		logger.Error("invite accept failed", zap.Uint("invite", invite.ID), zap.Error(err))
		return apperr.InternalDB
	}
	return nil
}

func (s *inviteService) decline(ctx context.Context, notification *model.Notification) error {
	if s.policy == DeclineKeep {
		return nil
	}
	invite, err := s.inviteRepo.ByNotificationID(ctx, notification.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.InvalidArg
		}
		return apperr.InternalDB
	}
	if err := s.inviteRepo.Delete(ctx, invite.ID); err != nil {
		return apperr.InternalDB
	}
	return nil
}

// truncate 按字符截断，多字节名称不能截出非法 UTF-8
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
