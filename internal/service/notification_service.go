package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/logger"
)

// UnreadNotification 未读通知列表项
type UnreadNotification struct {
	NotificationID uint      `json:"notification_id"`
	Timestamp      time.Time `json:"timestamp"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Role           string    `json:"role"`
}

// UnreadList 未读集合及其指纹；指纹可用作“集合是否变化”的廉价信号
type UnreadList struct {
	Notifications []UnreadNotification `json:"notifications"`
	Fingerprint   string               `json:"fingerprint"`
}

type NotificationService interface {
	Unread(ctx context.Context, email string) (*UnreadList, error)
	// UnreadFingerprint 只取指纹，优先命中 redis
	UnreadFingerprint(ctx context.Context, email string) (string, error)
	// InvalidateUnread 通知集合变化后失效缓存
	InvalidateUnread(ctx context.Context, userID uint)
}

type notificationService struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
	cache    *redis.Client // 允许为 nil（缓存关闭）
	limit    int
	ttl      time.Duration
}

func NewNotificationService(
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	cache *redis.Client,
	limit int,
	ttl time.Duration,
) NotificationService {
	if limit <= 0 {
		limit = 25
	}
	return &notificationService{userRepo: userRepo, noteRepo: noteRepo, cache: cache, limit: limit, ttl: ttl}
}

func (s *notificationService) Unread(ctx context.Context, email string) (*UnreadList, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NoUser
		}
		return nil, apperr.InternalDB
	}

	rows, err := s.noteRepo.ListUnread(ctx, user.ID, s.limit)
	if err != nil {
		return nil, apperr.InternalDB
	}

	items := make([]UnreadNotification, len(rows))
	ids := make([]uint, len(rows))
	for i, row := range rows {
		items[i] = UnreadNotification{
			NotificationID: row.ID,
			Timestamp:      row.DtCreated,
			Title:          row.Title,
			Message:        row.Message,
			Role:           row.Role,
		}
		ids[i] = row.ID
	}

	fp := fingerprint(ids)
	s.cacheSet(ctx, user.ID, fp)
	return &UnreadList{Notifications: items, Fingerprint: fp}, nil
}

func (s *notificationService) UnreadFingerprint(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NoUser
		}
		return "", apperr.InternalDB
	}

	if s.cache != nil {
		if fp, err := s.cache.Get(ctx, unreadKey(user.ID)).Result(); err == nil {
			return fp, nil
		}
	}

	rows, err := s.noteRepo.ListUnread(ctx, user.ID, s.limit)
	if err != nil {
		return "", apperr.InternalDB
	}
	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	fp := fingerprint(ids)
	s.cacheSet(ctx, user.ID, fp)
	return fp, nil
}

func (s *notificationService) InvalidateUnread(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadKey(userID)).Err(); err != nil {
		logger.Warn("unread cache invalidate failed", zap.Uint("user", userID), zap.Error(err))
	}
}

func (s *notificationService) cacheSet(ctx context.Context, userID uint, fp string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, unreadKey(userID), fp, s.ttl).Err(); err != nil {
		logger.Warn("unread cache set failed", zap.Uint("user", userID), zap.Error(err))
	}
}

func unreadKey(userID uint) string { return fmt.Sprintf("notify:unread:fp:%d", userID) }

// fingerprint 对升序 id 列表取 sha256
func fingerprint(ids []uint) string {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
