package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试独立的共享内存库，避免连接池拿到不同的 :memory: 实例
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	memberRepo  repository.MemberRepository
	inviteRepo  repository.InviteRepository
	noteRepo    repository.NotificationRepository
	messageRepo repository.MessageRepository

	channels ChannelService
	invites  InviteService
	notify   NotificationService
	messages MessageService
}

func newTestEnv(t *testing.T, policy DeclinePolicy) *testEnv {
	t.Helper()
	db := newTestDB(t)

	userRepo := repository.NewUserRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	noteRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	channels := NewChannelService(userRepo, channelRepo, memberRepo)
	notify := NewNotificationService(userRepo, noteRepo, nil, 25, 0)
	invites := NewInviteService(userRepo, inviteRepo, noteRepo, channels, notify, policy)
	messages := NewMessageService(userRepo, messageRepo, channels)

	return &testEnv{
		db:          db,
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		inviteRepo:  inviteRepo,
		noteRepo:    noteRepo,
		messageRepo: messageRepo,
		channels:    channels,
		invites:     invites,
		notify:      notify,
		messages:    messages,
	}
}

func (e *testEnv) addUser(t *testing.T, email, first, last string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "x", FirstName: first, LastName: last}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

// makeChannel 建频道并返回其 id 字符串
func (e *testEnv) makeChannel(t *testing.T, ownerEmail, name string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.channels.Create(ctx, ownerEmail, name))
	list, err := e.channels.List(ctx, ownerEmail)
	require.NoError(t, err)
	for _, ch := range list {
		if strings.EqualFold(ch.ChannelName, name) {
			return fmt.Sprint(ch.ChannelID)
		}
	}
	t.Fatalf("channel %q not found after create", name)
	return ""
}

func (e *testEnv) addMember(t *testing.T, user *model.User, channelIDArg string) {
	t.Helper()
	id, err := ParseChannelID(channelIDArg)
	require.NoError(t, err)
	require.NoError(t, e.memberRepo.Create(context.Background(), &model.ChannelMember{
		UserID:    user.ID,
		ChannelID: id,
	}))
}
