package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/pkg/database"
)

func setupInviteDB(t *testing.T) (*gorm.DB, *model.User, *model.Channel) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	owner := &model.User{Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(owner).Error)
	guest := &model.User{Email: "guest@example.com", Password: "x"}
	require.NoError(t, db.Create(guest).Error)
	channel := &model.Channel{OwnerID: &owner.ID, Name: "daily"}
	require.NoError(t, db.Create(channel).Error)
	return db, guest, channel
}

func TestCreateWithNotificationAtomic(t *testing.T) {
	db, guest, channel := setupInviteDB(t)
	repo := NewInviteRepository(db)
	ctx := context.Background()

	note := &model.Notification{UserID: guest.ID, Title: "daily", Message: "join us", Role: model.RoleInvite}
	require.NoError(t, repo.CreateWithNotification(ctx, note, channel.ID, guest.ID))

	invite, err := repo.PendingFor(ctx, guest.ID, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, invite.NotificationID)

	// 重复邀请撞唯一键：事务回滚，不残留孤儿通知
	dup := &model.Notification{UserID: guest.ID, Title: "daily", Message: "again", Role: model.RoleInvite}
	require.Error(t, repo.CreateWithNotification(ctx, dup, channel.ID, guest.ID))

	var noteCnt int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&noteCnt).Error)
	assert.EqualValues(t, 1, noteCnt)
}

func TestAcceptIntoMembership(t *testing.T) {
	db, guest, channel := setupInviteDB(t)
	repo := NewInviteRepository(db)
	members := NewMemberRepository(db)
	ctx := context.Background()

	note := &model.Notification{UserID: guest.ID, Title: "daily", Message: "join us", Role: model.RoleInvite}
	require.NoError(t, repo.CreateWithNotification(ctx, note, channel.ID, guest.ID))
	invite, err := repo.ByNotificationID(ctx, note.ID)
	require.NoError(t, err)

	require.NoError(t, repo.AcceptIntoMembership(ctx, invite))

	ok, err := members.Exists(ctx, guest.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = repo.PendingFor(ctx, guest.ID, channel.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAcceptRollsBackWhenAlreadyMember(t *testing.T) {
	db, guest, channel := setupInviteDB(t)
	repo := NewInviteRepository(db)
	ctx := context.Background()

	note := &model.Notification{UserID: guest.ID, Title: "daily", Message: "join us", Role: model.RoleInvite}
	require.NoError(t, repo.CreateWithNotification(ctx, note, channel.ID, guest.ID))
	invite, err := repo.ByNotificationID(ctx, note.ID)
	require.NoError(t, err)

	// 已有成员行时接受撞唯一键：邀请保留
	require.NoError(t, db.Create(&model.ChannelMember{UserID: guest.ID, ChannelID: channel.ID}).Error)
	require.Error(t, repo.AcceptIntoMembership(ctx, invite))

	_, err = repo.PendingFor(ctx, guest.ID, channel.ID)
	assert.NoError(t, err)
}
