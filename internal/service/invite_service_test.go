package service

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/model"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

// 取某用户最新未读通知的 id
func latestUnreadID(t *testing.T, env *testEnv, email string) uint {
	t.Helper()
	list, err := env.notify.Unread(context.Background(), email)
	require.NoError(t, err)
	require.NotEmpty(t, list.Notifications)
	return list.Notifications[0].NotificationID
}

func TestInvitePreconditions(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "Olive", "Owner")
	member := env.addUser(t, "member@example.com", "", "")
	env.addUser(t, "guest@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "daily")
	env.addMember(t, member, chID)

	t.Run("non-member cannot invite", func(t *testing.T) {
		err := env.invites.Invite(ctx, "guest@example.com", chID, "someone@example.com")
		assert.ErrorIs(t, err, apperr.ChannelNotFound)
	})

	t.Run("member but not owner", func(t *testing.T) {
		err := env.invites.Invite(ctx, "member@example.com", chID, "guest@example.com")
		assert.ErrorIs(t, err, apperr.NotChannelOwner)
	})

	t.Run("self invite", func(t *testing.T) {
		err := env.invites.Invite(ctx, "owner@example.com", chID, "Owner@Example.com")
		assert.ErrorIs(t, err, apperr.SelfInvite)
	})

	t.Run("existing member", func(t *testing.T) {
		err := env.invites.Invite(ctx, "owner@example.com", chID, "member@example.com")
		assert.ErrorIs(t, err, apperr.AlreadyInvited)
	})

	t.Run("unknown invitee", func(t *testing.T) {
		err := env.invites.Invite(ctx, "owner@example.com", chID, "nobody@example.com")
		assert.ErrorIs(t, err, apperr.NoUser)
	})

	t.Run("double invite", func(t *testing.T) {
		require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))
		err := env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com")
		assert.ErrorIs(t, err, apperr.AlreadyInvited)
	})
}

func TestInviteNotificationContent(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "Olive", "Owner")
	env.addUser(t, "guest@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "a-channel-with-a-very-long-name")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))

	list, err := env.notify.Unread(ctx, "guest@example.com")
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	note := list.Notifications[0]
	assert.Equal(t, model.RoleInvite, note.Role)
	// 标题截断到 16 字符
	assert.Equal(t, "a-channel-with-a", note.Title)
	assert.Contains(t, note.Message, "Olive Owner")
	assert.Contains(t, note.Message, "owner@example.com")
}

func TestInviteTitleMultibyteTruncation(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "", "")
	env.addUser(t, "guest@example.com", "", "")
	// 18 个字符，每个 3 字节
	chID := env.makeChannel(t, "owner@example.com", "每日站会频道每日站会频道每日站会频道")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))

	list, err := env.notify.Unread(ctx, "guest@example.com")
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	title := list.Notifications[0].Title
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, 16, utf8.RuneCountInString(title))
	assert.Equal(t, "每日站会频道每日站会频道每日站会", title)
}

func TestAcceptInvite(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "", "")
	guest := env.addUser(t, "guest@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "daily")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))
	noteID := latestUnreadID(t, env, "guest@example.com")

	require.NoError(t, env.invites.Respond(ctx, "guest@example.com", noteID, boolptr(true), strptr("Accept")))

	// 成员建立，邀请删除
	members, err := env.channels.Members(ctx, "guest@example.com", chID)
	require.NoError(t, err)
	assert.Contains(t, members, "guest@example.com")

	var cnt int64
	require.NoError(t, env.db.Model(&model.ChannelInvite{}).Count(&cnt).Error)
	assert.Zero(t, cnt)

	var memberCnt int64
	require.NoError(t, env.db.Model(&model.ChannelMember{}).Where("user_id = ?", guest.ID).Count(&memberCnt).Error)
	assert.EqualValues(t, 1, memberCnt)

	// dismissed 与 invite 同一调用生效
	list, err := env.notify.Unread(ctx, "guest@example.com")
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
}

func TestDeclineInviteKeepPolicy(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "", "")
	env.addUser(t, "guest@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "daily")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))
	noteID := latestUnreadID(t, env, "guest@example.com")

	require.NoError(t, env.invites.Respond(ctx, "guest@example.com", noteID, nil, strptr("decline")))

	// keep 策略：邀请保留，之后仍可接受
	var cnt int64
	require.NoError(t, env.db.Model(&model.ChannelInvite{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	require.NoError(t, env.invites.Respond(ctx, "guest@example.com", noteID, nil, strptr("accept")))
	members, err := env.channels.Members(ctx, "guest@example.com", chID)
	require.NoError(t, err)
	assert.Contains(t, members, "guest@example.com")
}

func TestDeclineInviteDeletePolicy(t *testing.T) {
	env := newTestEnv(t, DeclineDelete)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "", "")
	env.addUser(t, "guest@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "daily")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))
	noteID := latestUnreadID(t, env, "guest@example.com")

	require.NoError(t, env.invites.Respond(ctx, "guest@example.com", noteID, nil, strptr("decline")))

	var cnt int64
	require.NoError(t, env.db.Model(&model.ChannelInvite{}).Count(&cnt).Error)
	assert.Zero(t, cnt)

	// 邀请已删，再接受只能失败
	err := env.invites.Respond(ctx, "guest@example.com", noteID, nil, strptr("accept"))
	assert.ErrorIs(t, err, apperr.InvalidArg)
}

func TestRespondValidation(t *testing.T) {
	env := newTestEnv(t, DeclineKeep)
	ctx := context.Background()
	env.addUser(t, "owner@example.com", "", "")
	env.addUser(t, "guest@example.com", "", "")
	env.addUser(t, "other@example.com", "", "")
	chID := env.makeChannel(t, "owner@example.com", "daily")
	require.NoError(t, env.invites.Invite(ctx, "owner@example.com", chID, "guest@example.com"))
	noteID := latestUnreadID(t, env, "guest@example.com")

	t.Run("unknown notification", func(t *testing.T) {
		err := env.invites.Respond(ctx, "guest@example.com", 9999, boolptr(true), nil)
		assert.ErrorIs(t, err, apperr.NotificationNotFound)
	})

	t.Run("other user's notification invisible", func(t *testing.T) {
		err := env.invites.Respond(ctx, "other@example.com", noteID, boolptr(true), nil)
		assert.ErrorIs(t, err, apperr.NotificationNotFound)
	})

	t.Run("bogus invite value", func(t *testing.T) {
		err := env.invites.Respond(ctx, "guest@example.com", noteID, nil, strptr("maybe"))
		assert.ErrorIs(t, err, apperr.InvalidArg)
	})

	t.Run("dismiss only", func(t *testing.T) {
		require.NoError(t, env.invites.Respond(ctx, "guest@example.com", noteID, boolptr(true), nil))
		list, err := env.notify.Unread(ctx, "guest@example.com")
		require.NoError(t, err)
		assert.Empty(t, list.Notifications)
	})
}
