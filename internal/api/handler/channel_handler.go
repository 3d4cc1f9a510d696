package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/standup-backend/internal/api/gate"
	"github.com/d60-Lab/standup-backend/pkg/response"
)

// CreateChannel 创建频道；同名归档频道会被复活
// @Summary 创建频道
// @Tags 频道
// @Accept json
// @Produce json
// @Param request body map[string]string true "user_email / channel_name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/channel/create [post]
func (h *Handler) CreateChannel(c *gin.Context) {
	args := gate.FromContext(c)
	userEmail, _ := args.Optional("user_email")
	channelName, _ := args.Optional("channel_name")

	if err := h.channelSvc.Create(c.Request.Context(), userEmail, channelName); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"channel_name": channelName}, "Channel created")
}

// ListChannels 列出请求者可见的频道
// @Summary 列出频道
// @Tags 频道
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/channel/list [get]
func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.channelSvc.List(c.Request.Context(), gate.RequesterEmail(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, channels, "")
}

// ChannelMembers 频道成员列表，owner 在前
// @Summary 频道成员
// @Tags 频道
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param channel_id query string true "频道 id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/channel/members [get]
func (h *Handler) ChannelMembers(c *gin.Context) {
	members, err := h.channelSvc.Members(c.Request.Context(), gate.RequesterEmail(c), c.Query("channel_id"))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, members, "")
}

// ArchiveChannel owner 归档频道，普通成员退出频道
// @Summary 归档或退出频道
// @Tags 频道
// @Accept json
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param request body map[string]string true "channel_id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/channel/archive [post]
func (h *Handler) ArchiveChannel(c *gin.Context) {
	args := gate.FromContext(c)
	channelID, _ := args.Optional("channel_id")

	archived, err := h.channelSvc.ArchiveOrLeave(c.Request.Context(), gate.RequesterEmail(c), channelID)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	if archived {
		response.Success(c, nil, "Archived channel")
		return
	}
	response.Success(c, nil, "Left channel")
}

// InviteUser 邀请用户加入频道（仅 owner）
// @Summary 邀请用户
// @Tags 频道
// @Accept json
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param request body map[string]string true "channel_id / invite_email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/channel/invite [post]
func (h *Handler) InviteUser(c *gin.Context) {
	args := gate.FromContext(c)
	channelID, _ := args.Optional("channel_id")
	inviteEmail, err := args.String("invite_email")
	if err != nil {
		response.FailErr(c, err)
		return
	}

	if err := h.inviteSvc.Invite(c.Request.Context(), gate.RequesterEmail(c), channelID, inviteEmail); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"invite_email": inviteEmail}, "User invited")
}

// PostMessage 提交当日留言，同键重复提交覆盖
// @Summary 提交留言
// @Tags 频道
// @Accept json
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param request body map[string]string true "channel_id / dt_posted / message"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/channel/message [post]
func (h *Handler) PostMessage(c *gin.Context) {
	args := gate.FromContext(c)
	channelID, _ := args.Optional("channel_id")
	dtPosted, _ := args.Optional("dt_posted")
	message, _ := args.Optional("message")

	if err := h.messageSvc.Post(c.Request.Context(), gate.RequesterEmail(c), channelID, dtPosted, message); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, nil, "Message posted")
}

// ListLogs 按日期区间列出频道日志
// @Summary 日志列表
// @Tags 频道
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param channel_id query string true "频道 id"
// @Param dt_start query string true "起始日期 YYYY-MM-DD"
// @Param dt_end query string true "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/channel/list_logs [get]
func (h *Handler) ListLogs(c *gin.Context) {
	days, err := h.messageSvc.ListLogs(
		c.Request.Context(),
		gate.RequesterEmail(c),
		c.Query("channel_id"),
		c.Query("dt_start"),
		c.Query("dt_end"),
	)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, days, "")
}
