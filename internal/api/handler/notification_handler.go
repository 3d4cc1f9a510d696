package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/standup-backend/internal/api/gate"
	"github.com/d60-Lab/standup-backend/pkg/response"
)

// UnreadNotifications 未读通知，最多 25 条，附集合指纹
// @Summary 未读通知
// @Tags 通知
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/notification/list/unread [get]
func (h *Handler) UnreadNotifications(c *gin.Context) {
	list, err := h.notifySvc.Unread(c.Request.Context(), gate.RequesterEmail(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, list, "")
}

// UnreadFingerprint 未读集合指纹探针（优先走缓存）
// @Summary 未读指纹
// @Tags 通知
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Success 200 {object} response.Response
// @Router /api/notification/list/unread/fingerprint [get]
func (h *Handler) UnreadFingerprint(c *gin.Context) {
	fp, err := h.notifySvc.UnreadFingerprint(c.Request.Context(), gate.RequesterEmail(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"fingerprint": fp}, "")
}

// NotificationResponse dismiss 与邀请响应，可合并一次调用
// @Summary 响应通知
// @Tags 通知
// @Accept json
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param request body map[string]string true "notification_id / dismissed / invite"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/notification/response [post]
func (h *Handler) NotificationResponse(c *gin.Context) {
	args := gate.FromContext(c)

	notificationID, err := args.Uint("notification_id")
	if err != nil {
		response.FailErr(c, err)
		return
	}
	dismissed, err := args.OptionalBool("dismissed")
	if err != nil {
		response.FailErr(c, err)
		return
	}
	var inviteAction *string
	if v, ok := args.Optional("invite"); ok {
		inviteAction = &v
	}

	err = h.inviteSvc.Respond(c.Request.Context(), gate.RequesterEmail(c), notificationID, dismissed, inviteAction)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, nil, "Notification updated")
}
