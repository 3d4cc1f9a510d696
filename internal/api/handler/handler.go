package handler

import (
	"github.com/d60-Lab/standup-backend/internal/service"
)

// Handler 聚合各业务 service 的 HTTP 处理器
type Handler struct {
	authSvc    service.AuthService
	channelSvc service.ChannelService
	inviteSvc  service.InviteService
	notifySvc  service.NotificationService
	messageSvc service.MessageService
}

func New(
	authSvc service.AuthService,
	channelSvc service.ChannelService,
	inviteSvc service.InviteService,
	notifySvc service.NotificationService,
	messageSvc service.MessageService,
) *Handler {
	return &Handler{
		authSvc:    authSvc,
		channelSvc: channelSvc,
		inviteSvc:  inviteSvc,
		notifySvc:  notifySvc,
		messageSvc: messageSvc,
	}
}
