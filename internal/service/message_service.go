package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/logger"
)

const (
	isoDate        = "2006-01-02"
	bodyLimit      = 4096
	logRangeMaxDay = 31
)

// LogMessage 单条日志留言
type LogMessage struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// LogDay 单日日志条目
type LogDay struct {
	Date     string       `json:"date"`
	Messages []LogMessage `json:"messages"`
}

// MessageService 每用户每日留言的 upsert 与区间日志
type MessageService interface {
	Post(ctx context.Context, email, channelIDArg, dtPosted, body string) error
	ListLogs(ctx context.Context, email, channelIDArg, dtStart, dtEnd string) ([]LogDay, error)
}

type messageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	channels    ChannelService
}

func NewMessageService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	channels ChannelService,
) MessageService {
	return &messageService{userRepo: userRepo, messageRepo: messageRepo, channels: channels}
}

func (s *messageService) Post(ctx context.Context, email, channelIDArg, dtPosted, body string) error {
	channel, _, err := s.channels.Resolve(ctx, email, channelIDArg)
	if err != nil {
		return err
	}

	if body == "" {
		return apperr.MissingArg
	}
	if len(body) > bodyLimit {
		return apperr.InvalidArg
	}
	day, err := time.Parse(isoDate, strings.TrimSpace(dtPosted))
	if err != nil {
		return apperr.InvalidArg
	}
	date := day.Format(isoDate)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperr.InternalDB
	}

	existing, err := s.messageRepo.GetByKey(ctx, user.ID, channel.ID, date)
	if err == nil {
		existing.Body = body
		if err := s.messageRepo.Save(ctx, existing); err != nil {
			return apperr.InternalDB
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.InternalDB
	}

	message := &model.ChannelMessage{
		UserID:    user.ID,
		ChannelID: channel.ID,
		DtPosted:  date,
		Body:      body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		// 并发 upsert 输给唯一约束
		logger.Warn("message create failed",
			zap.Uint("channel", channel.ID),
			zap.String("date", date),
			zap.Error(err))
		return apperr.InternalDB
	}
	return nil
}

func (s *messageService) ListLogs(ctx context.Context, email, channelIDArg, dtStart, dtEnd string) ([]LogDay, error) {
	channel, _, err := s.channels.Resolve(ctx, email, channelIDArg)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(isoDate, strings.TrimSpace(dtStart))
	if err != nil {
		return nil, apperr.InvalidArg
	}
	end, err := time.Parse(isoDate, strings.TrimSpace(dtEnd))
	if err != nil {
		return nil, apperr.InvalidArg
	}
	// 区间反转时自动交换
	if start.After(end) {
		start, end = end, start
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > logRangeMaxDay {
		return nil, apperr.InvalidRange
	}

	rows, err := s.messageRepo.ListByChannelRange(ctx, channel.ID, start.Format(isoDate), end.Format(isoDate))
	if err != nil {
		return nil, apperr.InternalDB
	}
	byDate := map[string][]LogMessage{}
	for _, row := range rows {
		byDate[row.DtPosted] = append(byDate[row.DtPosted], LogMessage{
			User:    strings.ToLower(row.User.Email),
			Message: row.Body,
		})
	}

	res := make([]LogDay, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(isoDate)
		messages := byDate[date]
		if messages == nil {
			messages = []LogMessage{}
		}
		res = append(res, LogDay{Date: date, Messages: messages})
	}
	return res, nil
}
