package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/standup-backend/internal/apperr"
	"github.com/d60-Lab/standup-backend/internal/model"
	"github.com/d60-Lab/standup-backend/internal/repository"
	"github.com/d60-Lab/standup-backend/pkg/logger"
)

const storedNameLimit = 32

// Account 对外暴露的账号信息
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthService 注册、登录与账号设置
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*Account, error)
	// Authenticate 校验密码，成功签发 JWT
	Authenticate(ctx context.Context, email, password string) (string, error)
	Settings(ctx context.Context, email string) (*Account, error)
	SetName(ctx context.Context, email, firstName, lastName string) (*Account, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*Account, error) {
	if email == "" {
		return nil, apperr.InvalidEmail
	}
	if password == "" {
		return nil, apperr.InvalidPass
	}
	if strings.Count(email, "@") != 1 {
		return nil, apperr.InvalidEmail
	}
	local, host, _ := strings.Cut(email, "@")
	if local == "" || host == "" {
		return nil, apperr.InvalidEmail
	}

	used, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.InternalDB
	}
	if used {
		return nil, apperr.EmailUsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.InternalDB
	}
	user := &model.User{
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册输给唯一约束
		logger.Warn("user create failed", zap.Error(err))
		return nil, apperr.InternalDB
	}
	return accountOf(user), nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.AuthFailed
		}
		return "", apperr.InternalDB
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", apperr.AuthFailed
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strings.ToLower(user.Email),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.InternalDB
	}
	return signed, nil
}

func (s *authService) Settings(ctx context.Context, email string) (*Account, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NoUser
		}
		return nil, apperr.InternalDB
	}
	return accountOf(user), nil
}

func (s *authService) SetName(ctx context.Context, email, firstName, lastName string) (*Account, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NoUser
		}
		return nil, apperr.InternalDB
	}

	nameLen := utf8.RuneCountInString(firstName) + utf8.RuneCountInString(lastName)
	if nameLen > storedNameLimit || nameLen <= 0 {
		return nil, apperr.BadName
	}

	user.FirstName = firstName
	user.LastName = lastName
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, apperr.InternalDB
	}
	return accountOf(user), nil
}

func accountOf(user *model.User) *Account {
	return &Account{Email: user.Email, FirstName: user.FirstName, LastName: user.LastName}
}
