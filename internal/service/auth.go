package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/learnhub/learnhub/internal/hash"
	"github.com/learnhub/learnhub/internal/logging"
	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/mykafka"
	"github.com/learnhub/learnhub/internal/ratelimit"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many attempts, try again later")
)

type AuthService struct {
	DB               *gorm.DB
	Tokens           *TokenService
	Limiter          ratelimit.BlockStore
	Producer         *mykafka.Producer
	LoginBlockTTL    time.Duration
	RegisterBlockTTL time.Duration
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	PhoneNumber string
	Country     string
	City        string
}

// Register creates the account and its profile, then issues tokens. A
// successful registration blocks the email for a short window to stop
// rapid repeat signups from the same identifier.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if in.Role != models.RoleStudent && in.Role != models.RoleInstructor {
		return nil, nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	if blocked, err := s.Limiter.IsBlocked(ctx, ratelimit.RegisterKey(in.Email)); err != nil {
		l.Warn("rate limiter unavailable", "error", err)
	} else if blocked {
		return nil, nil, ErrRateLimited
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         in.Role,
		PhoneNumber:  in.PhoneNumber,
		Country:      in.Country,
		City:         in.City,
		IsActive:     true,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrDuplicateAccount
		}
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	// Profile creation must not sink the registration: the account is
	// usable without one and the next profile read repairs it.
	profile := models.Profile{UserID: user.ID}
	if err := s.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		l.Warn("profile creation failed, will repair on next access", "user_id", user.ID, "error", err)
	} else {
		user.Profile = &profile
	}

	pair, err := s.Tokens.Issue(ctx, &user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Limiter.Block(ctx, ratelimit.RegisterKey(in.Email), s.RegisterBlockTTL); err != nil {
		l.Warn("rate limiter unavailable", "error", err)
	}

	s.publish(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	return &user, pair, nil
}

// Login verifies credentials. Failures block the identifier for the login
// TTL and report the same error for unknown users and wrong passwords, so
// the response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	key := ratelimit.LoginKey(email)
	if blocked, err := s.Limiter.IsBlocked(ctx, key); err != nil {
		l.Warn("rate limiter unavailable", "error", err)
	} else if blocked {
		return nil, nil, ErrRateLimited
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.blockLogin(ctx, key, l)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load account: %w", err)
	}

	if !user.IsActive || !hash.CheckPassword(user.PasswordHash, password) {
		s.blockLogin(ctx, key, l)
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.Limiter.Clear(ctx, key); err != nil {
		l.Warn("rate limiter unavailable", "error", err)
	}

	pair, err := s.Tokens.Issue(ctx, &user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return &user, pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.Tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) blockLogin(ctx context.Context, key string, l *slog.Logger) {
	if err := s.Limiter.Block(ctx, key, s.LoginBlockTTL); err != nil {
		l.Warn("rate limiter unavailable", "error", err)
	}
}

func (s *AuthService) publish(ctx context.Context, topic string, key uint, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
