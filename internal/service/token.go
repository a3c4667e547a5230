package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/ratelimit"
	"github.com/learnhub/learnhub/internal/tokens"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenRevoked    = errors.New("token revoked")
	ErrInactiveAccount = errors.New("account inactive or missing")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// TokenService issues and verifies HS256 access/refresh pairs. Refresh
// tokens are persisted hashed with their jti; revocation marks the row and
// mirrors the jti into the cache with a TTL covering the token's remaining
// life, so a revoked token never verifies again before its natural expiry.
type TokenService struct {
	DB            *gorm.DB
	Cache         ratelimit.BlockStore
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (s *TokenService) CreateAccessToken(user *models.User, accessExp time.Time) (string, error) {
	accessClaims := tokens.AccessClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}

	tokenAccess := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err := tokenAccess.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

func (s *TokenService) CreateRefreshToken(userID uint, refreshExp time.Time) (string, string, error) {
	jti := tokens.NewJTI()
	refreshClaims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        jti,
		},
	}

	tokenRefresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err := tokenRefresh.SignedString(s.RefreshSecret)
	if err != nil {
		return "", "", err
	}

	return refreshToken, jti, nil
}

// Issue creates a fresh pair for the user and persists the refresh row.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	return s.issue(s.DB.WithContext(ctx), user)
}

func (s *TokenService) issue(db *gorm.DB, user *models.User) (*TokenPair, error) {
	accessExp := time.Now().Add(s.AccessTTL)
	accessToken, err := s.CreateAccessToken(user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := time.Now().Add(s.RefreshTTL)
	refreshToken, jti, err := s.CreateRefreshToken(user.ID, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	row := models.RefreshToken{
		Token:     tokens.Sha256Hex(refreshToken),
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// VerifyAccess validates the token and re-checks that the account behind it
// still exists and is active. A cryptographically valid token for a
// deactivated account does not pass.
func (s *TokenService) VerifyAccess(ctx context.Context, raw string) (*tokens.AccessClaims, *models.User, error) {
	claims, err := tokens.AccessClaimsFromToken(raw, s.JWTSecret)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return nil, nil, ErrTokenExpired
		}
		return nil, nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, uint(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInactiveAccount
		}
		return nil, nil, fmt.Errorf("load account: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveAccount
	}

	return claims, &user, nil
}

// Revoke blacklists the refresh token. Malformed or already-expired tokens
// are reported as invalid rather than silently accepted.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	claims, err := tokens.RefreshClaimsFromToken(raw, s.RefreshSecret)
	if err != nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	result := s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", claims.ID).
		Update("revoked", true)
	if result.Error != nil {
		return fmt.Errorf("revoke refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}

	s.blockJTI(ctx, claims.ID, claims.ExpiresAt.Time)
	return nil
}

// Refresh rotates the pair: the presented refresh token is revoked in the
// same transaction that records its replacement, so the old token cannot be
// replayed once the new pair exists.
func (s *TokenService) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(raw, s.RefreshSecret)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	if s.Cache != nil {
		if blocked, err := s.Cache.IsBlocked(ctx, ratelimit.RevokedKey(claims.ID)); err == nil && blocked {
			return nil, ErrTokenRevoked
		}
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var pair *TokenPair
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("jti = ?", claims.ID).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("load refresh token: %w", err)
		}
		if stored.Revoked {
			return ErrTokenRevoked
		}
		if stored.ExpiresAt < time.Now().Unix() {
			return ErrTokenExpired
		}

		var user models.User
		if err := tx.First(&user, uint(userID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInactiveAccount
			}
			return fmt.Errorf("load account: %w", err)
		}
		if !user.IsActive {
			return ErrInactiveAccount
		}

		if err := tx.Model(&models.RefreshToken{}).
			Where("jti = ?", claims.ID).
			Update("revoked", true).Error; err != nil {
			return fmt.Errorf("revoke old refresh token: %w", err)
		}

		newPair, err := s.issue(tx, &user)
		if err != nil {
			return err
		}
		pair = newPair
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.blockJTI(ctx, claims.ID, claims.ExpiresAt.Time)
	return pair, nil
}

// blockJTI mirrors a revocation into the cache for the token's remaining
// lifetime. The DB row is the source of truth; a cache miss only costs a
// DB lookup, so cache errors are not fatal.
func (s *TokenService) blockJTI(ctx context.Context, jti string, exp time.Time) {
	if s.Cache == nil {
		return
	}
	remaining := time.Until(exp)
	if remaining <= 0 {
		return
	}
	_ = s.Cache.Block(ctx, ratelimit.RevokedKey(jti), remaining)
}
