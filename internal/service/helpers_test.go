package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/learnhub/learnhub/internal/hash"
	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/ratelimit"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every goroutine on the same in-memory DB
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestTokenService(db *gorm.DB) *TokenService {
	return &TokenService{
		DB:            db,
		Cache:         ratelimit.NewMemoryStore(),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestAuthService(db *gorm.DB, limiter ratelimit.BlockStore) *AuthService {
	return &AuthService{
		DB:               db,
		Tokens:           newTestTokenService(db),
		Limiter:          limiter,
		LoginBlockTTL:    30 * time.Second,
		RegisterBlockTTL: 60 * time.Second,
	}
}

func createUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	user.Profile = &profile

	return &user
}

func createCourse(t *testing.T, db *gorm.DB, instructor *models.User, slug, status string) *models.Course {
	t.Helper()

	course := models.Course{
		Title:        "Course " + slug,
		Slug:         slug,
		InstructorID: instructor.ID,
		Status:       status,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}
