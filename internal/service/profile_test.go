package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/models"
)

func strPtr(s string) *string { return &s }

func TestProfileService_Update_PartialKeepsOtherFields(t *testing.T) {
	db := newTestDB(t)
	svc := &ProfileService{DB: db}
	user := createUser(t, db, "alice", "alice@example.com", models.RoleInstructor)
	ctx := context.Background()

	exp := 5
	_, err := svc.Update(ctx, user.ID, ProfileInput{
		Bio:                strPtr("original bio"),
		Expertise:          strPtr("distributed systems"),
		TeachingExperience: &exp,
		LinkedinURL:        strPtr("https://linkedin.com/in/alice"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, ProfileInput{Bio: strPtr("new bio")})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, "distributed systems", updated.Expertise, "field not sent stays as it is")
	assert.Equal(t, 5, updated.TeachingExperience)
	assert.Equal(t, "https://linkedin.com/in/alice", updated.LinkedinURL)
}

func TestProfileService_Update_ExplicitEmptyClears(t *testing.T) {
	db := newTestDB(t)
	svc := &ProfileService{DB: db}
	user := createUser(t, db, "alice", "alice@example.com", models.RoleInstructor)
	ctx := context.Background()

	_, err := svc.Update(ctx, user.ID, ProfileInput{
		Bio:     strPtr("bio"),
		Website: strPtr("https://alice.dev"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, ProfileInput{Website: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Website)
	assert.Equal(t, "bio", updated.Bio)
}

func TestProfileService_Update_EmptyInputIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := &ProfileService{DB: db}
	user := createUser(t, db, "alice", "alice@example.com", models.RoleStudent)
	ctx := context.Background()

	_, err := svc.Update(ctx, user.ID, ProfileInput{Bio: strPtr("bio")})
	require.NoError(t, err)

	profile, err := svc.Update(ctx, user.ID, ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "bio", profile.Bio)
}

func TestProfileService_Update_NeverTouchesCounters(t *testing.T) {
	db := newTestDB(t)
	svc := &ProfileService{DB: db}
	user := createUser(t, db, "alice", "alice@example.com", models.RoleStudent)
	ctx := context.Background()

	require.NoError(t, db.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		UpdateColumn("enrolled_courses_count", 3).Error)

	updated, err := svc.Update(ctx, user.ID, ProfileInput{Bio: strPtr("bio")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.EnrolledCoursesCount)
}
