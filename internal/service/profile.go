package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/learnhub/learnhub/internal/models"
)

type ProfileService struct {
	DB *gorm.DB
}

// Get returns the user's profile, creating it on the spot when the row is
// missing. Registration may have skipped it; this is the repair path.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	return getOrCreateProfile(s.DB.WithContext(ctx), userID)
}

// ProfileInput carries the user-editable fields. Nil means the field was
// not sent and stays as it is; a pointer to the zero value clears it.
type ProfileInput struct {
	Bio                *string
	Expertise          *string
	TeachingExperience *int
	ProfilePicture     *string
	LinkedinURL        *string
	GithubURL          *string
	Website            *string
}

// Update applies only the fields present in the input. The counters are
// maintained by the enrollment engine only.
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*models.Profile, error) {
	profile, err := getOrCreateProfile(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.Expertise != nil {
		updates["expertise"] = *in.Expertise
	}
	if in.TeachingExperience != nil {
		updates["teaching_experience"] = *in.TeachingExperience
	}
	if in.ProfilePicture != nil {
		updates["profile_picture"] = *in.ProfilePicture
	}
	if in.LinkedinURL != nil {
		updates["linkedin_url"] = *in.LinkedinURL
	}
	if in.GithubURL != nil {
		updates["github_url"] = *in.GithubURL
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if len(updates) == 0 {
		return profile, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	var out models.Profile
	if err := s.DB.WithContext(ctx).First(&out, profile.ID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
