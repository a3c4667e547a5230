package authz

import (
	"errors"

	"github.com/learnhub/learnhub/internal/models"
)

// ErrForbidden means the caller is authenticated but not allowed to act on
// the resource. Distinct from a missing or invalid token.
var ErrForbidden = errors.New("forbidden")

func HasRole(u *models.User, role string) bool {
	return u != nil && u.Role == role
}

func IsOwner(u *models.User, c *models.Course) bool {
	return u != nil && c != nil && c.InstructorID == u.ID
}

func CanSeeCourse(u *models.User, c *models.Course) bool {
	if c.Status == models.CoursePublished {
		return true
	}
	return IsOwner(u, c) || HasRole(u, models.RoleAdmin)
}
