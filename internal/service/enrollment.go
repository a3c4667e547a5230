package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/learnhub/learnhub/internal/authz"
	"github.com/learnhub/learnhub/internal/logging"
	"github.com/learnhub/learnhub/internal/models"
	"github.com/learnhub/learnhub/internal/mykafka"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
)

type EnrollmentService struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// Enroll is idempotent: repeated calls for the same (student, course) pair
// return the existing row. The row creation and both counter increments
// happen in one transaction, and the unique index on the pair makes
// concurrent duplicates collapse into a single creation.
func (s *EnrollmentService) Enroll(ctx context.Context, student *models.User, courseID uint) (*models.Enrollment, error) {
	if !authz.HasRole(student, models.RoleStudent) {
		return nil, authz.ErrForbidden
	}

	var course models.Course
	if err := s.DB.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	// Drafts are invisible to students, so enrolling in one reads as a
	// missing course rather than a forbidden one.
	if course.Status != models.CoursePublished {
		return nil, ErrNotFound
	}

	var enrollment models.Enrollment
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("student_id = ? AND course_id = ?", student.ID, courseID).
			Attrs(models.Enrollment{Status: models.EnrollmentActive}).
			FirstOrCreate(&enrollment, models.Enrollment{StudentID: student.ID, CourseID: courseID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true

		if err := tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("enrolled_students_count", gorm.Expr("enrolled_students_count + 1")).Error; err != nil {
			return fmt.Errorf("increment course counter: %w", err)
		}

		profile, err := getOrCreateProfile(tx, student.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			UpdateColumn("enrolled_courses_count", gorm.Expr("enrolled_courses_count + 1")).Error; err != nil {
			return fmt.Errorf("increment profile counter: %w", err)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the insert race. The winner's row is committed, but postgres
		// aborts our transaction on the unique violation, so the refetch has
		// to run on a fresh connection after the rollback.
		if err := s.DB.WithContext(ctx).
			Where("student_id = ? AND course_id = ?", student.ID, courseID).
			First(&enrollment).Error; err != nil {
			return nil, fmt.Errorf("load enrollment: %w", err)
		}
		return &enrollment, nil
	}
	if err != nil {
		return nil, err
	}

	if created {
		s.publish(ctx, mykafka.TopicEnrollmentEvents, enrollment.ID, map[string]any{
			"type":       "enrollment_created",
			"student_id": student.ID,
			"course_id":  courseID,
		})
	}

	return &enrollment, nil
}

// UpdateProgress applies last-writer-wins on the percentage, but the
// active→completed transition is a single conditional update so the
// completed-courses counter moves exactly once per enrollment however the
// calls interleave.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor *models.User, enrollmentID uint, progress int) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, ErrProgressOutOfRange
	}

	var enrollment models.Enrollment
	if err := s.DB.WithContext(ctx).First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if actor == nil || enrollment.StudentID != actor.ID {
		return nil, authz.ErrForbidden
	}

	completedNow := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Enrollment{}).
			Where("id = ?", enrollmentID).
			UpdateColumn("progress_percentage", progress).Error; err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		if progress < 100 {
			return nil
		}

		result := tx.Model(&models.Enrollment{}).
			Where("id = ? AND status = ?", enrollmentID, models.EnrollmentActive).
			Updates(map[string]any{
				"status":       models.EnrollmentCompleted,
				"completed_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("complete enrollment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		completedNow = true

		profile, err := getOrCreateProfile(tx, enrollment.StudentID)
		if err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			UpdateColumn("completed_courses_count", gorm.Expr("completed_courses_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		s.publish(ctx, mykafka.TopicEnrollmentEvents, enrollment.ID, map[string]any{
			"type":       "course_completed",
			"student_id": enrollment.StudentID,
			"course_id":  enrollment.CourseID,
		})
	}

	if err := s.DB.WithContext(ctx).First(&enrollment, enrollmentID).Error; err != nil {
		return nil, fmt.Errorf("reload enrollment: %w", err)
	}
	return &enrollment, nil
}

// Drop marks the enrollment dropped. Counters stay untouched; whether a
// drop should decrement enrolled counts is an unresolved product question.
func (s *EnrollmentService) Drop(ctx context.Context, actor *models.User, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.DB.WithContext(ctx).First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if actor == nil || enrollment.StudentID != actor.ID {
		return nil, authz.ErrForbidden
	}
	if enrollment.Status != models.EnrollmentActive {
		return &enrollment, nil
	}

	if err := s.DB.WithContext(ctx).Model(&enrollment).
		UpdateColumn("status", models.EnrollmentDropped).Error; err != nil {
		return nil, fmt.Errorf("drop enrollment: %w", err)
	}
	enrollment.Status = models.EnrollmentDropped
	return &enrollment, nil
}

func (s *EnrollmentService) Get(ctx context.Context, actor *models.User, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.DB.WithContext(ctx).Preload("Course").First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if actor == nil {
		return nil, authz.ErrForbidden
	}
	if enrollment.StudentID == actor.ID {
		return &enrollment, nil
	}
	if enrollment.Course != nil && authz.IsOwner(actor, enrollment.Course) {
		return &enrollment, nil
	}
	return nil, authz.ErrForbidden
}

func (s *EnrollmentService) ListForStudent(ctx context.Context, student *models.User) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.DB.WithContext(ctx).
		Where("student_id = ?", student.ID).
		Preload("Course").
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListForCourse enumerates a course's enrollments for its owning instructor.
func (s *EnrollmentService) ListForCourse(ctx context.Context, actor *models.User, courseID uint) ([]models.Enrollment, error) {
	var course models.Course
	if err := s.DB.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	if !authz.IsOwner(actor, &course) {
		return nil, authz.ErrForbidden
	}

	var enrollments []models.Enrollment
	if err := s.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *EnrollmentService) publish(ctx context.Context, topic string, key uint, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}

// getOrCreateProfile is the lazy repair path for accounts whose profile
// creation was skipped at registration.
func getOrCreateProfile(db *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	result := db.Where("user_id = ?", userID).
		FirstOrCreate(&profile, models.Profile{UserID: userID})
	if result.Error != nil {
		return nil, fmt.Errorf("load profile: %w", result.Error)
	}
	return &profile, nil
}
