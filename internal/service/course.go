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

var ErrDuplicateSlug = errors.New("course slug already taken")

type CourseService struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type CourseInput struct {
	Title         string
	Slug          string
	Description   string
	Category      string
	Level         string
	DurationHours int
	Thumbnail     string
	PreviewVideo  string
	Status        string
	IsFeatured    bool
	Price         float64
}

func (s *CourseService) Create(ctx context.Context, actor *models.User, in CourseInput) (*models.Course, error) {
	if !authz.HasRole(actor, models.RoleInstructor) {
		return nil, authz.ErrForbidden
	}
	if in.Title == "" || in.Slug == "" {
		return nil, fmt.Errorf("%w: title and slug are required", ErrValidation)
	}
	if in.Status == "" {
		in.Status = models.CourseDraft
	}
	if in.Status != models.CourseDraft && in.Status != models.CoursePublished {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}
	if in.Level == "" {
		in.Level = "beginner"
	}

	course := models.Course{
		Title:         in.Title,
		Slug:          in.Slug,
		Description:   in.Description,
		InstructorID:  actor.ID,
		Category:      in.Category,
		Level:         in.Level,
		DurationHours: in.DurationHours,
		Thumbnail:     in.Thumbnail,
		PreviewVideo:  in.PreviewVideo,
		Status:        in.Status,
		IsFeatured:    in.IsFeatured,
		Price:         in.Price,
	}
	if err := s.DB.WithContext(ctx).Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.publish(ctx, course.ID, map[string]any{
		"type":          "course_created",
		"course_id":     course.ID,
		"instructor_id": actor.ID,
		"status":        course.Status,
	})

	return &course, nil
}

// Get applies draft visibility: drafts exist only for their instructor.
func (s *CourseService) Get(ctx context.Context, actor *models.User, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := s.DB.WithContext(ctx).Preload("Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	if !authz.CanSeeCourse(actor, &course) {
		return nil, ErrNotFound
	}
	return &course, nil
}

// List returns published courses for everyone, plus the caller's own
// drafts when the caller is an instructor.
func (s *CourseService) List(ctx context.Context, actor *models.User) ([]models.Course, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	switch {
	case authz.HasRole(actor, models.RoleAdmin):
		// admins see everything
	case authz.HasRole(actor, models.RoleInstructor):
		q = q.Where("status = ? OR instructor_id = ?", models.CoursePublished, actor.ID)
	default:
		q = q.Where("status = ?", models.CoursePublished)
	}

	var courses []models.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) Update(ctx context.Context, actor *models.User, courseID uint, in CourseInput) (*models.Course, error) {
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
	if in.Status != "" && in.Status != models.CourseDraft && in.Status != models.CoursePublished {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}

	updates := map[string]any{}
	if in.Title != "" {
		updates["title"] = in.Title
	}
	if in.Slug != "" {
		updates["slug"] = in.Slug
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.Category != "" {
		updates["category"] = in.Category
	}
	if in.Level != "" {
		updates["level"] = in.Level
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}
	if in.DurationHours != 0 {
		updates["duration_hours"] = in.DurationHours
	}
	if in.Price != 0 {
		updates["price"] = in.Price
	}
	if in.Thumbnail != "" {
		updates["thumbnail"] = in.Thumbnail
	}
	if in.PreviewVideo != "" {
		updates["preview_video"] = in.PreviewVideo
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&course).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateSlug
			}
			return nil, fmt.Errorf("update course: %w", err)
		}
	}
	return &course, nil
}

func (s *CourseService) Delete(ctx context.Context, actor *models.User, courseID uint) error {
	var course models.Course
	if err := s.DB.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load course: %w", err)
	}
	if !authz.IsOwner(actor, &course) {
		return authz.ErrForbidden
	}
	if err := s.DB.WithContext(ctx).Delete(&course).Error; err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

type LessonInput struct {
	Title         string
	Position      int
	LessonType    string
	Content       string
	VideoURL      string
	VideoDuration int
}

func (s *CourseService) AddLesson(ctx context.Context, actor *models.User, courseID uint, in LessonInput) (*models.Lesson, error) {
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
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.LessonType == "" {
		in.LessonType = models.LessonText
	}
	if in.LessonType != models.LessonText && in.LessonType != models.LessonVideo {
		return nil, fmt.Errorf("%w: unknown lesson type %q", ErrValidation, in.LessonType)
	}

	lesson := models.Lesson{
		CourseID:      courseID,
		Title:         in.Title,
		Position:      in.Position,
		LessonType:    in.LessonType,
		Content:       in.Content,
		VideoURL:      in.VideoURL,
		VideoDuration: in.VideoDuration,
	}
	if err := s.DB.WithContext(ctx).Create(&lesson).Error; err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return &lesson, nil
}

func (s *CourseService) ListLessons(ctx context.Context, actor *models.User, courseID uint) ([]models.Lesson, error) {
	var course models.Course
	if err := s.DB.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	if !authz.CanSeeCourse(actor, &course) {
		return nil, ErrNotFound
	}

	var lessons []models.Lesson
	if err := s.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, actor *models.User, lessonID uint) error {
	var lesson models.Lesson
	if err := s.DB.WithContext(ctx).First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load lesson: %w", err)
	}
	var course models.Course
	if err := s.DB.WithContext(ctx).First(&course, lesson.CourseID).Error; err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if !authz.IsOwner(actor, &course) {
		return authz.ErrForbidden
	}
	if err := s.DB.WithContext(ctx).Delete(&lesson).Error; err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

func (s *CourseService) publish(ctx context.Context, key uint, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, mykafka.TopicCourseEvents, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", mykafka.TopicCourseEvents, "error", err)
	}
}
