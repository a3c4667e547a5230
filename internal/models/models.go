package models

import (
	"time"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

const (
	CourseDraft     = "draft"
	CoursePublished = "published"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

const (
	LessonText  = "text"
	LessonVideo = "video"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:student" json:"role"`
	PhoneNumber  string    `json:"phone_number"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	IsActive     bool      `gorm:"default:true"             json:"is_active"`
	IsVerified   bool      `gorm:"default:false"            json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

type Profile struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null"     json:"user_id"`

	Bio                string `json:"bio"`
	Expertise          string `json:"expertise"`
	TeachingExperience int    `gorm:"default:0" json:"teaching_experience"`

	EnrolledCoursesCount  int `gorm:"default:0" json:"enrolled_courses_count"`
	CompletedCoursesCount int `gorm:"default:0" json:"completed_courses_count"`

	ProfilePicture string `json:"profile_picture"`
	LinkedinURL    string `json:"linkedin_url"`
	GithubURL      string `json:"github_url"`
	Website        string `json:"website"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string `gorm:"not null"                 json:"title"`
	Slug         string `gorm:"unique;not null"          json:"slug"`
	Description  string `json:"description"`
	InstructorID uint   `gorm:"index;not null"           json:"instructor_id"`

	Category      string  `json:"category"`
	Level         string  `gorm:"default:beginner"       json:"level"`
	DurationHours int     `gorm:"default:0"              json:"duration_hours"`
	Thumbnail     string  `json:"thumbnail"`
	PreviewVideo  string  `json:"preview_video_url"`
	Status        string  `gorm:"not null;default:draft" json:"status"`
	IsFeatured    bool    `gorm:"default:false"          json:"is_featured"`
	Price         float64 `gorm:"default:0"              json:"price"`

	EnrolledStudentsCount int `gorm:"default:0" json:"enrolled_students_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lessons     []Lesson     `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Lesson struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID uint   `gorm:"index;not null"           json:"course_id"`
	Title    string `gorm:"not null"                 json:"title"`
	Position int    `gorm:"default:0"                json:"position"`

	LessonType    string `gorm:"default:text" json:"lesson_type"`
	Content       string `json:"content"`
	VideoURL      string `json:"video_url"`
	VideoDuration int    `gorm:"default:0"    json:"video_duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Enrollment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                 json:"id"`
	StudentID uint   `gorm:"not null;uniqueIndex:idx_enrollment_pair" json:"student_id"`
	CourseID  uint   `gorm:"not null;uniqueIndex:idx_enrollment_pair" json:"course_id"`
	Status    string `gorm:"not null;default:active"                  json:"status"`

	ProgressPercentage int        `gorm:"default:0"      json:"progress_percentage"`
	EnrolledAt         time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	UpdatedAt          time.Time  `json:"last_accessed"`

	Course *Course `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"unique;not null"      json:"-"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

// All lists every model registered for migration.
func All() []any {
	return []any{
		&User{}, &Profile{}, &Course{}, &Lesson{}, &Enrollment{}, &RefreshToken{},
	}
}
