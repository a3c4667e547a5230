package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/authz"
	"github.com/learnhub/learnhub/internal/models"
)

func TestCourseService_Create_InstructorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	student := createUser(t, db, "alice", "alice@example.com", models.RoleStudent)
	ctx := context.Background()

	_, err := svc.Create(ctx, student, CourseInput{Title: "Go", Slug: "go"})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestCourseService_Create_DefaultsToDraft(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	instructor := createUser(t, db, "teach", "teach@example.com", models.RoleInstructor)
	ctx := context.Background()

	course, err := svc.Create(ctx, instructor, CourseInput{Title: "Go", Slug: "go"})
	require.NoError(t, err)
	assert.Equal(t, models.CourseDraft, course.Status)
	assert.Equal(t, instructor.ID, course.InstructorID)
}

func TestCourseService_Create_DuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	instructor := createUser(t, db, "teach", "teach@example.com", models.RoleInstructor)
	ctx := context.Background()

	_, err := svc.Create(ctx, instructor, CourseInput{Title: "Go", Slug: "go"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, instructor, CourseInput{Title: "Go again", Slug: "go"})
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestCourseService_DraftVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	instructor := createUser(t, db, "teach", "teach@example.com", models.RoleInstructor)
	other := createUser(t, db, "other", "other@example.com", models.RoleInstructor)
	student := createUser(t, db, "alice", "alice@example.com", models.RoleStudent)
	draft := createCourse(t, db, instructor, "draft-course", models.CourseDraft)
	published := createCourse(t, db, instructor, "live-course", models.CoursePublished)
	ctx := context.Background()

	// owner sees both
	got, err := svc.Get(ctx, instructor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	// student and anonymous see the draft as missing
	_, err = svc.Get(ctx, student, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, nil, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// a different instructor does not see someone else's draft either
	_, err = svc.Get(ctx, other, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// published is visible to everyone
	_, err = svc.Get(ctx, nil, published.ID)
	require.NoError(t, err)

	// listings follow the same rule
	list, err := svc.List(ctx, student)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(ctx, instructor)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ctx, other)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCourseService_Update_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	instructor := createUser(t, db, "teach", "teach@example.com", models.RoleInstructor)
	other := createUser(t, db, "other", "other@example.com", models.RoleInstructor)
	course := createCourse(t, db, instructor, "go-101", models.CourseDraft)
	ctx := context.Background()

	_, err := svc.Update(ctx, other, course.ID, CourseInput{Status: models.CoursePublished})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	updated, err := svc.Update(ctx, instructor, course.ID, CourseInput{Status: models.CoursePublished})
	require.NoError(t, err)

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, updated.ID).Error)
	assert.Equal(t, models.CoursePublished, reloaded.Status)
}

func TestCourseService_Lessons(t *testing.T) {
	db := newTestDB(t)
	svc := &CourseService{DB: db}
	instructor := createUser(t, db, "teach", "teach@example.com", models.RoleInstructor)
	student := createUser(t, db, "alice", "alice@example.com", models.RoleStudent)
	course := createCourse(t, db, instructor, "go-101", models.CoursePublished)
	ctx := context.Background()

	_, err := svc.AddLesson(ctx, student, course.ID, LessonInput{Title: "Intro"})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = svc.AddLesson(ctx, instructor, course.ID, LessonInput{Title: "Intro", Position: 1})
	require.NoError(t, err)
	_, err = svc.AddLesson(ctx, instructor, course.ID, LessonInput{
		Title: "Video", Position: 2, LessonType: models.LessonVideo, VideoURL: "https://example.com/v.mp4",
	})
	require.NoError(t, err)

	lessons, err := svc.ListLessons(ctx, student, course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Intro", lessons[0].Title)
	assert.Equal(t, "Video", lessons[1].Title)
}
