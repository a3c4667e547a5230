package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/jwtmiddleware"
	"github.com/learnhub/learnhub/internal/service"
)

type CourseHandler struct {
	Courses     *service.CourseService
	Enrollments *service.EnrollmentService
}

type courseRequest struct {
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Level         string  `json:"level"`
	DurationHours int     `json:"duration_hours"`
	Thumbnail     string  `json:"thumbnail"`
	PreviewVideo  string  `json:"preview_video_url"`
	Status        string  `json:"status"`
	IsFeatured    bool    `json:"is_featured"`
	Price         float64 `json:"price"`
}

func (r courseRequest) toInput() service.CourseInput {
	return service.CourseInput{
		Title:         r.Title,
		Slug:          r.Slug,
		Description:   r.Description,
		Category:      r.Category,
		Level:         r.Level,
		DurationHours: r.DurationHours,
		Thumbnail:     r.Thumbnail,
		PreviewVideo:  r.PreviewVideo,
		Status:        r.Status,
		IsFeatured:    r.IsFeatured,
		Price:         r.Price,
	}
}

func (h *CourseHandler) CreateCourse(c echo.Context) error {
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	course, err := h.Courses.Create(c.Request().Context(), jwtmiddleware.UserFromContext(c), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetCourse(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}

	course, err := h.Courses.Get(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) ListCourses(c echo.Context) error {
	courses, err := h.Courses.List(c.Request().Context(), jwtmiddleware.UserFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	course, err := h.Courses.Update(c.Request().Context(), jwtmiddleware.UserFromContext(c), id, req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}

	if err := h.Courses.Delete(c.Request().Context(), jwtmiddleware.UserFromContext(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyStudents lists a course's enrollments for its owning instructor.
func (h *CourseHandler) MyStudents(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}

	enrollments, err := h.Enrollments.ListForCourse(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, enrollments)
}

func (h *CourseHandler) AddLesson(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}
	var req struct {
		Title         string `json:"title"`
		Position      int    `json:"position"`
		LessonType    string `json:"lesson_type"`
		Content       string `json:"content"`
		VideoURL      string `json:"video_url"`
		VideoDuration int    `json:"video_duration"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	lesson, err := h.Courses.AddLesson(c.Request().Context(), jwtmiddleware.UserFromContext(c), id, service.LessonInput{
		Title:         req.Title,
		Position:      req.Position,
		LessonType:    req.LessonType,
		Content:       req.Content,
		VideoURL:      req.VideoURL,
		VideoDuration: req.VideoDuration,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, lesson)
}

func (h *CourseHandler) ListLessons(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}

	lessons, err := h.Courses.ListLessons(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, lessons)
}

func (h *CourseHandler) DeleteLesson(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("lessonID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid lesson id"})
	}

	if err := h.Courses.DeleteLesson(c.Request().Context(), jwtmiddleware.UserFromContext(c), uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
