package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/handlers"
	"github.com/learnhub/learnhub/internal/jwtmiddleware"
	"github.com/learnhub/learnhub/internal/service"
)

type Deps struct {
	Tokens            *service.TokenService
	AuthHandler       *handlers.AuthHandler
	CourseHandler     *handlers.CourseHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	ProfileHandler    *handlers.ProfileHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthHandler.Register)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.POST("/auth/logout", d.AuthHandler.Logout)
	v1.POST("/auth/refresh", d.AuthHandler.Refresh)

	authed := v1.Group("", jwtmiddleware.Require(d.Tokens))
	authed.GET("/me", d.AuthHandler.Me)
	authed.GET("/profile", d.ProfileHandler.GetMine)
	authed.PATCH("/profile", d.ProfileHandler.UpdateMine)

	courses := v1.Group("/courses")
	courses.GET("", d.CourseHandler.ListCourses, jwtmiddleware.Optional(d.Tokens))
	courses.GET("/:id", d.CourseHandler.GetCourse, jwtmiddleware.Optional(d.Tokens))
	courses.GET("/:id/lessons", d.CourseHandler.ListLessons, jwtmiddleware.Optional(d.Tokens))

	coursesAuthed := v1.Group("/courses", jwtmiddleware.Require(d.Tokens))
	coursesAuthed.POST("", d.CourseHandler.CreateCourse)
	coursesAuthed.PATCH("/:id", d.CourseHandler.UpdateCourse)
	coursesAuthed.DELETE("/:id", d.CourseHandler.DeleteCourse)
	coursesAuthed.POST("/:id/lessons", d.CourseHandler.AddLesson)
	coursesAuthed.DELETE("/:id/lessons/:lessonID", d.CourseHandler.DeleteLesson)
	coursesAuthed.GET("/:id/my_students", d.CourseHandler.MyStudents)
	coursesAuthed.POST("/:id/enroll", d.EnrollmentHandler.Enroll)

	enrollments := v1.Group("/enrollments", jwtmiddleware.Require(d.Tokens))
	enrollments.GET("", d.EnrollmentHandler.ListMine)
	enrollments.GET("/:id", d.EnrollmentHandler.Get)
	enrollments.PATCH("/:id/progress", d.EnrollmentHandler.UpdateProgress)
	enrollments.POST("/:id/drop", d.EnrollmentHandler.Drop)
}
