package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/jwtmiddleware"
	"github.com/learnhub/learnhub/internal/service"
)

type EnrollmentHandler struct {
	Enrollments *service.EnrollmentService
}

// Enroll creates (or returns) the caller's enrollment in a course.
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid course id"})
	}

	enrollment, err := h.Enrollments.Enroll(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) ListMine(c echo.Context) error {
	user := jwtmiddleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication required"})
	}

	enrollments, err := h.Enrollments.ListForStudent(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid enrollment id"})
	}

	enrollment, err := h.Enrollments.Get(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) UpdateProgress(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid enrollment id"})
	}
	var req struct {
		ProgressPercentage int `json:"progress_percentage"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	enrollment, err := h.Enrollments.UpdateProgress(c.Request().Context(), jwtmiddleware.UserFromContext(c), id, req.ProgressPercentage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) Drop(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid enrollment id"})
	}

	enrollment, err := h.Enrollments.Drop(c.Request().Context(), jwtmiddleware.UserFromContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, enrollment)
}
