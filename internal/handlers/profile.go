package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/jwtmiddleware"
	"github.com/learnhub/learnhub/internal/service"
)

type ProfileHandler struct {
	Profiles *service.ProfileService
}

func (h *ProfileHandler) GetMine(c echo.Context) error {
	user := jwtmiddleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication required"})
	}

	profile, err := h.Profiles.Get(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateMine(c echo.Context) error {
	user := jwtmiddleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication required"})
	}

	var req struct {
		Bio                *string `json:"bio"`
		Expertise          *string `json:"expertise"`
		TeachingExperience *int    `json:"teaching_experience"`
		ProfilePicture     *string `json:"profile_picture"`
		LinkedinURL        *string `json:"linkedin_url"`
		GithubURL          *string `json:"github_url"`
		Website            *string `json:"website"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	profile, err := h.Profiles.Update(c.Request().Context(), user.ID, service.ProfileInput{
		Bio:                req.Bio,
		Expertise:          req.Expertise,
		TeachingExperience: req.TeachingExperience,
		ProfilePicture:     req.ProfilePicture,
		LinkedinURL:        req.LinkedinURL,
		GithubURL:          req.GithubURL,
		Website:            req.Website,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
