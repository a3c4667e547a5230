package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/learnhub/internal/jwtmiddleware"
	"github.com/learnhub/learnhub/internal/service"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Tokens   *service.TokenService
	Profiles *service.ProfileService
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func pairResponse(p *service.TokenPair) tokenPairResponse {
	return tokenPairResponse{Access: p.AccessToken, Refresh: p.RefreshToken}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		Role        string `json:"role"`
		PhoneNumber string `json:"phone_number"`
		Country     string `json:"country"`
		City        string `json:"city"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	user, pair, err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		City:        req.City,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   user,
		"tokens": pairResponse(pair),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	user, pair, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	if err := h.Auth.Logout(c.Request().Context(), req.Refresh); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusResetContent)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "malformed request body"})
	}

	pair, err := h.Tokens.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pairResponse(pair))
}

func (h *AuthHandler) Me(c echo.Context) error {
	user := jwtmiddleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication required"})
	}

	profile, err := h.Profiles.Get(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	user.Profile = profile

	return c.JSON(http.StatusOK, user)
}
