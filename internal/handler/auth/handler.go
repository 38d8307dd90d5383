package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medbook/booking-api/internal/handler"
	"github.com/medbook/booking-api/internal/middleware"
	"github.com/medbook/booking-api/internal/model"
	authservice "github.com/medbook/booking-api/internal/service/auth"
	"github.com/medbook/booking-api/pkg/apperror"
)

// Handler exposes the credential endpoints: register, login, logout and
// the password lifecycle.
type Handler struct {
	service   *authservice.Service
	cookieTTL time.Duration
}

func NewHandler(service *authservice.Service, cookieTTL time.Duration) *Handler {
	return &Handler{service: service, cookieTTL: cookieTTL}
}

// setTokenCookie mirrors the issued token into an httpOnly cookie so
// browser clients stay logged in without storing the token themselves.
func (h *Handler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.cookieTTL.Seconds()), "/", "", false, true)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "please provide all the required fields"))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	h.setTokenCookie(c, resp.Token)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(resp))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "please provide an email and a password"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	h.setTokenCookie(c, resp.Token)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// Logout clears the token cookie. Issued tokens stay valid until they
// expire; only the cookie transport is dropped.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "logged out"}))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		handler.WriteError(c, apperror.Unauthenticated("protected path, please log in to get access", nil))
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "please provide the old and the new password"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), principal.ID, req.OldPassword, req.NewPassword); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "password changed"}))
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("email", "please provide an email"))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handler.WriteError(c, err)
		return
	}

	// Same response whether or not the account exists.
	c.JSON(http.StatusOK, handler.NewSuccessResponse(
		gin.H{"message": "if the email is registered, a reset code has been sent"}))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "please provide the email, code and new password"))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "password reset"}))
}
