package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/handler"
	"github.com/medbook/booking-api/internal/middleware"
	"github.com/medbook/booking-api/internal/model"
	userservice "github.com/medbook/booking-api/internal/service/user"
	"github.com/medbook/booking-api/pkg/apperror"
)

// Handler exposes sparse profile updates. Patients and doctors patch
// their own record; admins patch any patient or doctor by id.
type Handler struct {
	service *userservice.Service
}

func NewHandler(service *userservice.Service) *Handler {
	return &Handler{service: service}
}

// UpdateSelf handles PATCH /patients/me and /doctors/me. The role is
// fixed by the route and must match the acting principal.
func (h *Handler) UpdateSelf(targetRole model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFromContext(c)
		if !ok {
			handler.WriteError(c, apperror.Unauthenticated("protected path, please log in to get access", nil))
			return
		}

		var req model.UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.WriteError(c, apperror.Validation("", "invalid request body"))
			return
		}

		updated, err := h.service.UpdateSelf(c.Request.Context(), principal, targetRole, &req)
		if err != nil {
			handler.WriteError(c, err)
			return
		}

		c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
	}
}

// UpdateByID handles PATCH /patients/:id and /doctors/:id, admin only.
func (h *Handler) UpdateByID(targetRole model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFromContext(c)
		if !ok {
			handler.WriteError(c, apperror.Unauthenticated("protected path, please log in to get access", nil))
			return
		}

		targetID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			handler.WriteError(c, apperror.Validation("id", "please provide a valid user id"))
			return
		}

		var req model.UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.WriteError(c, apperror.Validation("", "invalid request body"))
			return
		}

		updated, err := h.service.UpdateByID(c.Request.Context(), principal, targetRole, targetID, &req)
		if err != nil {
			handler.WriteError(c, err)
			return
		}

		c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
	}
}

// Me returns the acting principal's identity.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		handler.WriteError(c, apperror.Unauthenticated("protected path, please log in to get access", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(principal))
}
