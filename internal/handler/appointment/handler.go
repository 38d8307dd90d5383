package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medbook/booking-api/internal/handler"
	"github.com/medbook/booking-api/internal/model"
	appointmentservice "github.com/medbook/booking-api/internal/service/appointment"
	"github.com/medbook/booking-api/pkg/apperror"
)

type Handler struct {
	service *appointmentservice.Service
}

func NewHandler(service *appointmentservice.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /appointments with optional filter, sort and page
// query parameters.
func (h *Handler) List(c *gin.Context) {
	var filter model.AppointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.WriteError(c, apperror.Validation("", "invalid query parameters"))
		return
	}

	appointments, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"results":      len(appointments),
		"appointments": appointments,
	}))
}

// Create handles POST /appointments.
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "please provide a doctor, a patient and a date"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

// Update handles PATCH /appointments/:id with a sparse body.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.WriteError(c, apperror.Validation("id", "please provide a valid appointment id"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.WriteError(c, apperror.Validation("", "invalid request body"))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
