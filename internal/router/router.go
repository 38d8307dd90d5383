package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medbook/booking-api/internal/config"
	"github.com/medbook/booking-api/internal/handler"
	appointmenthandler "github.com/medbook/booking-api/internal/handler/appointment"
	authhandler "github.com/medbook/booking-api/internal/handler/auth"
	userhandler "github.com/medbook/booking-api/internal/handler/user"
	"github.com/medbook/booking-api/internal/middleware"
	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *authhandler.Handler
	User        *userhandler.Handler
	Appointment *appointmenthandler.Handler
	Health      *handler.HealthHandler
	Gate        *middleware.AuthMiddleware
}

// New assembles the gin engine with the middleware chain and all routes.
func New(cfg *config.Config, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := metrics.NewHTTPMetrics("booking")

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}

	requestTimeout := cfg.Server.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(corsConfig),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  middleware.RateOf(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}).RateLimit(),
		middleware.Timeout(requestTimeout),
		middleware.Metrics(httpMetrics),
	)

	engine.GET("/health", h.Health.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
			auth.POST("/change-password", h.Gate.Authenticate(), h.Auth.ChangePassword)
		}

		users := v1.Group("/users", h.Gate.Authenticate())
		{
			users.GET("/me", h.User.Me)
		}

		patients := v1.Group("/patients", h.Gate.Authenticate())
		{
			patients.PATCH("/me",
				h.Gate.RequireRoles(model.RolePatient),
				h.User.UpdateSelf(model.RolePatient))
			patients.PATCH("/:id",
				h.Gate.RequireRoles(model.RoleAdmin),
				h.User.UpdateByID(model.RolePatient))
		}

		doctors := v1.Group("/doctors", h.Gate.Authenticate())
		{
			doctors.PATCH("/me",
				h.Gate.RequireRoles(model.RoleDoctor),
				h.User.UpdateSelf(model.RoleDoctor))
			doctors.PATCH("/:id",
				h.Gate.RequireRoles(model.RoleAdmin),
				h.User.UpdateByID(model.RoleDoctor))
		}

		appointments := v1.Group("/appointments", h.Gate.Authenticate())
		{
			appointments.GET("", h.Appointment.List)
			appointments.POST("",
				h.Gate.RequireRoles(model.RolePatient, model.RoleAdmin),
				h.Appointment.Create)
			appointments.PATCH("/:id",
				h.Gate.RequireRoles(model.RoleDoctor, model.RoleAdmin),
				h.Appointment.Update)
		}
	}

	return engine
}
