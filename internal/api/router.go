package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sameboat/jobsheet/docs"
	"github.com/sameboat/jobsheet/internal/api/handler"
	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/core/service"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Sessions    ports.SessionProvider
	Flashes     ports.FlashStore
	AuthService ports.AuthService
	JobService  ports.JobService
	Forms       *service.FormValidator
	Renderer    *view.Renderer
	Session     middleware.SessionOptions
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.Validator = handler.NewValidator(d.Forms)
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("jobsheet"))

	// --- Probes, metrics and docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(map[string]handler.Pinger{
		"session_store": d.Sessions,
	})

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	pageLog := d.Logger.With().Str("component", "pages").Logger()
	pageHandler := handler.NewPageHandler(d.Flashes, pageLog)
	authHandler := handler.NewAuthHandler(d.AuthService, d.Flashes, pageLog)
	jobHandler := handler.NewJobHandler(d.JobService, d.Flashes, pageLog)
	apiHandler := handler.NewAPIHandler(d.JobService)

	site := e.Group("", middleware.Session(d.Sessions, d.Session), middleware.CSRF(d.Session.Secure))

	// --- Public pages ---
	site.GET("/", pageHandler.Index)
	site.GET("/contact", pageHandler.Contact)
	site.POST("/theme", pageHandler.ToggleTheme)

	// --- Account pages ---
	site.GET("/login", authHandler.LoginForm)
	site.POST("/login", authHandler.Login)
	site.GET("/register", authHandler.RegisterForm)
	site.POST("/register", authHandler.Register)
	site.GET("/forgot-password", authHandler.ForgotPasswordForm)
	site.POST("/forgot-password", authHandler.ForgotPassword)
	site.GET("/reset-password", authHandler.ResetPasswordForm)
	site.POST("/reset-password", authHandler.ResetPassword)
	site.POST("/logout", authHandler.Logout)

	// --- Job pages (login required) ---
	jobs := site.Group("/jobs", middleware.RequireLogin("/login"))
	jobs.GET("", jobHandler.Sheet)
	jobs.POST("", jobHandler.Create)
	jobs.GET("/new", jobHandler.NewForm)
	jobs.POST("/:id", jobHandler.Update)
	jobs.GET("/:id/edit", jobHandler.EditForm)
	jobs.POST("/:id/stage", jobHandler.Stage)
	jobs.POST("/:id/delete", jobHandler.Delete)

	// --- JSON API ---
	site.GET("/api/session", apiHandler.Session)
	apiJobs := site.Group("/api/jobs", middleware.RequireLogin("/login"))
	apiJobs.GET("", apiHandler.Jobs)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
