package api

import (
	"net"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sharenotes/notes-api/docs"
	"github.com/sharenotes/notes-api/internal/api/handler"
	"github.com/sharenotes/notes-api/internal/api/metrics"
	"github.com/sharenotes/notes-api/internal/api/middleware"
	"github.com/sharenotes/notes-api/internal/core/ports"
	"github.com/sharenotes/notes-api/internal/pkg/session"
)

// RouterConfig carries everything NewRouter wires into the routes.
type RouterConfig struct {
	Auth    ports.AuthService
	Notes   ports.NoteService
	Invites ports.InviteService

	Codec       *session.Codec
	Revocations ports.RevocationStore
	// Dependencies are pinged by the readiness probe, keyed by name.
	Dependencies map[string]handler.Pinger

	// SecureCookies marks the session cookie Secure (production).
	SecureCookies bool
	// Rate limit for login, register and reveal, per client IP.
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For. Empty means the peer
	// address is the client IP.
	TrustedProxies []*net.IPNet
	// Swagger mounts /swagger/* when true.
	Swagger bool

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)
	e.IPExtractor = ipExtractor(cfg.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(middleware.Session(cfg.Codec, cfg.Revocations, cfg.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.Auth, cfg.Codec, cfg.Revocations, cfg.SecureCookies, cfg.Log)
	noteHandler := handler.NewNoteHandler(cfg.Notes)
	inviteHandler := handler.NewInviteHandler(cfg.Invites)
	limited := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()
	requireSession := middleware.RequireSession()

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, limited)
	auth.POST("/login", authHandler.Login, limited)
	auth.POST("/logout", authHandler.Logout, requireSession)
	auth.GET("/me", authHandler.Me, requireSession)

	// --- Owner note API ---
	notes := e.Group("/v1/notes", requireSession)
	notes.GET("", noteHandler.List)
	notes.POST("", noteHandler.Create)
	notes.GET("/:slug", noteHandler.Get)
	notes.PUT("/:slug", noteHandler.Update)
	notes.DELETE("/:slug", noteHandler.Delete)

	// --- Public note pages (session optional) ---
	e.GET("/n/:slug", noteHandler.View)
	e.POST("/n/:slug/reveal", noteHandler.Reveal, limited)

	// --- Admin invites ---
	invites := e.Group("/v1/invites", requireSession, middleware.RequireAdmin())
	invites.POST("", inviteHandler.Create)
	invites.GET("", inviteHandler.List)
	invites.DELETE("/:id", inviteHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Dependencies)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Observability ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if cfg.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

// ipExtractor decides what c.RealIP returns, and with it the rate limit key.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range trusted {
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger writes one zerolog event per request and records its latency.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.RequestDuration.
				WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).
				Observe(v.Latency.Seconds())

			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Time("at", time.Now().UTC()).
				Msg("request")
			return nil
		},
	})
}
