// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/handler"
	"github.com/iliyamo/bus-ticket-booking/internal/middleware"
	"github.com/iliyamo/bus-ticket-booking/internal/queue"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
)

// Deps is everything New needs.  Redis, Events and Pages are optional.
type Deps struct {
	Config    config.Config
	Store     repository.Store
	Passwords utils.PasswordHasher
	Events    queue.Publisher
	Redis     *redis.Client
	Pages     fs.FS
	Log       *slog.Logger
}

// New builds the application's echo instance.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())

	e.GET("/healthz", handler.Health)
	RegisterAPI(e, d)
	if d.Pages != nil {
		RegisterPages(e, handler.Pages{FS: d.Pages}, authenticator(d.Config.Auth))
	}
	return e
}

// authenticator picks the gate for the configured auth mode.
func authenticator(c config.AuthConfig) middleware.Authenticator {
	if c.Mode == config.AuthModeJWT {
		return middleware.JWTAuthenticator{Secret: c.JWTSecret}
	}
	return middleware.HeaderAuthenticator{}
}

// RegisterAPI mounts the JSON endpoints under /api.  login, register and
// logout are open; the rest sit behind the auth gate.
func RegisterAPI(e *echo.Echo, d Deps) {
	auth := handler.NewAuthHandler(d.Store, d.Passwords, d.Log)
	if d.Config.Auth.Mode == config.AuthModeJWT {
		auth.TokenSecret = d.Config.Auth.JWTSecret
		auth.TokenTTL = time.Duration(d.Config.Auth.AccessTTLMin) * time.Minute
	}
	catalog := handler.NewCatalogHandler(d.Store, d.Store, d.Log)
	bookings := handler.NewBookingHandler(d.Store, d.Events, d.Log)

	limit := middleware.NewTokenBucket(d.Config.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Config.Cache, d.Redis)
	gate := middleware.RequireAuth(authenticator(d.Config.Auth))

	api := e.Group("/api")
	api.POST("/login", auth.Login, limit)
	api.POST("/register", auth.Register, limit)
	api.POST("/logout", auth.Logout)

	api.GET("/cities", catalog.ListCities, gate, cache)
	api.GET("/routes", catalog.ListRoutes, gate)
	api.POST("/book", bookings.Book, gate, limit)
	api.GET("/booking/:id", bookings.GetBooking, gate)
}

// RegisterPages serves the HTML views and the raw files behind them.
// The confirmation page sits behind the same gate as the API.
func RegisterPages(e *echo.Echo, p handler.Pages, a middleware.Authenticator) {
	e.GET("/", p.File("index.html"))
	e.GET("/login", p.File("login.html"))
	e.GET("/register", p.File("register.html"))
	e.GET("/dashboard", p.File("index.html"))
	e.GET("/booking-confirmation/:id", p.File("confirmation.html"), middleware.RequireAuth(a))
	e.GET("/booking-details", p.File("booking-details.html"))
	e.StaticFS("/", p.FS)
}
