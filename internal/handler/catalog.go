package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
)

// CatalogHandler exposes the read-only route and city lists.
type CatalogHandler struct {
	Routes repository.RouteStore
	Cities repository.CityStore
	Log    *slog.Logger
}

func NewCatalogHandler(routes repository.RouteStore, cities repository.CityStore, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{Routes: routes, Cities: cities, Log: log}
}

// ListCities handles GET /api/cities.
func (h *CatalogHandler) ListCities(c echo.Context) error {
	cities, err := h.Cities.ListCities(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "list cities", err)
	}
	return c.JSON(http.StatusOK, cities)
}

// ListRoutes handles GET /api/routes?from=&to=&date=.  from and to are
// case-insensitive substring filters; date is accepted and ignored.
func (h *CatalogHandler) ListRoutes(c echo.Context) error {
	f := model.RouteFilter{
		From: c.QueryParam("from"),
		To:   c.QueryParam("to"),
		Date: c.QueryParam("date"),
	}
	routes, err := h.Routes.ListRoutes(c.Request().Context(), f)
	if err != nil {
		return internalError(c, h.Log, "list routes", err)
	}
	return c.JSON(http.StatusOK, routes)
}
