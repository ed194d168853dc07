// Package handler holds the echo handlers for the booking API and the
// page routes.  Every failure answers with a JSON object carrying an
// "error" message; repository sentinels are mapped to statuses with
// errors.Is.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

func invalidBody(c echo.Context) error {
	return errorJSON(c, http.StatusBadRequest, "invalid request body")
}

// internalError logs err with the request id and hides it from the caller.
func internalError(c echo.Context, log *slog.Logger, op string, err error) error {
	if log != nil {
		log.Error(op+" failed",
			"err", err,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	}
	return errorJSON(c, http.StatusInternalServerError, "internal error")
}
