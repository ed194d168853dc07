package handler

import (
	"io/fs"

	"github.com/labstack/echo/v4"
)

// Pages serves the placeholder HTML views from an embedded file system.
type Pages struct {
	FS fs.FS
}

// File returns a handler that always serves name.
func (p Pages) File(name string) echo.HandlerFunc {
	return echo.StaticFileHandler(name, p.FS)
}
