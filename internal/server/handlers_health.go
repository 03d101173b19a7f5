package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/metrics"
)

func (s *Server) handleHealth(c echo.Context) error {
	sys := metrics.GetSysHealth(s.dataPath)
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"system": map[string]any{
			"alloc_mb":       sys.AllocMB,
			"sys_mb":         sys.SysMB,
			"num_gc":         sys.NumGC,
			"goroutines":     sys.Goroutines,
			"data_disk_size": sys.DataDiskSize,
		},
	})
}
