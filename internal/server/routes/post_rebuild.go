package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"factnet/internal/queue"
	"factnet/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// PostRebuildHandler enqueues a snapshot rebuild. The worker coalesces
// requests, so hammering this endpoint costs one rebuild, not many.
func PostRebuildHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	msg, err := json.Marshal(queue.RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "api:rebuild"})
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if err := queue.PublishFIFO(app.Queue, queue.RebuildQueue, msg); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{"message": "Rebuild queued"})
}
