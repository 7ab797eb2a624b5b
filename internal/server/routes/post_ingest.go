package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"factnet/internal/queue"
	"factnet/internal/server/middleware"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// PostIngestHandler enqueues an S3 extraction drop for the worker. The drop
// itself is fetched and parsed asynchronously.
func PostIngestHandler(c echo.Context) error {
	type postIngestBody struct {
		Key string `json:"key" validate:"required"`
	}

	type postIngestResponse struct {
		Message string `json:"message"`
	}

	data := new(postIngestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, postIngestResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, postIngestResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	app := c.(*middleware.AppContext).App

	msg, err := json.Marshal(queue.IngestMsg{
		Key:       data.Key,
		RequestBy: fmt.Sprintf("user:%d", user.UserID),
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msg); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, postIngestResponse{
		Message: "Drop queued for ingest",
	})
}
