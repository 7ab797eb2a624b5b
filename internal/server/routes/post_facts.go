package routes

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"factnet/internal/queue"
	"factnet/internal/server/middleware"
	"factnet/pkg/common"
	"factnet/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// PostFactsHandler accepts a batch of extraction records directly, bypassing
// the S3 drop path. Duplicates are absorbed by the store; any new row
// triggers a rebuild.
func PostFactsHandler(c echo.Context) error {
	type postFactsBody struct {
		Facts []common.FactRecord `json:"facts" validate:"required,min=1,dive"`
	}

	type postFactsResponse struct {
		Message    string `json:"message"`
		Inserted   int    `json:"inserted,omitempty"`
		Duplicates int    `json:"duplicates,omitempty"`
	}

	data := new(postFactsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, postFactsResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, postFactsResponse{
			Message: "Invalid request body",
		})
	}

	facts := make([]common.Fact, 0, len(data.Facts))
	for _, record := range data.Facts {
		publicID, err := gonanoid.New()
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		facts = append(facts, common.Fact{
			PublicID:      publicID,
			DocID:         record.DocID,
			Timestamp:     record.Timestamp,
			Actor:         strings.TrimSpace(record.Actor),
			Action:        strings.TrimSpace(record.Action),
			Target:        strings.TrimSpace(record.Target),
			Location:      strings.TrimSpace(record.Location),
			Category:      record.Category,
			Tags:          record.Tags,
			SequenceOrder: record.SequenceOrder,
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	inserted, err := app.Store.InsertFacts(ctx, facts)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if inserted > 0 {
		msg, _ := json.Marshal(queue.RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "api:facts"})
		if err := queue.PublishFIFO(app.Queue, queue.RebuildQueue, msg); err != nil {
			logger.Error("[Server] Failed to enqueue rebuild", "err", err)
		}
	}

	return c.JSON(http.StatusCreated, postFactsResponse{
		Message:    "Facts stored",
		Inserted:   inserted,
		Duplicates: len(facts) - inserted,
	})
}
