package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"factnet/internal/queue"
	"factnet/internal/server/middleware"
	"factnet/pkg/common"
	"factnet/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// PostClustersHandler replaces the cluster lookup table with the output of
// the external clustering job. The table is swapped whole: clusters are a
// derived artifact, so partial updates would mix two generations.
func PostClustersHandler(c echo.Context) error {
	type clusterBody struct {
		ClusterID string   `json:"cluster_id" validate:"required"`
		Tags      []string `json:"tags" validate:"required,min=1"`
	}

	type postClustersBody struct {
		Clusters []clusterBody `json:"clusters" validate:"required,min=1,dive"`
	}

	type postClustersResponse struct {
		Message  string `json:"message"`
		Clusters int    `json:"clusters,omitempty"`
	}

	data := new(postClustersBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, postClustersResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, postClustersResponse{
			Message: "Invalid request body",
		})
	}

	rows := make([]common.TagCluster, 0, len(data.Clusters))
	for _, cl := range data.Clusters {
		rows = append(rows, common.TagCluster{
			ClusterID: cl.ClusterID,
			Tags:      cl.Tags,
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	if err := app.Store.ReplaceClusters(ctx, rows); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg, _ := json.Marshal(queue.RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "api:clusters"})
	if err := queue.PublishFIFO(app.Queue, queue.RebuildQueue, msg); err != nil {
		logger.Error("[Server] Failed to enqueue rebuild", "err", err)
	}

	return c.JSON(http.StatusCreated, postClustersResponse{
		Message:  "Clusters replaced",
		Clusters: len(rows),
	})
}
