package routes

import (
	"net/http"

	"factnet/internal/server/middleware"
	"factnet/pkg/common"

	"github.com/labstack/echo/v4"
)

func GetClustersHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	clusters, err := app.Store.ListClusters(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if clusters == nil {
		clusters = []common.TagCluster{}
	}

	return c.JSON(http.StatusOK, map[string]any{"clusters": clusters})
}
