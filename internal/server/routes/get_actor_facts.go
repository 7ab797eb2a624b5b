package routes

import (
	"errors"
	"net/http"

	"factnet/internal/server/middleware"
	"factnet/pkg/query"

	"github.com/labstack/echo/v4"
)

func GetActorFactsHandler(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing entity name"})
	}

	spec, err := parseQuerySpec(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	svc := c.(*middleware.AppContext).App.Service
	res, err := svc.ActorFacts(c.Request().Context(), name, spec)
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, res)
}
