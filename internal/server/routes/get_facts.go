package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"factnet/internal/server/middleware"
	"factnet/pkg/query"

	"github.com/labstack/echo/v4"
)

const defaultQueryLimit = 50

func GetFactsHandler(c echo.Context) error {
	spec, err := parseQuerySpec(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	svc := c.(*middleware.AppContext).App.Service
	res, err := svc.Query(c.Request().Context(), spec)
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Error()})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, res)
}

// parseQuerySpec maps the shared filter params onto a query spec. Comma
// lists are split and trimmed; maxHops accepts an integer or "any".
func parseQuerySpec(c echo.Context) (query.Spec, error) {
	spec := query.NewSpec(defaultQueryLimit)

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return spec, errors.New("limit must be an integer")
		}
		spec.Limit = limit
	}

	spec.Clusters = splitParam(c.QueryParam("clusters"))
	spec.Categories = splitParam(c.QueryParam("categories"))
	spec.Keywords = splitParam(c.QueryParam("keywords"))

	if raw := c.QueryParam("yearMin"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return spec, errors.New("yearMin must be an integer")
		}
		spec.YearMin = year
	}
	if raw := c.QueryParam("yearMax"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return spec, errors.New("yearMax must be an integer")
		}
		spec.YearMax = year
	}
	if raw := c.QueryParam("includeUndated"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return spec, errors.New("includeUndated must be a boolean")
		}
		spec.IncludeUndated = include
	}
	if raw := c.QueryParam("maxHops"); raw != "" && raw != "any" {
		hops, err := strconv.Atoi(raw)
		if err != nil || hops < 0 {
			return spec, errors.New("maxHops must be a non-negative integer or \"any\"")
		}
		spec.MaxHops = hops
	}

	return spec, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
