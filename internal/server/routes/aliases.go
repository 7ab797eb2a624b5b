package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"factnet/internal/queue"
	"factnet/internal/server/middleware"
	"factnet/pkg/common"
	"factnet/pkg/logger"
	"factnet/pkg/registry"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func GetAliasesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	aliases, err := app.Store.ListAliases(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if aliases == nil {
		aliases = []common.AliasRecord{}
	}

	return c.JSON(http.StatusOK, map[string]any{"aliases": aliases})
}

// GetAliasHandler resolves one name against the current snapshot's registry
// and returns its full equivalence set.
func GetAliasHandler(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing entity name"})
	}

	snap := c.(*middleware.AppContext).App.Snapshots.Load()

	return c.JSON(http.StatusOK, map[string]any{
		"name":      name,
		"canonical": snap.Registry.Resolve(name),
		"aliases":   snap.Registry.AliasSet(name),
	})
}

// PostAliasesHandler upserts alias rows. The merged table is checked for
// chains before anything is written: a mapping that would make an existing
// canonical name an alias of something else is rejected whole.
func PostAliasesHandler(c echo.Context) error {
	type aliasBody struct {
		OriginalName  string `json:"original_name" validate:"required"`
		CanonicalName string `json:"canonical_name" validate:"required"`
		Reasoning     string `json:"reasoning"`
	}

	type postAliasesBody struct {
		Aliases []aliasBody `json:"aliases" validate:"required,min=1,dive"`
	}

	type postAliasesResponse struct {
		Message string `json:"message"`
	}

	data := new(postAliasesBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, postAliasesResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, postAliasesResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	now := time.Now().UTC()
	rows := make([]common.AliasRecord, 0, len(data.Aliases))
	for _, a := range data.Aliases {
		rows = append(rows, common.AliasRecord{
			OriginalName:  a.OriginalName,
			CanonicalName: a.CanonicalName,
			Reasoning:     a.Reasoning,
			CreatedBy:     user.Role,
			CreatedAt:     now,
		})
	}

	existing, err := app.Store.ListAliases(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	merged := make([]common.AliasRecord, 0, len(existing)+len(rows))
	byOriginal := make(map[string]common.AliasRecord, len(existing)+len(rows))
	for _, row := range existing {
		byOriginal[row.OriginalName] = row
	}
	for _, row := range rows {
		byOriginal[row.OriginalName] = row
	}
	for _, row := range byOriginal {
		merged = append(merged, row)
	}

	if _, err := registry.New(merged); err != nil {
		var chainErr *registry.ChainError
		if errors.As(err, &chainErr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":  "alias mapping would create a chain",
				"chains": chainErr.Chains,
			})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := app.Store.UpsertAliases(ctx, rows); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg, _ := json.Marshal(queue.RebuildMsg{RequestedAt: time.Now().UTC(), Reason: "api:aliases"})
	if err := queue.PublishFIFO(app.Queue, queue.RebuildQueue, msg); err != nil {
		logger.Error("[Server] Failed to enqueue rebuild", "err", err)
	}

	return c.JSON(http.StatusCreated, postAliasesResponse{
		Message: "Aliases stored",
	})
}
