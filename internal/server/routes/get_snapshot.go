package routes

import (
	"net/http"
	"time"

	"factnet/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetSnapshotHandler reports what the server is currently serving with.
// Version 0 means no rebuild has landed yet and queries run against the
// empty snapshot.
func GetSnapshotHandler(c echo.Context) error {
	type snapshotResponse struct {
		Version        int64      `json:"version"`
		BuiltAt        *time.Time `json:"built_at,omitempty"`
		Principal      string     `json:"principal"`
		PrincipalFound bool       `json:"principal_found"`
		Sentinel       int        `json:"sentinel"`
		EntityCount    int        `json:"entity_count"`
		EdgeCount      int        `json:"edge_count"`
	}

	snap := c.(*middleware.AppContext).App.Snapshots.Load()

	res := snapshotResponse{
		Version:        snap.Version,
		Principal:      snap.Principal,
		PrincipalFound: snap.Distances.PrincipalFound,
		Sentinel:       snap.Sentinel,
		EntityCount:    snap.EntityCount,
		EdgeCount:      snap.EdgeCount,
	}
	if !snap.BuiltAt.IsZero() {
		builtAt := snap.BuiltAt
		res.BuiltAt = &builtAt
	}

	return c.JSON(http.StatusOK, res)
}
