package routes

import (
	"net/http"

	"factnet/pkg/common"

	"github.com/invopop/jsonschema"
	"github.com/labstack/echo/v4"
)

// GetFactSchemaHandler serves the JSON schema of the ingest record so the
// external extraction service can validate its output before dropping it.
func GetFactSchemaHandler(c echo.Context) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&common.FactRecord{})

	return c.JSON(http.StatusOK, schema)
}
