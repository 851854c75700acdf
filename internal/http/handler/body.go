package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/validation"
)

const invalidBody = "Invalid request body"

func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: invalidBody, Details: []string{err.Error()}})
		return nil, false
	}
	return raw, true
}

// decodeValidated checks raw against schema and decodes it into dst. On
// failure it has already written the 400 response.
func decodeValidated(c *gin.Context, raw []byte, schema validation.Schema, dst any) bool {
	if details := validation.Validate(schema, raw); len(details) > 0 {
		slog.InfoContext(c.Request.Context(), "request body rejected",
			"schema", string(schema),
			"violations", len(details))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: invalidBody, Details: details})
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: invalidBody, Details: []string{err.Error()}})
		return false
	}
	return true
}

func bindValidated(c *gin.Context, schema validation.Schema, dst any) bool {
	raw, ok := readBody(c)
	if !ok {
		return false
	}
	return decodeValidated(c, raw, schema, dst)
}
