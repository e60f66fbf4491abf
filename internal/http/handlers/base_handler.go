// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"packwise/internal/modules/outfit"
	"packwise/internal/modules/quota"
	"packwise/internal/modules/resolution"
	"packwise/internal/retry"
	"packwise/internal/weather"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type notFoundResponse struct {
	Error       string   `json:"error"`
	Query       string   `json:"query"`
	Tried       []string `json:"tried"`
	Suggestions []string `json:"suggestions"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// recorded on the gin context and answered with a generic 500.
func writeServiceError(c *gin.Context, err error) {
	var (
		nf *resolution.NotFoundError
		ie *outfit.InvalidInputError
	)
	switch {
	case errors.As(err, &nf):
		tried := nf.Tried
		if tried == nil {
			tried = []string{}
		}
		writeJSON(c, http.StatusNotFound, notFoundResponse{
			Error:       nf.Error(),
			Query:       nf.Query,
			Tried:       tried,
			Suggestions: nf.Suggestions,
		})
	case errors.As(err, &ie):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: ie.Error(), Field: ie.Field})
	case errors.Is(err, resolution.ErrInvalidQuery), errors.Is(err, outfit.ErrNoDays):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, resolution.ErrRecordNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, quota.ErrExhausted):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case retry.IsTransient(err):
		_ = c.Error(err)
		writeError(c, http.StatusServiceUnavailable, "upstream temporarily unavailable")
	case errors.Is(err, weather.ErrNoForecast):
		writeError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		_ = c.Error(err)
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
