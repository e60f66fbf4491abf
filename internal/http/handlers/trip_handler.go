// README: Trip handler; resolve, forecast and advise in one call.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"packwise/internal/modules/outfit"
	"packwise/internal/modules/resolution"
	"packwise/internal/service"
)

const defaultTripDays = 3

type Planner interface {
	PlanTrip(ctx context.Context, req service.TripRequest) (*service.TripPlan, error)
}

type TripHandler struct {
	planner Planner
	quota   Quota
}

// NewTripHandler returns a handler. quota may be nil.
func NewTripHandler(planner Planner, quota Quota) *TripHandler {
	return &TripHandler{planner: planner, quota: quota}
}

type tripReq struct {
	Query   string `json:"query"`
	Persona string `json:"persona"`
	Days    int    `json:"days"`
}

// Plan handles POST /api/trips/plan.
func (h *TripHandler) Plan(c *gin.Context) {
	var req tripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(c, http.StatusBadRequest, resolution.ErrInvalidQuery.Error())
		return
	}
	if req.Days == 0 {
		req.Days = defaultTripDays
	}
	if req.Days < 1 || req.Days > outfit.MaxDays {
		writeServiceError(c, &outfit.InvalidInputError{Field: "days", Reason: fmt.Sprintf("must be between 1 and %d", outfit.MaxDays)})
		return
	}
	persona, err := outfit.ParsePersona(req.Persona)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if err := meter(c, h.quota); err != nil {
		writeServiceError(c, err)
		return
	}

	plan, err := h.planner.PlanTrip(c.Request.Context(), service.TripRequest{
		Query:   req.Query,
		Persona: persona,
		Days:    req.Days,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plan)
}
