// README: Outfit handler; advises a list of day forecasts.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"packwise/internal/modules/outfit"
)

type Advisor interface {
	AdviseDays(ctx context.Context, days []outfit.DayForecast, persona outfit.Persona, units outfit.Units) ([]outfit.DayAdvice, error)
}

type OutfitHandler struct {
	advisor Advisor
}

func NewOutfitHandler(advisor Advisor) *OutfitHandler {
	return &OutfitHandler{advisor: advisor}
}

// outfitReq carries either one "day" or a "days" batch.
type outfitReq struct {
	Day     *outfit.DayForecast  `json:"day"`
	Days    []outfit.DayForecast `json:"days"`
	Persona string               `json:"persona"`
	Units   string               `json:"units"`
}

// Advise handles POST /api/outfits.
func (h *OutfitHandler) Advise(c *gin.Context) {
	var req outfitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Day != nil {
		if len(req.Days) > 0 {
			writeError(c, http.StatusBadRequest, "send either day or days, not both")
			return
		}
		req.Days = []outfit.DayForecast{*req.Day}
	}
	persona, err := outfit.ParsePersona(req.Persona)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	units, err := outfit.ParseUnits(req.Units)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	days, err := h.advisor.AdviseDays(c.Request.Context(), req.Days, persona, units)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"days": days})
}
