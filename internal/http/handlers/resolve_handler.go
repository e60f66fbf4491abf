// README: Resolve handler (free-text destination to coordinates) and resolution history.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"packwise/internal/http/middleware"
	"packwise/internal/modules/resolution"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	// unmeteredPlan skips quota accounting.
	unmeteredPlan = "pro"
)

type Resolver interface {
	Resolve(ctx context.Context, query string) (*resolution.Result, error)
}

// Quota meters extractor-backed calls per caller.
type Quota interface {
	Consume(ctx context.Context, uid string) error
	Remaining(ctx context.Context, uid string) (int, error)
}

type History interface {
	List(ctx context.Context, limit int) ([]resolution.Record, error)
	Get(ctx context.Context, id string) (*resolution.Record, error)
}

type ResolveHandler struct {
	resolver Resolver
	quota    Quota
	history  History
}

// NewResolveHandler returns a handler. quota and history may be nil.
func NewResolveHandler(resolver Resolver, quota Quota, history History) *ResolveHandler {
	return &ResolveHandler{resolver: resolver, quota: quota, history: history}
}

type resolveReq struct {
	Query string `json:"query"`
}

// Resolve handles POST /api/resolve.
func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(c, http.StatusBadRequest, resolution.ErrInvalidQuery.Error())
		return
	}

	if err := meter(c, h.quota); err != nil {
		writeServiceError(c, err)
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), req.Query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// meter charges authenticated callers; anonymous callers are not metered.
func meter(c *gin.Context, q Quota) error {
	caller := middleware.CallerFrom(c)
	if q == nil || caller == nil || caller.Plan == unmeteredPlan {
		return nil
	}
	return q.Consume(c.Request.Context(), caller.UID)
}

// Remaining handles GET /api/quota.
func (h *ResolveHandler) Remaining(c *gin.Context) {
	if h.quota == nil {
		writeError(c, http.StatusNotFound, "quota disabled")
		return
	}
	uid := middleware.CallerUID(c)
	n, err := h.quota.Remaining(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"uid": uid, "remaining": n})
}

// List handles GET /api/resolutions?limit=N.
func (h *ResolveHandler) List(c *gin.Context) {
	if h.history == nil {
		writeError(c, http.StatusNotFound, "history disabled")
		return
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	records, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if records == nil {
		records = []resolution.Record{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"resolutions": records})
}

// Get handles GET /api/resolutions/:id.
func (h *ResolveHandler) Get(c *gin.Context) {
	if h.history == nil {
		writeError(c, http.StatusNotFound, "history disabled")
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	rec, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}
