package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"packwise/internal/http/handlers"
	"packwise/internal/http/middleware"
	"packwise/internal/infra"
	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
	"packwise/internal/modules/quota"
	"packwise/internal/modules/resolution"
	"packwise/internal/retry"
	"packwise/internal/service"
)

type fakeResolver struct {
	res   *resolution.Result
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, query string) (*resolution.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.res
	out.Query = query
	return &out, nil
}

type fakeQuota struct {
	consumed []string
	err      error
}

func (f *fakeQuota) Consume(_ context.Context, uid string) error {
	f.consumed = append(f.consumed, uid)
	return f.err
}

func (f *fakeQuota) Remaining(_ context.Context, _ string) (int, error) { return 42, nil }

type fakeHistory struct {
	records []resolution.Record
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]resolution.Record, error) {
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeHistory) Get(_ context.Context, id string) (*resolution.Record, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, resolution.ErrRecordNotFound
}

type fakePlanner struct {
	got service.TripRequest
	err error
}

func (f *fakePlanner) PlanTrip(_ context.Context, req service.TripRequest) (*service.TripPlan, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &service.TripPlan{Query: req.Query, Place: geocode.ResolvedPlace{Name: "Paris"}}, nil
}

type stubVerifier struct{ caller *infra.Caller }

func (s stubVerifier) VerifyIDToken(context.Context, string) (*infra.Caller, error) {
	return s.caller, nil
}

type deps struct {
	resolver *fakeResolver
	quota    *fakeQuota
	history  *fakeHistory
	planner  *fakePlanner
	caller   *infra.Caller
}

func newEngine(d deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := stubVerifier{caller: d.caller}
	var q handlers.Quota
	if d.quota != nil {
		q = d.quota
	}
	var h handlers.History
	if d.history != nil {
		h = d.history
	}
	rh := handlers.NewResolveHandler(d.resolver, q, h)
	api := r.Group("/api", middleware.Auth(verifier, false))
	api.POST("/resolve", rh.Resolve)
	api.POST("/outfits", handlers.NewOutfitHandler(outfit.NewService(nil, nil)).Advise)
	api.POST("/trips/plan", handlers.NewTripHandler(d.planner, q).Plan)
	api.GET("/quota", rh.Remaining)
	api.GET("/resolutions", rh.List)
	api.GET("/resolutions/:id", rh.Get)
	return r
}

func send(r *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var parisResult = &resolution.Result{
	Place:    geocode.ResolvedPlace{Name: "Paris", Latitude: 48.85, Longitude: 2.35, Confidence: 0.9},
	Attempts: 1,
	Tried:    []string{"Paris"},
}

func TestResolve_OK(t *testing.T) {
	r := newEngine(deps{resolver: &fakeResolver{res: parisResult}})
	w := send(r, http.MethodPost, "/api/resolve", `{"query":"  city of light "}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "city of light", body["query"])
	require.Equal(t, "Paris", body["place"].(map[string]any)["name"])
}

func TestResolve_BadRequest(t *testing.T) {
	fr := &fakeResolver{res: parisResult}
	r := newEngine(deps{resolver: fr})
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/resolve", `{`, false).Code)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/resolve", `{"query":"   "}`, false).Code)
	require.Zero(t, fr.calls)
}

func TestResolve_NotFound(t *testing.T) {
	nf := &resolution.NotFoundError{
		Query:       "zzqx",
		Tried:       []string{"Zzqx", "Zanzibar"},
		Suggestions: []string{"Try a nearby major city."},
	}
	r := newEngine(deps{resolver: &fakeResolver{err: nf}})
	w := send(r, http.MethodPost, "/api/resolve", `{"query":"zzqx"}`, false)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	require.Equal(t, []any{"Zzqx", "Zanzibar"}, body["tried"])
	require.NotEmpty(t, body["suggestions"])
}

func TestResolve_Transient(t *testing.T) {
	err := &retry.TransientError{Status: 503, Attempts: 4}
	r := newEngine(deps{resolver: &fakeResolver{err: err}})
	w := send(r, http.MethodPost, "/api/resolve", `{"query":"paris"}`, false)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResolve_Quota(t *testing.T) {
	t.Run("authenticated caller is metered", func(t *testing.T) {
		q := &fakeQuota{}
		r := newEngine(deps{resolver: &fakeResolver{res: parisResult}, quota: q, caller: &infra.Caller{UID: "u1", Plan: "free"}})
		require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/resolve", `{"query":"paris"}`, true).Code)
		require.Equal(t, []string{"u1"}, q.consumed)
	})
	t.Run("anonymous caller is not metered", func(t *testing.T) {
		q := &fakeQuota{}
		r := newEngine(deps{resolver: &fakeResolver{res: parisResult}, quota: q})
		require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/resolve", `{"query":"paris"}`, false).Code)
		require.Empty(t, q.consumed)
	})
	t.Run("pro plan is not metered", func(t *testing.T) {
		q := &fakeQuota{}
		r := newEngine(deps{resolver: &fakeResolver{res: parisResult}, quota: q, caller: &infra.Caller{UID: "u2", Plan: "pro"}})
		require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/resolve", `{"query":"paris"}`, true).Code)
		require.Empty(t, q.consumed)
	})
	t.Run("exhausted quota is 429 and skips resolution", func(t *testing.T) {
		fr := &fakeResolver{res: parisResult}
		q := &fakeQuota{err: quota.ErrExhausted}
		r := newEngine(deps{resolver: fr, quota: q, caller: &infra.Caller{UID: "u3"}})
		require.Equal(t, http.StatusTooManyRequests, send(r, http.MethodPost, "/api/resolve", `{"query":"paris"}`, true).Code)
		require.Zero(t, fr.calls)
	})
}

func TestRemaining(t *testing.T) {
	r := newEngine(deps{resolver: &fakeResolver{}, quota: &fakeQuota{}, caller: &infra.Caller{UID: "u1"}})
	w := send(r, http.MethodGet, "/api/quota", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 42, decode(t, w)["remaining"])

	r = newEngine(deps{resolver: &fakeResolver{}})
	require.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/api/quota", "", true).Code)
}

func TestHistory(t *testing.T) {
	id := "7f1c2a9e-3b5d-4c8e-9a0b-1d2e3f4a5b6c"
	hist := &fakeHistory{records: []resolution.Record{{ID: id, Query: "paris"}, {ID: "other", Query: "oslo"}}}
	r := newEngine(deps{resolver: &fakeResolver{}, history: hist})

	w := send(r, http.MethodGet, "/api/resolutions?limit=1", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["resolutions"], 1)

	require.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/resolutions?limit=-2", "", false).Code)
	require.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/resolutions/"+id, "", false).Code)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/resolutions/not-a-uuid", "", false).Code)
	require.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/api/resolutions/00000000-0000-0000-0000-000000000000", "", false).Code)
}

func TestOutfits(t *testing.T) {
	r := newEngine(deps{resolver: &fakeResolver{}})

	w := send(r, http.MethodPost, "/api/outfits", `{"days":[{"date":"2026-07-01","high_temp":90,"low_temp":75,"precip_chance":10,"wind_speed":5,"uv_index":9,"condition":"sun"}]}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	days := decode(t, w)["days"].([]any)
	require.Len(t, days, 1)
	require.Contains(t, days[0].(map[string]any)["items"], "sunglasses")

	w = send(r, http.MethodPost, "/api/outfits", `{"days":[{"high_temp":50,"low_temp":40,"wind_speed":-1}]}`, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w)["field"], "days[0]")

	w = send(r, http.MethodPost, "/api/outfits", `{"day":{"date":"2026-01-10","high_temp":30,"low_temp":20,"condition":"snow"},"persona":"minimal"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["days"], 1)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/outfits", `{"day":{"high_temp":70,"low_temp":60},"days":[{"high_temp":70,"low_temp":60}]}`, false).Code)

	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/outfits", `{"days":[]}`, false).Code)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/outfits", `{"days":[{"high_temp":70,"low_temp":60}],"persona":"pirate"}`, false).Code)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/outfits", `{"days":[{"high_temp":70,"low_temp":60}],"units":"kelvin"}`, false).Code)
}

func TestTripPlan(t *testing.T) {
	p := &fakePlanner{}
	r := newEngine(deps{resolver: &fakeResolver{}, planner: p})

	w := send(r, http.MethodPost, "/api/trips/plan", `{"query":"paris","persona":"Business"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, p.got.Days)
	require.Equal(t, outfit.PersonaBusiness, p.got.Persona)

	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/trips/plan", `{"query":"paris","days":40}`, false).Code)
	require.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/api/trips/plan", `{"query":""}`, false).Code)

	p.err = errors.New("db down")
	require.Equal(t, http.StatusInternalServerError, send(r, http.MethodPost, "/api/trips/plan", `{"query":"paris"}`, false).Code)
}
