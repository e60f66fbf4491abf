// README: Bench cases; API contract, DB schema, geocode cache and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

var sunnyDay = map[string]any{
	"date":          "2026-07-01",
	"high_temp":     88,
	"low_temp":      70,
	"precip_chance": 10,
	"wind_speed":    6,
	"uv_index":      9,
	"condition":     "sun",
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				files, err := migrationFiles(r.cfg.MigrationGlob)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, f := range files {
					sql, err := os.ReadFile(f)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					for _, s := range splitSQL(string(sql)) {
						if _, err := r.db.Exec(ctx, s); err != nil {
							return Result{Status: statusFail, Note: filepath.Base(f) + ": " + err.Error()}
						}
					}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("files=%d", len(files))}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationGlob)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass, Note: strings.Join(tables, ",")}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCaseMethod("API: metrics exposed", http.MethodGet, base+"/metrics", nil, []int{200}),
		// Resolution
		httpCase("Resolve: plain city", base+"/api/resolve", map[string]any{"query": "Paris"}, []int{200}),
		httpCase("Resolve: blank query -> 400", base+"/api/resolve", map[string]any{"query": "   "}, []int{400}),
		httpCase("Resolve: malformed json -> 400", base+"/api/resolve", json.RawMessage(`{"query":`), []int{400}),
		httpCase("Resolve: gibberish -> 404", base+"/api/resolve", map[string]any{"query": "qxzqxzqxz vvkq"}, []int{404}),
		{
			Name: "Resolve: geocode cache populated",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				keys, err := r.redis.Keys(ctx, "packwise:geocode:*").Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if len(keys) == 0 {
					return Result{Status: statusFail, Note: "no cached lookups"}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("keys=%d", len(keys))}
			},
		},
		{
			Name: "Resolve: history persisted",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				var n int
				if err := r.db.QueryRow(ctx, "SELECT count(*) FROM resolutions WHERE query = $1", "Paris").Scan(&n); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: statusFail, Note: "no row for Paris"}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("rows=%d", n)}
			},
		},
		// Outfits
		httpCase("Outfit: sunny day", base+"/api/outfits", map[string]any{"days": []any{sunnyDay}}, []int{200}),
		httpCase("Outfit: metric units", base+"/api/outfits", map[string]any{
			"units": "metric",
			"days":  []any{map[string]any{"high_temp": 31, "low_temp": 21, "wind_speed": 10}},
		}, []int{200}),
		httpCase("Outfit: precip out of range -> 400", base+"/api/outfits", map[string]any{
			"days": []any{map[string]any{"high_temp": 60, "low_temp": 50, "precip_chance": 140}},
		}, []int{400}),
		httpCase("Outfit: unknown persona -> 400", base+"/api/outfits", map[string]any{
			"persona": "pirate",
			"days":    []any{sunnyDay},
		}, []int{400}),
		httpCase("Outfit: no days -> 400", base+"/api/outfits", map[string]any{"days": []any{}}, []int{400}),
		// Trips
		httpCase("Trip: plan", base+"/api/trips/plan", map[string]any{"query": "Lisbon", "persona": "outdoorsy", "days": 2}, []int{200}),
		httpCase("Trip: too many days -> 400", base+"/api/trips/plan", map[string]any{"query": "Lisbon", "days": 99}, []int{400}),
		// Auth
		httpCaseMethod("Auth: history without token -> 401", http.MethodGet, base+"/api/resolutions", nil, []int{401}),
		// Performance
		{
			Name: "Perf: outfit throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/outfits", map[string]any{"days": []any{sunnyDay}})
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, err := encodeBody(body)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				reader = strings.NewReader(b)
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

// encodeBody passes json.RawMessage through untouched so malformed payloads
// can be sent on purpose.
func encodeBody(body any) (string, error) {
	if raw, ok := body.(json.RawMessage); ok {
		return string(raw), nil
	}
	b, err := json.Marshal(body)
	return string(b), err
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var (
		count, errCount int64
		mu              sync.Mutex
		wg              sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil || resp.StatusCode != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
				if err == nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func migrationFiles(glob string) ([]string, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations match %s", glob)
	}
	sort.Strings(files)
	return files, nil
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(glob string) ([]string, error) {
	files, err := migrationFiles(glob)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
