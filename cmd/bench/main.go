// README: Smoke and load runner; checks a running API plus its Postgres and Redis, then prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"packwise/internal/config"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	fmt.Printf("\n%s=%d %s=%d %s=%d\n", statusPass, counts[statusPass], statusFail, counts[statusFail], statusSkip, counts[statusSkip])
	if counts[statusFail] > 0 {
		os.Exit(1)
	}
}

// Config is the bench's view of a deployment. DB and Redis come from the
// same config the API loads; empty values skip their checks.
type Config struct {
	BaseURL        string
	DSN            string
	RedisAddr      string
	MigrationGlob  string
	ApplyMigration bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

func loadConfig() (Config, error) {
	app, err := config.Load()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{DSN: app.DB.DSN, RedisAddr: app.Redis.Addr}
	flag.StringVar(&cfg.BaseURL, "base-url", "http://localhost"+app.HTTP.Addr, "API base URL")
	flag.StringVar(&cfg.MigrationGlob, "migrations", "migrations/*.sql", "Migration SQL glob")
	flag.BoolVar(&cfg.ApplyMigration, "apply-migration", false, "Apply migrations before tests")
	flag.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", 20, "Concurrency for perf tests")
	flag.DurationVar(&cfg.Duration, "duration", 10*time.Second, "Duration for perf tests")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}
