package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

type readinessCheck struct {
	name string
	ping func(ctx context.Context) error
}

func redisPing(c *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error { return c.Ping(ctx).Err() }
}

// HandleHealthz godoc
// @Summary Health check (liveness)
// @Description Always returns 200 OK if the service is running. Used for liveness probes.
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleReadyz godoc
// @Summary Readiness check
// @Description Checks connectivity to the configured dependencies (Postgres, cache Redis, and asynq Redis) and reports each one. Dependencies that are not configured are skipped.
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse "All dependencies ready"
// @Failure 503 {object} ReadyResponse "At least one dependency unavailable"
// @Router /readyz [get]
func HandleReadyz(db *sql.DB, cache, asynqRedis *redis.Client) http.HandlerFunc {
	var checks []readinessCheck
	if db != nil {
		checks = append(checks, readinessCheck{name: "postgres", ping: db.PingContext})
	}
	if cache != nil {
		checks = append(checks, readinessCheck{name: "redis_cache", ping: redisPing(cache)})
	}
	if asynqRedis != nil {
		checks = append(checks, readinessCheck{name: "redis_asynq", ping: redisPing(asynqRedis)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.ping(r.Context()); err != nil {
				resp.Checks[c.name] = "unavailable"
				resp.Status = "not ready"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}
