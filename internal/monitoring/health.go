package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const DatabaseCheck = "database"

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

type HealthCheckFunc func(ctx context.Context) error

type HealthChecker struct {
	mu      sync.Mutex
	checks  map[string]HealthCheckFunc
	timeout time.Duration
	logger  zerolog.Logger
}

func NewHealthChecker(timeout time.Duration, logger zerolog.Logger) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]HealthCheckFunc),
		timeout: timeout,
		logger:  logger.With().Str("component", "health").Logger(),
	}
}

func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes every registered check with its own timeout. Failures are
// logged with their cause; results only say that the check failed.
func (h *HealthChecker) Run(ctx context.Context) map[string]HealthCheck {
	h.mu.Lock()
	checks := make(map[string]HealthCheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.Unlock()

	results := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check(checkCtx)
		cancel()

		result := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
		if err != nil {
			h.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
			result.Status = "unhealthy"
			result.Message = "check failed"
		}
		results[name] = result
	}
	return results
}

// HealthHandler answers from the database check alone. Other checks are
// reported in "checks" without changing the status code.
func HealthHandler(checker *HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := checker.Run(c.Request.Context())

		healthy := true
		if check, ok := checks[DatabaseCheck]; ok {
			healthy = check.Status == "healthy"
		} else {
			for _, check := range checks {
				if check.Status != "healthy" {
					healthy = false
					break
				}
			}
		}

		database := "connected"
		if check, ok := checks[DatabaseCheck]; ok && check.Status != "healthy" {
			database = "disconnected"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "error",
				"database":  database,
				"error":     "Health check failed",
				"checks":    checks,
				"timestamp": time.Now().UTC(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"database":  database,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	}
}
