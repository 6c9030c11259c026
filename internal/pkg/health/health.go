package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// DefaultTimeout bounds every single check.
const DefaultTimeout = 2 * time.Second

// Check reports whether one backend is reachable.
type Check func(ctx context.Context) error

// Report is the result of one health run.
type Report struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checked_at"`
}

// Checker runs named checks against the backends the service depends on.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{checks: map[string]Check{}, timeout: timeout}
}

// Add registers check under name, replacing an earlier one.
func (h *Checker) Add(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes all checks concurrently.
func (h *Checker) Run(ctx context.Context) Report {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = h.checks[name]
	}
	h.mu.RUnlock()

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			results[i] = checks[i](cctx)
		}(i)
	}
	wg.Wait()

	report := Report{Healthy: true, Checks: make(map[string]string, len(names)), CheckedAt: time.Now()}
	for i, name := range names {
		if results[i] != nil {
			log.Warnf("[Health] %s check failed: %v", name, results[i])
			report.Healthy = false
			report.Checks[name] = results[i].Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}

// Handler serves the report, 503 when any check fails.
func (h *Checker) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := h.Run(c.UserContext())
		status := fiber.StatusOK
		if !report.Healthy {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(report)
	}
}
