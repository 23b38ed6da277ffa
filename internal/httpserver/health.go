package httpserver

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the status of a health check.
type HealthStatus string

const (
	// HealthStatusHealthy indicates the service is healthy.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded indicates the service is degraded but functional.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy indicates the service is unhealthy.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// Buffer size constants for uptime formatting.
const (
	bufSizeDaysHoursMinutes = 16 // "999d 23h 59m"
	bufSizeHoursMinutes     = 8  // "23h 59m"
	bufSizeMinutesSeconds   = 8  // "59m 59s"
	bufSizeSeconds          = 4  // "59s"
)

const bytesPerMB = 1024 * 1024

// HealthResponse is the standardized health and readiness response format.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of an individual readiness check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker is a function that performs a readiness check and returns the result.
type HealthChecker func() CheckResult

// ReadyOptions configures the readiness endpoint behavior.
type ReadyOptions struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Checks is a map of named readiness checkers.
	Checks map[string]HealthChecker
}

// MemoryHealth reports runtime memory statistics.
type MemoryHealth struct {
	Timestamp     time.Time `json:"timestamp"`
	HeapAllocMB   float64   `json:"heap_alloc_mb"`
	HeapInuseMB   float64   `json:"heap_inuse_mb"`
	HeapIdleMB    float64   `json:"heap_idle_mb"`
	StackInuseMB  float64   `json:"stack_inuse_mb"`
	NumGC         uint32    `json:"num_gc"`
	NumGoroutine  int       `json:"num_goroutine"`
	GOMaxProcs    int       `json:"gomaxprocs"`
	LastGCPauseMs float64   `json:"last_gc_pause_ms,omitempty"`
}

// healthState tracks server start time for uptime reporting.
var healthState = struct {
	sync.Once
	startTime time.Time
}{}

// RegisterHealthRoutes adds liveness endpoints to a Gin router. These
// report on the process only and never touch dependencies, so they stay
// green while the database or providers are down.
// Endpoints:
//   - GET /health - Basic health check with status, service name, version
//   - GET /health/memory - Memory statistics from runtime
//   - HEAD /health - Lightweight health check for load balancers
func RegisterHealthRoutes(router *gin.Engine, serviceName, version string) {
	initStartTime()

	router.GET("/health", healthHandler(serviceName, version))
	router.HEAD("/health", headHealthHandler())
	router.GET("/health/memory", memoryHealthHandler())
}

// RegisterReadyRoute adds GET /ready, which runs the configured checks
// and reports aggregate readiness. An unhealthy check yields 503; a
// degraded check keeps the service ready but reflects in the body.
func RegisterReadyRoute(router *gin.Engine, opts ReadyOptions) {
	initStartTime()

	router.GET("/ready", readyHandler(opts))
}

// initStartTime initializes the server start time (only once).
func initStartTime() {
	healthState.Do(func() {
		healthState.startTime = time.Now()
	})
}

// healthHandler returns a Gin handler for the liveness endpoint.
func healthHandler(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  HealthStatusHealthy,
			Service: serviceName,
			Version: version,
			Uptime:  formatUptime(time.Since(healthState.startTime)),
		})
	}
}

// headHealthHandler returns a Gin handler for HEAD /health requests.
func headHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}

// readyHandler runs every check and folds the results into an overall
// status: any unhealthy check makes the service not ready.
func readyHandler(opts ReadyOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  formatUptime(time.Since(healthState.startTime)),
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, checker := range opts.Checks {
				result := checker()
				response.Checks[name] = result

				if result.Status == HealthStatusUnhealthy {
					response.Status = HealthStatusUnhealthy
				} else if result.Status == HealthStatusDegraded && response.Status == HealthStatusHealthy {
					response.Status = HealthStatusDegraded
				}
			}
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

// memoryHealthHandler returns a Gin handler for the memory health endpoint.
func memoryHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		health := MemoryHealth{
			Timestamp:    time.Now().UTC(),
			HeapAllocMB:  float64(stats.Alloc) / bytesPerMB,
			HeapInuseMB:  float64(stats.HeapInuse) / bytesPerMB,
			HeapIdleMB:   float64(stats.HeapIdle) / bytesPerMB,
			StackInuseMB: float64(stats.StackInuse) / bytesPerMB,
			NumGC:        stats.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
			GOMaxProcs:   runtime.GOMAXPROCS(0),
		}

		// Add last GC pause if any GC has occurred
		if stats.NumGC > 0 {
			health.LastGCPauseMs = float64(stats.PauseNs[(stats.NumGC+255)%256]) / 1e6
		}

		c.Writer.Header().Set("Content-Type", "application/json")
		c.Status(http.StatusOK)

		if err := json.NewEncoder(c.Writer).Encode(health); err != nil {
			c.String(http.StatusInternalServerError, "Failed to encode response")
		}
	}
}

// formatUptime formats a duration as a human-readable string.
func formatUptime(d time.Duration) string {
	const (
		hoursPerDay    = 24
		minutesPerHour = 60
		secondsPerMin  = 60
	)

	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	minutes := int(d.Minutes()) % minutesPerHour
	seconds := int(d.Seconds()) % secondsPerMin

	if days > 0 {
		return formatDaysHoursMinutes(days, hours, minutes)
	}
	if hours > 0 {
		return formatHoursMinutes(hours, minutes)
	}
	if minutes > 0 {
		return formatMinutesSeconds(minutes, seconds)
	}
	return formatSeconds(seconds)
}

// formatDaysHoursMinutes formats uptime with days, hours, and minutes.
func formatDaysHoursMinutes(days, hours, minutes int) string {
	result := make([]byte, 0, bufSizeDaysHoursMinutes)
	result = appendInt(result, days)
	result = append(result, 'd', ' ')
	result = appendInt(result, hours)
	result = append(result, 'h', ' ')
	result = appendInt(result, minutes)
	result = append(result, 'm')
	return string(result)
}

// formatHoursMinutes formats uptime with hours and minutes.
func formatHoursMinutes(hours, minutes int) string {
	result := make([]byte, 0, bufSizeHoursMinutes)
	result = appendInt(result, hours)
	result = append(result, 'h', ' ')
	result = appendInt(result, minutes)
	result = append(result, 'm')
	return string(result)
}

// formatMinutesSeconds formats uptime with minutes and seconds.
func formatMinutesSeconds(minutes, seconds int) string {
	result := make([]byte, 0, bufSizeMinutesSeconds)
	result = appendInt(result, minutes)
	result = append(result, 'm', ' ')
	result = appendInt(result, seconds)
	result = append(result, 's')
	return string(result)
}

// formatSeconds formats uptime with just seconds.
func formatSeconds(seconds int) string {
	result := make([]byte, 0, bufSizeSeconds)
	result = appendInt(result, seconds)
	result = append(result, 's')
	return string(result)
}

// appendInt appends an integer to a byte slice without using fmt.
func appendInt(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	if n < 0 {
		buf = append(buf, '-')
		n = -n
	}

	// Count digits
	digits := 0
	for temp := n; temp > 0; temp /= 10 {
		digits++
	}

	// Pre-grow buffer
	start := len(buf)
	for i := 0; i < digits; i++ {
		buf = append(buf, '0')
	}

	// Fill in digits from right to left
	for i := start + digits - 1; n > 0; i-- {
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return buf
}

// DatabaseHealthChecker creates a readiness checker for database
// connectivity. A failed ping makes the service not ready.
func DatabaseHealthChecker(pingFunc func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := pingFunc()
		latency := time.Since(start)

		if err != nil {
			return CheckResult{
				Status:  HealthStatusUnhealthy,
				Message: "Database connection failed",
				Latency: latency.String(),
			}
		}

		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: "Database connection OK",
			Latency: latency.String(),
		}
	}
}

// RedisHealthChecker creates a readiness checker for Redis connectivity.
// The pingFunc should attempt to ping Redis and return an error if it fails.
func RedisHealthChecker(pingFunc func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := pingFunc()
		latency := time.Since(start)

		if err != nil {
			return CheckResult{
				Status:  HealthStatusDegraded, // Redis often not critical
				Message: "Redis connection failed",
				Latency: latency.String(),
			}
		}

		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: "Redis connection OK",
			Latency: latency.String(),
		}
	}
}

// ProviderHealthChecker creates a readiness checker for an upstream
// model provider. An unreachable provider degrades readiness rather
// than failing it; the pipeline has retry and fallback paths.
func ProviderHealthChecker(pingFunc func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := pingFunc()
		latency := time.Since(start)

		if err != nil {
			return CheckResult{
				Status:  HealthStatusDegraded,
				Message: "Provider unreachable",
				Latency: latency.String(),
			}
		}

		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: "Provider reachable",
			Latency: latency.String(),
		}
	}
}
