// Package providerhealth aggregates reachability probes for the
// external providers the pipeline depends on. The readiness endpoint
// reports these alongside the database ping.
package providerhealth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonesrussell/claim-ranker/internal/transport"
)

// probeTimeout caps a single provider probe.
const probeTimeout = 2 * time.Second

// Status is the outcome of one provider probe.
type Status struct {
	Name      string `json:"name"`
	Reachable bool   `json:"reachable"`
	LatencyMs int64  `json:"latency_ms"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Probe checks one provider and reports reachability, latency, and an
// optional version string.
type Probe func(ctx context.Context) (reachable bool, latencyMs int64, version string, err error)

// Check calls GET /health at baseURL and returns reachable, latencyMs,
// the provider's version, and any error.
func Check(ctx context.Context, baseURL string) (reachable bool, latencyMs int64, version string, err error) {
	reachable, latencyMs, version, err = transport.DoHealth(ctx, nil, baseURL)
	if err != nil {
		return reachable, latencyMs, version, fmt.Errorf("provider health check: %w", err)
	}
	return reachable, latencyMs, version, nil
}

// HealthProbe builds a Probe for a provider exposing GET /health.
func HealthProbe(baseURL string) Probe {
	return func(ctx context.Context) (bool, int64, string, error) {
		return Check(ctx, baseURL)
	}
}

// ReachabilityProbe builds a Probe that only verifies the endpoint
// answers HTTP at all. Used for providers without a health route.
func ReachabilityProbe(url string) Probe {
	return func(ctx context.Context) (bool, int64, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
		if err != nil {
			return false, 0, "", fmt.Errorf("provider health check: %w", err)
		}

		start := time.Now()
		resp, err := http.DefaultClient.Do(req)
		latencyMs := time.Since(start).Milliseconds()
		if err != nil {
			return false, latencyMs, "", fmt.Errorf("provider health check: %w", err)
		}
		defer resp.Body.Close()

		return true, latencyMs, "", nil
	}
}

// Monitor holds named probes and runs them on demand.
type Monitor struct {
	mu     sync.RWMutex
	order  []string
	probes map[string]Probe
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{probes: make(map[string]Probe)}
}

// Register adds a named probe. Re-registering a name replaces it.
func (m *Monitor) Register(name string, probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.probes[name]; !exists {
		m.order = append(m.order, name)
	}
	m.probes[name] = probe
}

// Names returns the registered probe names in registration order.
func (m *Monitor) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// CheckOne runs a single named probe with the monitor's timeout.
func (m *Monitor) CheckOne(ctx context.Context, name string) Status {
	m.mu.RLock()
	probe, ok := m.probes[name]
	m.mu.RUnlock()

	if !ok {
		return Status{Name: name, Error: "unknown provider"}
	}

	return runProbe(ctx, name, probe)
}

// CheckAll runs every registered probe concurrently and returns the
// statuses in registration order.
func (m *Monitor) CheckAll(ctx context.Context) []Status {
	names := m.Names()
	statuses := make([]Status, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			statuses[i] = m.CheckOne(ctx, name)
		}(i, name)
	}
	wg.Wait()

	return statuses
}

func runProbe(ctx context.Context, name string, probe Probe) Status {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	reachable, latencyMs, version, err := probe(probeCtx)
	status := Status{
		Name:      name,
		Reachable: reachable,
		LatencyMs: latencyMs,
		Version:   version,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
