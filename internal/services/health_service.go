package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts"
)

// Readiness states
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// ReadinessProbe reports whether a dependency is usable.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) ServiceHealth
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	service   string
	probes    []ReadinessProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. Probes feed the readiness check.
func NewHealthService(logger *slog.Logger, probes ...ReadinessProbe) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   contracts.Version,
		service:   contracts.ServiceName,
		probes:    probes,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Service:   hs.service,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck runs every probe. The service is ready when all probes are.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Service:   hs.service,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}, len(hs.probes)),
	}

	for _, probe := range hs.probes {
		result := probe.Check(ctx)
		status.Services[probe.Name] = result
		if result.Status != StatusReady {
			status.Status = StatusNotReady
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready",
			slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Service:   hs.service,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"service":      contracts.ServiceName,
		"api_version":  info.APIVersion,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// ConfiguredProbe reports a collaborator as ready when it has credentials.
// Missing credentials leave the service usable in heuristic mode, so the
// probe reports "degraded" only when required is set.
func ConfiguredProbe(name string, configured func() bool, required bool) ReadinessProbe {
	return ReadinessProbe{
		Name: name,
		Check: func(context.Context) ServiceHealth {
			if configured() {
				return ServiceHealth{Status: StatusReady, Message: name + " configured"}
			}
			if required {
				return ServiceHealth{Status: "degraded", Message: name + " API key not set"}
			}
			return ServiceHealth{Status: StatusReady, Message: name + " not configured (optional)"}
		},
	}
}
