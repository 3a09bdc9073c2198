package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
)

// DegradationLevel represents the current degradation state
type DegradationLevel int

const (
	LevelNormal DegradationLevel = iota
	LevelDegraded
	LevelCritical
	LevelEmergency
)

func (l DegradationLevel) String() string {
	switch l {
	case LevelNormal:
		return "healthy"
	case LevelDegraded:
		return "degraded"
	case LevelCritical:
		return "critical"
	case LevelEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// DegradationConfig holds configuration for graceful degradation
type DegradationConfig struct {
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	DegradedThreshold   float64       `json:"degraded_threshold"`  // error rate in [0, 1]
	CriticalThreshold   float64       `json:"critical_threshold"`  // error rate in [0, 1]
	EmergencyThreshold  float64       `json:"emergency_threshold"` // error rate in [0, 1]
	HealthCheckTimeout  time.Duration `json:"health_check_timeout"`
	// Window is the number of most recent outcomes the error rate is computed over.
	Window int `json:"window"`
}

// DefaultDegradationConfig returns sensible defaults
func DefaultDegradationConfig() DegradationConfig {
	return DegradationConfig{
		HealthCheckInterval: 30 * time.Second,
		DegradedThreshold:   0.1,
		CriticalThreshold:   0.25,
		EmergencyThreshold:  0.5,
		HealthCheckTimeout:  5 * time.Second,
		Window:              20,
	}
}

// ServiceHealth represents the health status of a dependency
type ServiceHealth struct {
	ServiceName   string           `json:"service_name"`
	Level         DegradationLevel `json:"level"`
	ErrorRate     float64          `json:"error_rate"`
	TotalRequests int64            `json:"total_requests"`
	ErrorCount    int64            `json:"error_count"`
	LastError     string           `json:"last_error,omitempty"`
	LastErrorTime time.Time        `json:"last_error_time"`
	StatusMessage string           `json:"status_message"`

	outcomes []bool // ring of recent outcomes, true = failure
	next     int
}

// HealthCheckFunc represents a function that checks service health
type HealthCheckFunc func(ctx context.Context) error

// DegradationManager tracks the health of optional dependencies. The scoring
// path never consults it; it feeds the health endpoint.
type DegradationManager struct {
	config       DegradationConfig
	services     map[string]*ServiceHealth
	healthChecks map[string]HealthCheckFunc
	mutex        sync.RWMutex
}

// NewDegradationManager creates a new degradation manager
func NewDegradationManager(config DegradationConfig) *DegradationManager {
	if config.Window < 1 {
		config.Window = 1
	}
	return &DegradationManager{
		config:       config,
		services:     make(map[string]*ServiceHealth),
		healthChecks: make(map[string]HealthCheckFunc),
	}
}

// RegisterService registers a service with its health check function
func (dm *DegradationManager) RegisterService(serviceName string, healthCheck HealthCheckFunc) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.services[serviceName] = &ServiceHealth{
		ServiceName:   serviceName,
		Level:         LevelNormal,
		StatusMessage: "Service is healthy",
	}
	if healthCheck != nil {
		dm.healthChecks[serviceName] = healthCheck
	}

	slog.Info("Registered service for degradation management", "service", serviceName)
}

// RecordSuccess records a successful call or health check.
func (dm *DegradationManager) RecordSuccess(serviceName string) {
	dm.record(serviceName, nil)
}

// RecordError records an error for a service
func (dm *DegradationManager) RecordError(serviceName string, err error) {
	if err == nil {
		err = fmt.Errorf("%s request failed", serviceName)
	}
	dm.record(serviceName, err)
}

func (dm *DegradationManager) record(serviceName string, err error) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	service, exists := dm.services[serviceName]
	if !exists {
		return
	}

	service.TotalRequests++
	failed := err != nil
	if failed {
		service.ErrorCount++
		service.LastError = err.Error()
		service.LastErrorTime = time.Now()
	}

	if len(service.outcomes) < dm.config.Window {
		service.outcomes = append(service.outcomes, failed)
	} else {
		service.outcomes[service.next] = failed
		service.next = (service.next + 1) % dm.config.Window
	}

	failures := 0
	for _, f := range service.outcomes {
		if f {
			failures++
		}
	}
	service.ErrorRate = float64(failures) / float64(len(service.outcomes))

	dm.updateDegradationLevel(service)
}

// updateDegradationLevel updates the degradation level based on current metrics
func (dm *DegradationManager) updateDegradationLevel(service *ServiceHealth) {
	oldLevel := service.Level

	switch {
	case service.ErrorRate >= dm.config.EmergencyThreshold:
		service.Level = LevelEmergency
		service.StatusMessage = "Service is in emergency state - high error rate"
	case service.ErrorRate >= dm.config.CriticalThreshold:
		service.Level = LevelCritical
		service.StatusMessage = "Service is in critical state - elevated error rate"
	case service.ErrorRate >= dm.config.DegradedThreshold:
		service.Level = LevelDegraded
		service.StatusMessage = "Service is degraded - moderate error rate"
	default:
		service.Level = LevelNormal
		service.StatusMessage = "Service is healthy"
	}

	if oldLevel != service.Level {
		slog.Warn("Service degradation level changed",
			"service", service.ServiceName,
			"old_level", oldLevel.String(),
			"new_level", service.Level.String(),
			"error_rate", service.ErrorRate,
			"total_requests", service.TotalRequests,
			"error_count", service.ErrorCount)
	}
}

func (s *ServiceHealth) snapshot() *ServiceHealth {
	return &ServiceHealth{
		ServiceName:   s.ServiceName,
		Level:         s.Level,
		ErrorRate:     s.ErrorRate,
		TotalRequests: s.TotalRequests,
		ErrorCount:    s.ErrorCount,
		LastError:     s.LastError,
		LastErrorTime: s.LastErrorTime,
		StatusMessage: s.StatusMessage,
	}
}

// GetAllServiceHealth returns health status for all services
func (dm *DegradationManager) GetAllServiceHealth() map[string]*ServiceHealth {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	result := make(map[string]*ServiceHealth, len(dm.services))
	for name, service := range dm.services {
		result[name] = service.snapshot()
	}
	return result
}

// IsServiceAvailable reports false only for unknown services and those in emergency state.
func (dm *DegradationManager) IsServiceAvailable(serviceName string) bool {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	service, exists := dm.services[serviceName]
	if !exists {
		return false
	}
	return service.Level != LevelEmergency
}

// StartHealthChecks runs the registered checks every HealthCheckInterval until ctx is done.
func (dm *DegradationManager) StartHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.CheckNow(ctx)
		}
	}
}

// CheckNow runs every registered health check once and waits for them.
func (dm *DegradationManager) CheckNow(ctx context.Context) {
	dm.mutex.RLock()
	checks := make(map[string]HealthCheckFunc, len(dm.healthChecks))
	for name, check := range dm.healthChecks {
		checks[name] = check
	}
	dm.mutex.RUnlock()

	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, dm.config.HealthCheckTimeout)
			defer cancel()

			if err := check(checkCtx); err != nil {
				dm.RecordError(name, apperrors.WrapError(err, "health check failed for service %s", name))
				return
			}
			dm.RecordSuccess(name)
		}(name, check)
	}
	wg.Wait()
}
