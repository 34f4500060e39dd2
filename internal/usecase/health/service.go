package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates a required component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Component is one named dependency. A failing required component makes the
// service unhealthy; a failing optional one only degrades it.
type Component struct {
	Name     string
	Pinger   Pinger
	Required bool
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a Service. Components with a nil Pinger are skipped.
func New(logger *zap.Logger, components ...Component) *Service {
	return &Service{components: components, timeout: DefaultTimeout, logger: logger}
}

// Check runs every component check with its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	status := Healthy

	for _, c := range s.components {
		if c.Pinger == nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.Pinger.Ping(cctx)
		cancel()

		if err == nil {
			checks[c.Name] = CheckOK
			continue
		}
		checks[c.Name] = CheckError
		s.logger.Warn("Health check failed", zap.String("component", c.Name), zap.Error(err))
		if c.Required {
			status = Unhealthy
		} else if status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}
