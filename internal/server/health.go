package server

import (
	"context"
	"fmt"

	"github.com/vanshika/addrlink/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to HealthService.
type ProbeFunc func(ctx context.Context) error

// Probe implements the HealthService interface.
func (f ProbeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// HealthChecks runs named probes in order and reports the first failure.
type HealthChecks []NamedProbe

// NamedProbe labels a dependency probe.
type NamedProbe struct {
	Name  string
	Probe HealthService
}

// Probe implements the HealthService interface.
func (h HealthChecks) Probe(ctx context.Context) error {
	for _, p := range h {
		if p.Probe == nil {
			continue
		}
		if err := p.Probe.Probe(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}
