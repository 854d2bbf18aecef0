package server

import (
	"context"

	"github.com/devansh/connectly/backend/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// MirrorHealthService verifies connectivity to the graph mirror as part of
// health checks. With no mirror configured the probe always passes: the
// in-memory store has no external dependency to lose.
type MirrorHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s MirrorHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
