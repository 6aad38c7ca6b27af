// Package fare estimates trip prices. The real estimator is an external
// collaborator that may be unconfigured or down; the service wrapper always
// degrades to a locally computed estimate so a failed estimate never blocks
// a ride request.
package fare

import (
	"context"

	"rideshare/pkg/logger"
)

type Estimate struct {
	Fare      float64 `json:"estimated_fare"`
	Reasoning string  `json:"reasoning"`
}

type Estimator interface {
	Estimate(ctx context.Context, pickup, dropoff string, shared bool) (*Estimate, error)
}

// Service fronts an optional external estimator with a local fallback.
type Service struct {
	primary  Estimator
	fallback Estimator
	log      *logger.Logger
}

// NewService wires the failover pair. primary may be nil, which means the
// external estimator is unconfigured and the fallback handles everything.
func NewService(primary Estimator, fallback Estimator, log *logger.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Estimate never fails: external errors are logged and absorbed by the
// fallback estimate.
func (s *Service) Estimate(ctx context.Context, pickup, dropoff string, shared bool) (*Estimate, error) {
	if s.primary != nil {
		estimate, err := s.primary.Estimate(ctx, pickup, dropoff, shared)
		if err == nil {
			return estimate, nil
		}
		s.log.WithError(err).Warn("External fare estimator failed, using local estimate")
	}
	return s.fallback.Estimate(ctx, pickup, dropoff, shared)
}
