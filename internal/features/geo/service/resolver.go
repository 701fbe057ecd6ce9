package service

import (
	"context"
	"fmt"

	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/geo/domain"
	"manifest-dispatcher/internal/features/geo/ports"

	"go.uber.org/zap"
)

// Service resolves points against the administrative boundary dataset.
type Service struct {
	boundaries []domain.Boundary
}

// NewService loads the boundary dataset once and keeps it in memory for the
// lifetime of the process.
func NewService(ctx context.Context, repo ports.BoundaryRepository) (*Service, error) {
	boundaries, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load boundary dataset: %w", err)
	}

	logger.Get().Info("Boundary dataset loaded", zap.Int("boundaries", len(boundaries)))

	return &Service{boundaries: boundaries}, nil
}

// Resolve returns the name of the first boundary whose interior contains the
// point, or the empty string when the point is outside every boundary.
// Points exactly on an edge resolve to whichever matching boundary comes
// first in dataset order.
func (s *Service) Resolve(_ context.Context, pt domain.Point) (string, error) {
	for _, b := range s.boundaries {
		if b.Contains(pt) {
			return b.Name, nil
		}
	}
	return "", nil
}
