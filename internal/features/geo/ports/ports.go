package ports

import (
	"context"

	"manifest-dispatcher/internal/features/geo/domain"
)

// BoundaryRepository defines the secondary port for loading the
// administrative boundary dataset. The dataset is reference data: loaded
// once per run and never written.
type BoundaryRepository interface {
	// Load returns every named boundary in the dataset.
	Load(ctx context.Context) ([]domain.Boundary, error)
}

// RegionResolver defines the primary port for mapping a point to the
// administrative region containing it.
type RegionResolver interface {
	// Resolve returns the name of the region whose interior contains the
	// point, or the empty string when the point falls outside every known
	// boundary.
	Resolve(ctx context.Context, pt domain.Point) (string, error)
}
