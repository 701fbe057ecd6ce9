package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/geo/domain"

	"go.uber.org/zap"
)

// GeoJSONRepository implements ports.BoundaryRepository over a GeoJSON
// FeatureCollection file. Coordinates must already be geographic
// longitude/latitude (EPSG:4326), matching the point geometry used for the
// containment join.
type GeoJSONRepository struct {
	// path is the dataset file location.
	path string
	// nameProperty is the feature property carrying the region name.
	nameProperty string
	logger       *zap.Logger
}

// NewGeoJSONRepository creates a repository for the given dataset file.
func NewGeoJSONRepository(path, nameProperty string) *GeoJSONRepository {
	return &GeoJSONRepository{
		path:         path,
		nameProperty: nameProperty,
		logger:       logger.Get(),
	}
}

// geojson mapping structs covering only the parts of the format we consume.

type geojsonFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geojsonFeature `json:"features"`
}

type geojsonFeature struct {
	Properties map[string]interface{} `json:"properties"`
	Geometry   geojsonGeometry        `json:"geometry"`
}

type geojsonGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Load reads and decodes the boundary dataset. Features with an unsupported
// geometry type or a missing name property are skipped with a warning rather
// than failing the whole load.
func (r *GeoJSONRepository) Load(_ context.Context) ([]domain.Boundary, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary file: %w", err)
	}

	var fc geojsonFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode boundary file %s: %w", r.path, err)
	}

	boundaries := make([]domain.Boundary, 0, len(fc.Features))
	for _, feature := range fc.Features {
		name, _ := feature.Properties[r.nameProperty].(string)
		if name == "" {
			r.logger.Warn("Skipping boundary feature without name property",
				zap.String("property", r.nameProperty),
			)
			continue
		}

		polygons, err := decodeGeometry(feature.Geometry)
		if err != nil {
			r.logger.Warn("Skipping boundary feature with unsupported geometry",
				zap.String("region", name),
				zap.Error(err),
			)
			continue
		}

		boundaries = append(boundaries, domain.Boundary{
			Name:     name,
			Polygons: polygons,
		})
	}

	if len(boundaries) == 0 {
		return nil, fmt.Errorf("boundary file %s contains no usable features", r.path)
	}

	return boundaries, nil
}

// decodeGeometry converts Polygon and MultiPolygon geometries into domain
// polygons. GeoJSON positions are [longitude, latitude].
func decodeGeometry(g geojsonGeometry) ([]domain.Polygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("invalid Polygon coordinates: %w", err)
		}
		poly, err := toPolygon(rings)
		if err != nil {
			return nil, err
		}
		return []domain.Polygon{poly}, nil

	case "MultiPolygon":
		var parts [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &parts); err != nil {
			return nil, fmt.Errorf("invalid MultiPolygon coordinates: %w", err)
		}
		polygons := make([]domain.Polygon, 0, len(parts))
		for _, rings := range parts {
			poly, err := toPolygon(rings)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, poly)
		}
		return polygons, nil

	default:
		return nil, fmt.Errorf("geometry type %q not supported", g.Type)
	}
}

// toPolygon maps GeoJSON ring arrays onto a polygon: first ring exterior,
// the rest holes.
func toPolygon(rings [][][]float64) (domain.Polygon, error) {
	if len(rings) == 0 {
		return domain.Polygon{}, fmt.Errorf("polygon without rings")
	}

	converted := make([]domain.Ring, 0, len(rings))
	for _, ring := range rings {
		points := make(domain.Ring, 0, len(ring))
		for _, pos := range ring {
			if len(pos) < 2 {
				return domain.Polygon{}, fmt.Errorf("position with fewer than 2 ordinates")
			}
			points = append(points, domain.Point{Long: pos[0], Lat: pos[1]})
		}
		converted = append(converted, points)
	}

	return domain.Polygon{
		Exterior: converted[0],
		Holes:    converted[1:],
	}, nil
}
