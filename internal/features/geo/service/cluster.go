package service

import "manifest-dispatcher/internal/features/geo/domain"

const (
	// DefaultNeighborhoodKm is the density-clustering neighborhood radius.
	DefaultNeighborhoodKm = 5.0
	// DefaultMinClusterSize of 1 means every point gets a label: isolated
	// stops form singleton clusters rather than noise.
	DefaultMinClusterSize = 1

	// Noise labels points that are neither core nor reachable from one.
	// Unreachable with a minimum cluster size of 1.
	Noise = -1

	unclassified = -2
)

// ClusterLabels assigns a density-based cluster label to every point, using
// great-circle distance. The algorithm is DBSCAN: a point with at least
// minPoints neighbors (itself included) within neighborhoodKm seeds a
// cluster, which grows through density-connected neighbors.
//
// Labels are deterministic for a given point ordering: clusters are numbered
// 0, 1, 2, ... in first-seed order.
func ClusterLabels(points []domain.Point, neighborhoodKm float64, minPoints int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unclassified
	}

	cluster := 0
	for i := range points {
		if labels[i] != unclassified {
			continue
		}

		neighbors := neighborsOf(points, i, neighborhoodKm)
		if len(neighbors) < minPoints {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		queue := append([]int(nil), neighbors...)
		for qi := 0; qi < len(queue); qi++ {
			n := queue[qi]

			if labels[n] == Noise {
				// Border point reached from a core point.
				labels[n] = cluster
			}
			if labels[n] != unclassified {
				continue
			}
			labels[n] = cluster

			expansion := neighborsOf(points, n, neighborhoodKm)
			if len(expansion) >= minPoints {
				queue = append(queue, expansion...)
			}
		}

		cluster++
	}

	return labels
}

// neighborsOf returns the indices of every point within radiusKm of point i,
// including i itself.
func neighborsOf(points []domain.Point, i int, radiusKm float64) []int {
	var neighbors []int
	for j := range points {
		if domain.HaversineKm(points[i], points[j]) <= radiusKm {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
