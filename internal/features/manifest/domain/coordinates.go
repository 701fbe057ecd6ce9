package domain

import (
	"strconv"
	"strings"
)

const (
	latMarker  = "LAT:"
	longMarker = "LONG:"
)

// ParseCoordinates parses a manifest coordinate cell of the form
// "LAT: <float> LONG: <float>". Malformed input is tolerated: missing
// markers or non-numeric payloads return ok=false, never an error, and the
// owning row is dropped later in the pipeline.
func ParseCoordinates(s string) (lat, long float64, ok bool) {
	if !strings.Contains(s, latMarker) || !strings.Contains(s, longMarker) {
		return 0, 0, false
	}

	parts := strings.SplitN(s, longMarker, 2)

	latText := strings.TrimSpace(strings.Replace(parts[0], latMarker, "", 1))
	longText := strings.TrimSpace(parts[1])

	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return 0, 0, false
	}

	long, err = strconv.ParseFloat(longText, 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, long, true
}
