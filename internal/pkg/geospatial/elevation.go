package geospatial

import "github.com/jortega/routesketch/internal/core/domain"

// ElevationChange sums the signed deltas between consecutive non-nil
// elevation samples of a profile. Gain is >= 0 and loss <= 0. Samples with
// a nil elevation are skipped entirely: a gap in the profile is not a
// change, so the delta bridges to the next real reading.
func ElevationChange(samples []domain.ElevationSample) (gain, loss float64) {
	var prev *float64
	for _, s := range samples {
		if s.ElevationMeters == nil {
			continue
		}
		if prev != nil {
			delta := *s.ElevationMeters - *prev
			if delta > 0 {
				gain += delta
			} else {
				loss += delta
			}
		}
		prev = s.ElevationMeters
	}
	return gain, loss
}
