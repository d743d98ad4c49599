package pipeline

import (
	"time"

	"github.com/couchcryptid/quake-feed-publisher/internal/domain"
)

// QuakeNormalizer implements Normalizer by converting report times into a
// fixed display timezone.
type QuakeNormalizer struct {
	loc *time.Location
}

// NewNormalizer creates a QuakeNormalizer. A nil loc keeps times in UTC.
func NewNormalizer(loc *time.Location) *QuakeNormalizer {
	return &QuakeNormalizer{loc: loc}
}

func (n *QuakeNormalizer) Normalize(raw domain.RawItem) (domain.EarthquakeEvent, error) {
	return domain.Normalize(raw, n.loc)
}
