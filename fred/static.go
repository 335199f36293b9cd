package fred

import (
	"context"
	"fmt"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
)

// StaticFetcher serves series from an in-memory map. Used in tests and
// offline runs against pre-downloaded data.
type StaticFetcher struct {
	Series map[string]*timeseries.Monthly
}

func NewStaticFetcher(series map[string]*timeseries.Monthly) *StaticFetcher {
	return &StaticFetcher{Series: series}
}

// Fetch returns the requested series sliced to [from, to].
func (s *StaticFetcher) Fetch(_ context.Context, seriesIDs []string, from, to time.Time) (map[string]*timeseries.Monthly, error) {
	out := make(map[string]*timeseries.Monthly, len(seriesIDs))
	for _, id := range seriesIDs {
		full, exists := s.Series[id]
		if !exists {
			return nil, fmt.Errorf("series %s not registered, %w", id, ErrDataUnavailable)
		}
		window := full.Slice(from, to)
		if window.Len() == 0 {
			return nil, fmt.Errorf("series %s has no observations in range, %w", id, ErrDataUnavailable)
		}
		out[id] = window
	}
	return out, nil
}
