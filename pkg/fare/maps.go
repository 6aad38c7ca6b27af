package fare

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"googlemaps.github.io/maps"
)

// ErrUnavailable marks estimator failures that the service layer recovers
// from locally; it is never surfaced to a rider.
var ErrUnavailable = errors.New("fare estimator unavailable")

const (
	mapsBaseFare  = 20.0 // ZAR
	mapsRatePerKM = 5.0  // ZAR
)

// MapsEstimator prices a trip from the real road distance between the named
// places, via the Google Maps distance matrix.
type MapsEstimator struct {
	client *maps.Client
	region string
	now    func() time.Time
}

func NewMapsEstimator(apiKey string) (*MapsEstimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &MapsEstimator{
		client: client,
		region: "Thohoyandou, Limpopo, South Africa",
		now:    time.Now,
	}, nil
}

func (m *MapsEstimator) Estimate(ctx context.Context, pickup, dropoff string, shared bool) (*Estimate, error) {
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{pickup + ", " + m.region},
		Destinations: []string{dropoff + ", " + m.region},
	}

	resp, err := m.client.DistanceMatrix(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: distance matrix request failed: %v", ErrUnavailable, err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("%w: empty distance matrix response", ErrUnavailable)
	}
	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("%w: distance matrix status %s", ErrUnavailable, element.Status)
	}

	km := float64(element.Distance.Meters) / 1000
	fare := mapsBaseFare + mapsRatePerKM*km
	reasoning := fmt.Sprintf("Base fare R%.0f plus R%.0f/km over %.1f km.", mapsBaseFare, mapsRatePerKM, km)

	if isNightTime(m.now()) {
		fare = math.Round(fare * nightSurcharge)
		reasoning += " 5% night-time surcharge applied."
	}
	if shared {
		fare = math.Round(fare * sharedDiscount)
		reasoning += " 15% discount applied for shared ride."
	}

	return &Estimate{Fare: fare, Reasoning: reasoning}, nil
}
