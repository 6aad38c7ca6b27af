package fare

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Pricing rules for the mock student taxi service, in rand (ZAR).
const (
	localBaseFare   = 20.0
	localFareSpread = 50
	nightSurcharge  = 1.05
	sharedDiscount  = 0.85
)

// LocalEstimator produces a plausible random fare. It stands in for the
// external estimator whenever that is unconfigured or unreachable.
type LocalEstimator struct {
	Rand *rand.Rand
	Now  func() time.Time
}

func NewLocalEstimator() *LocalEstimator {
	return &LocalEstimator{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:  time.Now,
	}
}

func (l *LocalEstimator) Estimate(ctx context.Context, pickup, dropoff string, shared bool) (*Estimate, error) {
	fare := localBaseFare + float64(l.Rand.Intn(localFareSpread))
	reasoning := "Locally computed fare based on a randomized distance estimate."

	if isNightTime(l.Now()) {
		fare = math.Round(fare * nightSurcharge)
		reasoning += " 5% night-time surcharge applied."
	}
	if shared {
		fare = math.Round(fare * sharedDiscount)
		reasoning += " 15% discount applied for shared ride."
	}

	return &Estimate{Fare: fare, Reasoning: reasoning}, nil
}

// Night runs from 22:00 to 06:00.
func isNightTime(now time.Time) bool {
	hour := now.Hour()
	return hour >= 22 || hour < 6
}
