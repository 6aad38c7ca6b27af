package store

import (
	"math/rand"
	"time"

	"rideshare/internal/models"
	"rideshare/pkg/kvstore"
	"rideshare/pkg/logger"
)

// testConfig keeps the artificial latency and tick interval small but
// nonzero, so call ordering still matters without slowing the suite.
func testConfig() *Config {
	return &Config{
		Latency:     2 * time.Millisecond,
		SimInterval: 10 * time.Millisecond,
		Now:         func() time.Time { return time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC) },
		Rand:        rand.New(rand.NewSource(42)),
	}
}

func newTestStore(kv kvstore.KV, cfg *Config) *Store {
	if kv == nil {
		kv = kvstore.NewMemoryStore()
	}
	if cfg == nil {
		cfg = testConfig()
	}
	return New(cfg, kv, logger.NewNop())
}

// fixedMatcher returns the same co-passengers every time.
type fixedMatcher struct {
	passengers []models.Passenger
}

func (m *fixedMatcher) SelectCoPassengers([]*models.User, string) []models.Passenger {
	return m.passengers
}

func tripRequestFor(customer *models.User) TripRequest {
	return TripRequest{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Pickup:        "Thavhani Mall",
		Dropoff:       "Univen Library",
		Fare:          42,
		PaymentMethod: models.PaymentMethodCash,
	}
}
