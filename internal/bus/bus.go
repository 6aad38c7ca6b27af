// Package bus fans trip data out to in-process subscribers. It is the
// simulation's stand-in for a realtime transport: two channels, one carrying
// the full list of unmatched ride requests, one carrying per-trip updates.
package bus

import (
	"sync"

	"github.com/google/uuid"

	"rideshare/internal/models"
)

// RideRequestFunc receives the full current list of REQUESTED trips whenever
// it changes.
type RideRequestFunc func(trips []*models.Trip)

// TripUpdateFunc receives the latest trip record whenever the trip mutates.
// A nil trip signals cancellation (or that the trip never existed).
type TripUpdateFunc func(trip *models.Trip)

type Bus struct {
	mu           sync.RWMutex
	rideRequests map[uuid.UUID]RideRequestFunc
	tripUpdates  map[string]map[uuid.UUID]TripUpdateFunc

	// onTripIdle fires after a trip's last subscriber cancels. The store
	// uses it to shut down the trip's location simulator.
	onTripIdle func(tripID string)
}

func New() *Bus {
	return &Bus{
		rideRequests: make(map[uuid.UUID]RideRequestFunc),
		tripUpdates:  make(map[string]map[uuid.UUID]TripUpdateFunc),
	}
}

// OnTripIdle registers the hook invoked when a trip's subscriber count drops
// to zero. Must be set before subscriptions are handed out. The hook runs on
// the goroutine that cancelled the last subscription, which may itself be a
// delivery goroutine, so the hook must not wait on in-flight deliveries.
func (b *Bus) OnTripIdle(fn func(tripID string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTripIdle = fn
}

// SubscribeRideRequests registers a callback for ride-request broadcasts and
// returns its disposer. The disposer removes exactly this registration and is
// safe to call more than once.
func (b *Bus) SubscribeRideRequests(fn RideRequestFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	token := uuid.New()
	b.rideRequests[token] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.rideRequests, token)
	}
}

// SubscribeTrip registers a callback for one trip's updates.
func (b *Bus) SubscribeTrip(tripID string, fn TripUpdateFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.tripUpdates[tripID]
	if !ok {
		subs = make(map[uuid.UUID]TripUpdateFunc)
		b.tripUpdates[tripID] = subs
	}
	token := uuid.New()
	subs[token] = fn

	return func() {
		b.mu.Lock()
		subs, ok := b.tripUpdates[tripID]
		if !ok {
			b.mu.Unlock()
			return
		}
		if _, present := subs[token]; !present {
			b.mu.Unlock()
			return
		}
		delete(subs, token)
		idle := len(subs) == 0
		if idle {
			delete(b.tripUpdates, tripID)
		}
		hook := b.onTripIdle
		b.mu.Unlock()

		if idle && hook != nil {
			hook(tripID)
		}
	}
}

// PublishRideRequests delivers the request list to every ride-request
// subscriber.
func (b *Bus) PublishRideRequests(trips []*models.Trip) {
	b.mu.RLock()
	callbacks := make([]RideRequestFunc, 0, len(b.rideRequests))
	for _, fn := range b.rideRequests {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(trips)
	}
}

// PublishTrip delivers the trip record (or nil on cancellation) to that
// trip's subscribers.
func (b *Bus) PublishTrip(tripID string, trip *models.Trip) {
	b.mu.RLock()
	subs := b.tripUpdates[tripID]
	callbacks := make([]TripUpdateFunc, 0, len(subs))
	for _, fn := range subs {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(trip)
	}
}

// TripSubscribers reports the number of live subscriptions for a trip.
func (b *Bus) TripSubscribers(tripID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tripUpdates[tripID])
}
