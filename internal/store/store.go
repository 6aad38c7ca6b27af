// Package store is the in-process mock backend: the user directory, the trip
// collection and its state machine, the subscription surface and the driver
// location simulator. All records live in memory and are serialized to a
// key-value adapter after every mutation, the way the browser original kept
// its arrays in localStorage.
package store

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rideshare/internal/bus"
	"rideshare/internal/models"
	"rideshare/pkg/kvstore"
	"rideshare/pkg/logger"
)

type Config struct {
	// Latency is the artificial round-trip applied to every operation.
	// Keep it nonzero: calling code is expected to cope with slow
	// responses, and racy callers only show up when responses take time.
	Latency time.Duration

	// Simulator tuning.
	SimInterval     time.Duration
	SimStepFraction float64
	SimEpsilon      float64

	// AdminEmail is the account RemoveUser refuses to delete.
	AdminEmail string

	// Now and Rand are injectable for deterministic tests.
	Now  func() time.Time
	Rand *rand.Rand

	// Matcher assembles co-passengers for shared rides.
	Matcher Matcher
}

func (c *Config) applyDefaults() {
	if c.Latency == 0 {
		c.Latency = 500 * time.Millisecond
	}
	if c.SimInterval == 0 {
		c.SimInterval = 2 * time.Second
	}
	if c.SimStepFraction == 0 {
		c.SimStepFraction = 0.1
	}
	if c.SimEpsilon == 0 {
		c.SimEpsilon = 0.00001
	}
	if c.AdminEmail == "" {
		c.AdminEmail = seedAdminEmail
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Matcher == nil {
		c.Matcher = &RandomMatcher{Rand: c.Rand}
	}
}

// Store owns every User and Trip record. Everything it returns is a deep
// copy; mutation only happens through its operations.
type Store struct {
	cfg *Config
	kv  kvstore.KV
	bus *bus.Bus
	log *logger.Logger

	mu         sync.Mutex
	users      []*models.User
	trips      []*models.Trip
	nextTripID int

	simMu sync.Mutex
	sims  map[string]*simulator
}

// New builds a store around the given durable adapter, hydrating state from
// it. Missing or unreadable stored data is logged and replaced by the seed
// dataset, never surfaced as an error.
func New(cfg *Config, kv kvstore.KV, log *logger.Logger) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()

	s := &Store{
		cfg:  cfg,
		kv:   kv,
		bus:  bus.New(),
		log:  log,
		sims: make(map[string]*simulator),
	}
	s.bus.OnTripIdle(s.releaseSimulator)
	s.load(context.Background())
	return s
}

// Close stops every running location simulator.
func (s *Store) Close() {
	s.simMu.Lock()
	running := make([]*simulator, 0, len(s.sims))
	for _, sim := range s.sims {
		running = append(running, sim)
	}
	s.sims = make(map[string]*simulator)
	s.simMu.Unlock()

	for _, sim := range running {
		sim.stop()
	}
}

// pause simulates the network round-trip every operation pays. It is the
// only suspension point; cancellation of the context aborts the call before
// any state is touched.
func (s *Store) pause(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) now() time.Time {
	return s.cfg.Now()
}

// requestedTripsLocked snapshots the REQUESTED trips for a ride-request
// broadcast. Caller holds s.mu.
func (s *Store) requestedTripsLocked() []*models.Trip {
	requested := make([]*models.Trip, 0)
	for _, trip := range s.trips {
		if trip.Status == models.TripStatusRequested {
			requested = append(requested, trip.Clone())
		}
	}
	return requested
}

func (s *Store) findTripLocked(tripID string) *models.Trip {
	for _, trip := range s.trips {
		if trip.ID == tripID {
			return trip
		}
	}
	return nil
}

func (s *Store) findUserByEmailLocked(email string) *models.User {
	for _, user := range s.users {
		if user.Email == email {
			return user
		}
	}
	return nil
}

func (s *Store) findUserByIDLocked(id string) *models.User {
	for _, user := range s.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}
