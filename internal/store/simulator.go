package store

import (
	"context"
	"time"

	"rideshare/internal/models"
)

// simulator is one cancellable scheduled task moving one trip's driver.
// quit asks it to stop; done confirms the goroutine has exited, which makes
// stop() synchronous: once stop returns, no further tick can publish.
type simulator struct {
	tripID string
	quit   chan struct{}
	done   chan struct{}
}

func (sim *simulator) stop() {
	close(sim.quit)
	<-sim.done
}

// startSimulator launches the movement loop for a trip. At most one
// simulator runs per trip id; a second start while one is live is a no-op,
// so racing AcceptTrip calls never double up timers.
func (s *Store) startSimulator(tripID string) {
	s.simMu.Lock()
	if _, running := s.sims[tripID]; running {
		s.simMu.Unlock()
		return
	}
	sim := &simulator{
		tripID: tripID,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.sims[tripID] = sim
	s.simMu.Unlock()

	s.log.WithTripID(tripID).Debug("Location simulator started")
	go s.runSimulator(sim)
}

// releaseSimulator signals a trip's simulator to exit without waiting for
// it. This is the bus idle hook: it runs on whatever goroutine dropped the
// last trip subscription, which can be the simulator's own goroutine
// mid-delivery, so it must never wait on done.
func (s *Store) releaseSimulator(tripID string) {
	s.simMu.Lock()
	sim, ok := s.sims[tripID]
	if ok {
		delete(s.sims, tripID)
	}
	s.simMu.Unlock()

	if !ok {
		return
	}
	close(sim.quit)
	s.log.WithTripID(tripID).Debug("Location simulator released")
}

// stopSimulator shuts a trip's simulator down and waits for it to exit.
// Safe to call when none is running.
func (s *Store) stopSimulator(tripID string) {
	s.simMu.Lock()
	sim, ok := s.sims[tripID]
	if ok {
		delete(s.sims, tripID)
	}
	s.simMu.Unlock()

	if !ok {
		return
	}
	sim.stop()
	s.log.WithTripID(tripID).Debug("Location simulator stopped")
}

// removeSimulator clears a self-terminated simulator from the registry,
// guarding against a concurrent stop having already replaced the entry.
func (s *Store) removeSimulator(tripID string, sim *simulator) {
	s.simMu.Lock()
	if current, ok := s.sims[tripID]; ok && current == sim {
		delete(s.sims, tripID)
	}
	s.simMu.Unlock()
}

func (s *Store) runSimulator(sim *simulator) {
	defer close(sim.done)

	ticker := time.NewTicker(s.cfg.SimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sim.quit:
			return
		case <-ticker.C:
			// A release may have landed while a tick was pending.
			select {
			case <-sim.quit:
				return
			default:
			}
			if !s.stepTrip(sim.tripID) {
				s.removeSimulator(sim.tripID, sim)
				return
			}
		}
	}
}

// stepTrip advances the driver a fixed fraction of the remaining distance
// toward the current target waypoint: the pickup while ACCEPTED, the dropoff
// afterwards. Returns false when the simulator should die: trip gone, driver
// position gone, or trip already terminal.
func (s *Store) stepTrip(tripID string) bool {
	ctx := context.Background()

	s.mu.Lock()
	trip := s.findTripLocked(tripID)
	if trip == nil || trip.DriverLocation == nil || trip.Status.Terminal() {
		s.mu.Unlock()
		return false
	}

	targetName := trip.DropoffLocation
	if trip.Status == models.TripStatusAccepted {
		targetName = trip.PickupLocation
	}
	target, known := models.Waypoints[targetName]
	if !known {
		// Nothing to steer toward; keep idling in place.
		s.mu.Unlock()
		return true
	}

	next := trip.DriverLocation.StepToward(target, s.cfg.SimStepFraction)
	if next.DistanceTo(target) <= s.cfg.SimEpsilon {
		// Close enough; skip the update to avoid jitter at the target.
		s.mu.Unlock()
		return true
	}

	trip.DriverLocation = &next
	s.saveTripsLocked(ctx)
	updated := trip.Clone()
	s.mu.Unlock()

	s.bus.PublishTrip(tripID, updated)
	return true
}

// SimulatorRunning reports whether a trip currently has a live simulator.
func (s *Store) SimulatorRunning(tripID string) bool {
	s.simMu.Lock()
	defer s.simMu.Unlock()
	_, ok := s.sims[tripID]
	return ok
}
