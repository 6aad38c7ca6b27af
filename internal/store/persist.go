package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"rideshare/internal/models"
	"rideshare/pkg/kvstore"
)

// load hydrates the in-memory collections from the durable adapter. Any
// failure degrades to the seed dataset; the engine must always come up.
func (s *Store) load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = s.loadUsers(ctx)
	s.trips = s.loadTrips(ctx)
	s.nextTripID = s.loadNextTripID(ctx)
}

func (s *Store) loadUsers(ctx context.Context) []*models.User {
	data, err := s.kv.Get(ctx, kvstore.KeyUsers)
	if errors.Is(err, kvstore.ErrNoKey) {
		users := seedUsers()
		if encoded, err := json.Marshal(users); err == nil {
			if err := s.kv.Set(ctx, kvstore.KeyUsers, encoded); err != nil {
				s.log.WithError(err).Error("Failed to persist seed users")
			}
		}
		return users
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to load users, using seed data")
		return seedUsers()
	}

	var users []*models.User
	if err := json.Unmarshal(data, &users); err != nil {
		s.log.WithError(err).Error("Failed to parse stored users, using seed data")
		return seedUsers()
	}
	return users
}

func (s *Store) loadTrips(ctx context.Context) []*models.Trip {
	data, err := s.kv.Get(ctx, kvstore.KeyTrips)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to load trips, starting empty")
		return nil
	}

	var trips []*models.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		s.log.WithError(err).Error("Failed to parse stored trips, starting empty")
		return nil
	}
	return trips
}

func (s *Store) loadNextTripID(ctx context.Context) int {
	data, err := s.kv.Get(ctx, kvstore.KeyNextTripID)
	if err == nil {
		if id, parseErr := strconv.Atoi(string(data)); parseErr == nil {
			return id
		}
	}

	// Derive from the highest stored trip id when the counter is missing.
	next := 1
	for _, trip := range s.trips {
		if id, err := strconv.Atoi(trip.ID); err == nil && id >= next {
			next = id + 1
		}
	}
	return next
}

// saveUsersLocked serializes the user directory, mock passwords included.
// Persistence failures are logged and swallowed; the in-memory state stays
// authoritative for the rest of the process. Caller holds s.mu.
func (s *Store) saveUsersLocked(ctx context.Context) {
	data, err := json.Marshal(s.users)
	if err != nil {
		s.log.WithError(err).Error("Failed to serialize users")
		return
	}
	if err := s.kv.Set(ctx, kvstore.KeyUsers, data); err != nil {
		s.log.WithError(err).Error("Failed to save users")
	}
}

// saveTripsLocked serializes the trip list together with the id counter.
// time.Time fields marshal as RFC 3339 and rehydrate to the same instant.
// Caller holds s.mu.
func (s *Store) saveTripsLocked(ctx context.Context) {
	data, err := json.Marshal(s.trips)
	if err != nil {
		s.log.WithError(err).Error("Failed to serialize trips")
		return
	}
	if err := s.kv.Set(ctx, kvstore.KeyTrips, data); err != nil {
		s.log.WithError(err).Error("Failed to save trips")
	}
	if err := s.kv.Set(ctx, kvstore.KeyNextTripID, []byte(strconv.Itoa(s.nextTripID))); err != nil {
		s.log.WithError(err).Error("Failed to save trip id counter")
	}
}
