// Package client holds the UI-facing state that mirrors what the store
// pushes: the signed-in user, the trip in flight, loading and connectivity
// flags. Everything it keeps is a copy; the store remains the source of
// truth and each push re-derives the visible state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"rideshare/internal/models"
	"rideshare/internal/store"
	"rideshare/pkg/kvstore"
	"rideshare/pkg/logger"
)

type Session struct {
	store *store.Store
	cache kvstore.KV
	log   *logger.Logger

	// reconnectWindow is how long the "just reconnected" banner flag stays
	// up after connectivity returns.
	reconnectWindow time.Duration

	mu              sync.Mutex
	authenticated   bool
	user            *models.User
	currentTrip     *models.Trip
	loading         bool
	lastError       string
	offline         bool
	justReconnected bool

	unsubscribe    func()
	reconnectTimer *time.Timer
}

// NewSession hydrates state from the cache before touching the store, so a
// restarted client renders instantly even offline. Unreadable cache entries
// degrade to empty state.
func NewSession(st *store.Store, cache kvstore.KV, log *logger.Logger, reconnectWindow time.Duration) *Session {
	s := &Session{
		store:           st,
		cache:           cache,
		log:             log,
		reconnectWindow: reconnectWindow,
	}

	ctx := context.Background()
	if user := readCached[models.User](ctx, s, kvstore.KeyUserCache); user != nil {
		s.user = user
		s.authenticated = true
	}
	if trip := readCached[models.Trip](ctx, s, kvstore.KeyTripCache); trip != nil {
		s.currentTrip = trip
	}
	return s
}

func readCached[T any](ctx context.Context, s *Session, key string) *T {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil
	}
	if err != nil {
		s.log.WithError(err).Warn("Failed to read cache, starting empty")
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.log.WithError(err).Warn("Failed to parse cache, starting empty")
		return nil
	}
	return &value
}

func (s *Session) writeCache(key string, value interface{}) {
	ctx := context.Background()
	if value == nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WithError(err).Warn("Failed to clear cache entry")
		}
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.WithError(err).Warn("Failed to serialize cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.log.WithError(err).Warn("Failed to write cache entry")
	}
}

// Snapshot is the state a view renders from.
type Snapshot struct {
	Authenticated   bool
	User            *models.User
	CurrentTrip     *models.Trip
	Loading         bool
	LastError       string
	Offline         bool
	JustReconnected bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Authenticated:   s.authenticated,
		User:            s.user.Clone(),
		CurrentTrip:     s.currentTrip.Clone(),
		Loading:         s.loading,
		LastError:       s.lastError,
		Offline:         s.offline,
		JustReconnected: s.justReconnected,
	}
}

func (s *Session) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Session) SetError(err error) {
	s.mu.Lock()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.loading = false
	s.mu.Unlock()
}

// LoginSuccess installs the signed-in user and caches them for offline boot.
func (s *Session) LoginSuccess(user *models.User) {
	s.mu.Lock()
	s.authenticated = true
	s.user = user.Clone()
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()

	s.writeCache(kvstore.KeyUserCache, user)
	s.resubscribe()
}

// UpdateUserDetails merges server-confirmed profile changes into the held
// copy and recaches it.
func (s *Session) UpdateUserDetails(user *models.User) {
	s.mu.Lock()
	s.user = user.Clone()
	s.mu.Unlock()
	s.writeCache(kvstore.KeyUserCache, user)
}

// Logout clears session state and every cache entry belonging to the user.
// Connectivity flags survive; the network did not change because the user
// signed out.
func (s *Session) Logout() {
	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.authenticated = false
	s.user = nil
	s.currentTrip = nil
	s.loading = false
	s.lastError = ""
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.writeCache(kvstore.KeyUserCache, nil)
	s.writeCache(kvstore.KeyTripCache, nil)
	if userID != "" {
		s.writeCache(kvstore.HistoryCacheKey(userID), nil)
	}
}

// SetTrip installs the current trip (nil clears it), caches it, and adjusts
// the trip-update subscription.
func (s *Session) SetTrip(trip *models.Trip) {
	s.mu.Lock()
	s.currentTrip = trip.Clone()
	s.mu.Unlock()

	if trip == nil {
		s.writeCache(kvstore.KeyTripCache, nil)
	} else {
		s.writeCache(kvstore.KeyTripCache, trip)
	}
	s.resubscribe()
}

// SetOffline flips the flag immediately. No cache mutation: the cached data
// is exactly what offline rendering needs.
func (s *Session) SetOffline() {
	s.mu.Lock()
	s.offline = true
	s.justReconnected = false
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// SetOnline flips the flag, raises the transient just-reconnected marker
// with its timed self-clear, resubscribes to the current trip and refreshes
// the history cache in the background.
func (s *Session) SetOnline() {
	s.mu.Lock()
	s.offline = false
	s.justReconnected = true
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
	}
	s.reconnectTimer = time.AfterFunc(s.reconnectWindow, func() {
		s.mu.Lock()
		s.justReconnected = false
		s.mu.Unlock()
	})
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.Unlock()

	s.resubscribe()
	if userID != "" {
		go func() {
			if err := s.RefreshHistory(context.Background()); err != nil {
				s.log.WithError(err).Warn("Failed to refresh trip history after reconnect")
			}
		}()
	}
}

// RefreshHistory refetches the user's finished trips from the store and
// recaches them for offline viewing.
func (s *Session) RefreshHistory(ctx context.Context) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	userID := s.user.ID
	s.mu.Unlock()

	history, err := s.store.TripHistory(ctx, userID)
	if err != nil {
		return err
	}
	s.writeCache(kvstore.HistoryCacheKey(userID), history)
	return nil
}

// CachedHistory returns the last history snapshot written for the signed-in
// user, for offline rendering.
func (s *Session) CachedHistory() []*models.Trip {
	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.Unlock()
	if userID == "" {
		return nil
	}

	history := readCached[[]*models.Trip](context.Background(), s, kvstore.HistoryCacheKey(userID))
	if history == nil {
		return nil
	}
	return *history
}

// resubscribe reconciles the trip-update subscription with the current
// state: subscribed exactly when online with a trip in flight. Offline
// sessions deliberately do not listen; acting on stale pushes is worse than
// waiting for the refetch that reconnection triggers.
func (s *Session) resubscribe() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	wantTripID := ""
	if !s.offline && s.currentTrip != nil {
		wantTripID = s.currentTrip.ID
	}
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if wantTripID == "" {
		return
	}

	handle := s.store.ListenForTripUpdates(wantTripID, s.handleTripUpdate)
	s.mu.Lock()
	if s.currentTrip == nil || s.currentTrip.ID != wantTripID {
		// The synchronous replay delivered nil: the cached trip was
		// already cancelled. There is nothing left to watch.
		s.mu.Unlock()
		handle()
		return
	}
	s.unsubscribe = handle
	s.mu.Unlock()
}

// handleTripUpdate is the trip-update callback. A nil trip means the trip
// was cancelled; the session drops it and stops listening.
func (s *Session) handleTripUpdate(trip *models.Trip) {
	s.mu.Lock()
	s.currentTrip = trip.Clone()
	var unsub func()
	if trip == nil {
		unsub = s.unsubscribe
		s.unsubscribe = nil
	}
	s.mu.Unlock()

	if trip == nil {
		s.writeCache(kvstore.KeyTripCache, nil)
		if unsub != nil {
			unsub()
		}
		return
	}
	s.writeCache(kvstore.KeyTripCache, trip)
}
