package kvstore

import (
	"context"
	"errors"
)

// ErrNoKey is returned when a key has no stored value. Callers treat it as
// "no cache" and proceed with empty state.
var ErrNoKey = errors.New("key not found")

// KV is the durable key-value adapter the engine persists through. It is the
// in-process counterpart of a browser's local storage: a handful of stable
// keys, each holding one serialized blob.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Well-known keys for the engine's durable records.
const (
	KeyUsers      = "rideshare_users"
	KeyTrips      = "rideshare_trips"
	KeyNextTripID = "rideshare_nextTripId"
)

// Client cache keys. The signed-in user and their current trip live under
// fixed keys; trip history is cached per user.
const (
	KeyUserCache = "rideshare_user_cache"
	KeyTripCache = "rideshare_trip_cache"
)

func HistoryCacheKey(userID string) string { return "rideshare_history_cache:" + userID }
