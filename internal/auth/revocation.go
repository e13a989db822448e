// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Session revocation tracks the jti of logged-out tokens until their natural
// expiry. Tokens are stateless, so this store is the only server-side state
// a logout produces.

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Aldrich0129/automation-suite/internal/logging"
)

var (
	// revocationOpsTotal counts revocation store operations.
	revocationOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_revocation_operations_total",
			Help: "Total number of session revocation store operations",
		},
		[]string{"operation", "outcome"},
	)

	// revokedSessionsGauge tracks the current number of revoked sessions held.
	revokedSessionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_revocation_store_size",
			Help: "Current number of revoked session IDs held",
		},
	)
)

// ErrRevocationStoreClosed indicates the store has been closed.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// revokedEntry is the stored record for one revoked session.
type revokedEntry struct {
	JTI       string    `json:"jti"`
	Username  string    `json:"username,omitempty"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevocationStore tracks revoked session IDs until token expiry.
type RevocationStore interface {
	// Revoke marks a jti as revoked for the given TTL. Revoking an
	// already-revoked jti is a no-op.
	Revoke(ctx context.Context, jti, username string, ttl time.Duration) error

	// IsRevoked reports whether a jti has been revoked and not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// CleanupExpired removes expired entries, returning the count removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// MemoryRevocationStore keeps revocations in process memory. Logged-out
// sessions come back to life on restart, so this is only for tests and
// explicitly configured ephemeral deployments.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]revokedEntry
	closed  bool
}

// NewMemoryRevocationStore creates an in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]revokedEntry)}
}

// Revoke marks a jti as revoked.
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		revocationOpsTotal.WithLabelValues("revoke", "failure").Inc()
		return ErrRevocationStoreClosed
	}

	now := time.Now()
	s.entries[jti] = revokedEntry{
		JTI:       jti,
		Username:  username,
		RevokedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	revocationOpsTotal.WithLabelValues("revoke", "success").Inc()
	revokedSessionsGauge.Set(float64(len(s.entries)))
	return nil
}

// IsRevoked reports whether a jti is currently revoked.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrRevocationStoreClosed
	}

	entry, ok := s.entries[jti]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return false, nil
	}
	return true, nil
}

// CleanupExpired removes expired entries.
func (s *MemoryRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrRevocationStoreClosed
	}

	count := 0
	now := time.Now()
	for jti, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, jti)
			count++
		}
	}

	revocationOpsTotal.WithLabelValues("cleanup", "success").Inc()
	revokedSessionsGauge.Set(float64(len(s.entries)))
	return count, nil
}

// Close closes the store.
func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// BadgerRevocationStore persists revocations in BadgerDB so logouts survive
// restarts. Badger's native TTL handles expiry; CleanupExpired exists as a
// forced sweep for tests and metrics.
type BadgerRevocationStore struct {
	db     *badger.DB
	prefix []byte
	mu     sync.RWMutex
	closed bool
}

// revocationKeyPrefix namespaces revocation keys in the shared Badger DB.
const revocationKeyPrefix = "revoked:"

// OpenBadgerRevocationStore opens (or creates) a Badger database at path and
// wraps it as a revocation store. The returned store owns the DB handle.
func OpenBadgerRevocationStore(path string) (*BadgerRevocationStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is noisy; errors surface via returns
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return NewBadgerRevocationStore(db), nil
}

// NewBadgerRevocationStore wraps an existing Badger DB.
func NewBadgerRevocationStore(db *badger.DB) *BadgerRevocationStore {
	return &BadgerRevocationStore{
		db:     db,
		prefix: []byte(revocationKeyPrefix),
	}
}

func (s *BadgerRevocationStore) makeKey(jti string) []byte {
	return append(append([]byte{}, s.prefix...), []byte(jti)...)
}

// Revoke marks a jti as revoked.
func (s *BadgerRevocationStore) Revoke(_ context.Context, jti, username string, ttl time.Duration) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		revocationOpsTotal.WithLabelValues("revoke", "failure").Inc()
		return ErrRevocationStoreClosed
	}
	s.mu.RUnlock()

	now := time.Now()
	entry := revokedEntry{
		JTI:       jti,
		Username:  username,
		RevokedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.makeKey(jti), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		revocationOpsTotal.WithLabelValues("revoke", "failure").Inc()
		return err
	}

	revocationOpsTotal.WithLabelValues("revoke", "success").Inc()
	return nil
}

// IsRevoked reports whether a jti is currently revoked.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false, ErrRevocationStoreClosed
	}
	s.mu.RUnlock()

	var revoked bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var entry revokedEntry
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			revoked = time.Now().Before(entry.ExpiresAt)
			return nil
		})
	})

	return revoked, err
}

// CleanupExpired removes entries whose TTL has lapsed but which compaction
// has not yet dropped.
func (s *BadgerRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, ErrRevocationStoreClosed
	}
	s.mu.RUnlock()

	count := 0
	now := time.Now()

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var entry revokedEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			if now.After(entry.ExpiresAt) {
				key := make([]byte, len(item.Key()))
				copy(key, item.Key())
				stale = append(stale, key)
			}
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})

	if err != nil {
		revocationOpsTotal.WithLabelValues("cleanup", "failure").Inc()
		return count, err
	}

	revocationOpsTotal.WithLabelValues("cleanup", "success").Inc()
	return count, nil
}

// Close closes the store and the underlying database.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// NewRevocationStore selects a backend from configuration: a Badger store at
// path, or the in-memory store when path is empty.
func NewRevocationStore(path string) (RevocationStore, error) {
	if path == "" {
		logging.Warn().Msg("session revocation store is in-memory; logouts will not survive restarts")
		return NewMemoryRevocationStore(), nil
	}
	return OpenBadgerRevocationStore(path)
}

// StartRevocationCleanup runs a periodic forced sweep of expired entries.
// Returns a channel that stops the routine when closed.
func StartRevocationCleanup(store RevocationStore, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				count, err := store.CleanupExpired(ctx)
				cancel()

				if err != nil {
					logging.Error().Err(err).Msg("revocation cleanup failed")
				} else if count > 0 {
					logging.Debug().Int("count", count).Msg("revocation cleanup completed")
				}

			case <-done:
				return
			}
		}
	}()

	return done
}
