// Package pagecache provides short-lived memoization for scraped admin
// pages and the device lists derived from them. Entries carry their own
// expiry; a read past expiry is a miss and regenerates the value.
package pagecache

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long a fetched admin page (and anything derived
// from it) stays good before the router is asked again.
const DefaultTTL = 5 * time.Minute

type Store struct {
	db  *badger.DB
	now func() time.Time

	// one-directional invalidation cascade: invalidating a parent key
	// also drops every registered child key
	dependents map[string][]string
}

// NewStore opens an in-memory store using the wall clock.
func NewStore() (*Store, error) {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock opens an in-memory store with an injected clock,
// which makes TTL behavior deterministic under test.
func NewStoreWithClock(now func() time.Time) (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:         db,
		now:        now,
		dependents: map[string][]string{},
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DependsOn registers child so that invalidating parent also
// invalidates child. The cascade does not recurse. Re-registering the
// same edge is a no-op.
func (s *Store) DependsOn(child, parent string) {
	for _, existing := range s.dependents[parent] {
		if existing == child {
			return
		}
	}
	s.dependents[parent] = append(s.dependents[parent], child)
}

// Invalidate drops a key and its registered dependents immediately.
func (s *Store) Invalidate(key string) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if err := tx.Delete([]byte(key)); err != nil {
		return err
	}
	for _, child := range s.dependents[key] {
		if err := tx.Delete([]byte(child)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type envelope struct {
	Payload   []byte
	ExpiresAt int64
}

// GetOrCreate returns the cached value under key, calling produce to
// regenerate it when the key is absent or expired. A produce error is
// returned as-is and nothing is cached.
func GetOrCreate[T any](s *Store, key string, ttl time.Duration, produce func() (T, error)) (T, error) {
	var zero T

	cached, ok, err := read[T](s, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return cached, nil
	}

	value, err := produce()
	if err != nil {
		return zero, err
	}
	if err := write(s, key, value, ttl); err != nil {
		return zero, err
	}
	return value, nil
}

func read[T any](s *Store, key string) (T, bool, error) {
	var zero T

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		return zero, false, err
	}

	var env envelope
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&env)
	if err != nil {
		return zero, false, err
	}

	if s.now().Unix() >= env.ExpiresAt {
		// expired entries read as misses; dropping them here keeps the
		// store from accreting stale pages
		del := s.db.NewTransaction(true)
		defer del.Discard()
		if err := del.Delete([]byte(key)); err == nil {
			_ = del.Commit()
		}
		return zero, false, nil
	}

	var value T
	err = gob.NewDecoder(bytes.NewBuffer(env.Payload)).Decode(&value)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func write[T any](s *Store, key string, value T, ttl time.Duration) error {
	payload := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(payload).Encode(&value); err != nil {
		return err
	}

	serialized := bytes.NewBuffer(nil)
	err := gob.NewEncoder(serialized).Encode(envelope{
		Payload:   payload.Bytes(),
		ExpiresAt: s.now().Add(ttl).Unix(),
	})
	if err != nil {
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	if err := tx.Set([]byte(key), serialized.Bytes()); err != nil {
		return err
	}
	return tx.Commit()
}
