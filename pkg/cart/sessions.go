package cart

import (
	"context"
	"sync"
	"time"
)

// LocalStoreFactory scopes device-local storage to one device.
type LocalStoreFactory func(deviceID string) LocalStore

type entry struct {
	store    *Store
	lastSeen time.Time
	inUse    int // requests holding the entry; guarded by Sessions.mu

	// serializes requests from one device
	mu sync.Mutex
}

// Sessions keeps one cart Store per device.
type Sessions struct {
	newLocal LocalStoreFactory
	remote   RemoteStore
	syncer   *Syncer

	mu     sync.Mutex
	stores map[string]*entry
	now    func() time.Time
}

// NewSessions returns an empty registry sharing remote and syncer across devices.
func NewSessions(newLocal LocalStoreFactory, remote RemoteStore, syncer *Syncer) *Sessions {
	return &Sessions{
		newLocal: newLocal,
		remote:   remote,
		syncer:   syncer,
		stores:   make(map[string]*entry),
		now:      time.Now,
	}
}

// Get returns the cart of deviceID, opening it on first use.
func (s *Sessions) Get(ctx context.Context, deviceID string) (*Store, error) {
	e, err := s.open(ctx, deviceID, false)
	if err != nil {
		return nil, err
	}
	return e.store, nil
}

func (s *Sessions) open(ctx context.Context, deviceID string, hold bool) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.stores[deviceID]
	if !ok {
		st, err := New(ctx, s.newLocal(deviceID), s.remote, s.syncer)
		if err != nil {
			return nil, err
		}
		e = &entry{store: st}
		s.stores[deviceID] = e
	}
	e.lastSeen = s.now()
	if hold {
		e.inUse++
	}
	return e, nil
}

// Acquire returns the cart of deviceID switched to userID, or to the guest
// cart when userID is empty. The device is held until release is called, so
// concurrent requests from one device never see each other's identity.
func (s *Sessions) Acquire(ctx context.Context, deviceID, userID string) (st *Store, release func(), err error) {
	e, err := s.open(ctx, deviceID, true)
	if err != nil {
		return nil, nil, err
	}
	e.mu.Lock()
	release = func() {
		e.mu.Unlock()
		s.mu.Lock()
		e.inUse--
		e.lastSeen = s.now()
		s.mu.Unlock()
	}

	if userID == "" {
		err = e.store.Logout(ctx)
	} else {
		_, err = e.store.Login(ctx, userID)
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return e.store, release, nil
}

// Prune forgets devices idle for longer than idle, skipping devices with a
// request in flight. Their carts stay in device storage and are reopened on
// the next request.
func (s *Sessions) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	n := 0
	for id, e := range s.stores {
		if e.inUse == 0 && e.lastSeen.Before(cutoff) {
			delete(s.stores, id)
			n++
		}
	}
	return n
}

// Len is the number of open device carts.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
