// Package memstore is an in-memory test fake for the reservation store. It
// honours the same transaction and locking contract as the Postgres store so
// use case suites can exercise locking without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/infra"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const sequenceLockKey = "reservation|sequence"

type Store struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]*reservation.Reservation
	locks *keyedLocks

	faultMu sync.Mutex
	delay   time.Duration
	fault   error
}

func New() *Store {
	return &Store{
		rows:  make(map[uuid.UUID]*reservation.Reservation),
		locks: newKeyedLocks(),
	}
}

// SetDelay makes every store call wait d first, giving up when the context ends.
func (s *Store) SetDelay(d time.Duration) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.delay = d
}

// FailWith makes every store call return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = err
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store) gate(ctx context.Context) error {
	s.faultMu.Lock()
	delay, fault := s.delay, s.fault
	s.faultMu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return infra.WrapRepoErr(infra.KindTimeout, "store call timed out", ctx.Err())
		}
	}
	if fault != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "store call failed", fault)
	}
	if err := ctx.Err(); err != nil {
		return infra.WrapRepoErr(infra.KindTimeout, "store call timed out", err)
	}
	return nil
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := s.gate(ctx); err != nil {
		return err
	}
	tx := &memTx{
		store:   s,
		staged:  make(map[uuid.UUID]*reservation.Reservation),
		deleted: make(map[uuid.UUID]bool),
		held:    make(map[string]bool),
	}
	defer tx.releaseAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := s.gate(ctx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, r shared.ReservationReader) error) error {
	if err := s.gate(ctx); err != nil {
		return err
	}
	return fn(ctx, &memTx{store: s})
}

// snapshot returns committed rows overlaid with tx's staged writes.
func (s *Store) snapshot(tx *memTx) []*reservation.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*reservation.Reservation, 0, len(s.rows)+len(tx.staged))
	for id, r := range s.rows {
		if tx.deleted[id] {
			continue
		}
		if staged, ok := tx.staged[id]; ok {
			out = append(out, staged)
			continue
		}
		out = append(out, r)
	}
	for id, r := range tx.staged {
		if _, committed := s.rows[id]; !committed {
			out = append(out, r)
		}
	}
	return out
}

func matches(r *reservation.Reservation, f shared.ReservationFilter) bool {
	switch {
	case f.ExcludeID != uuid.Nil && r.ID() == f.ExcludeID:
		return false
	case !f.Date.IsZero() && !r.Date().Equal(f.Date):
		return false
	case f.Room != "" && r.Room() != f.Room:
		return false
	case f.RequesterID != "" && r.RequesterID() != f.RequesterID:
		return false
	case f.After != nil && !after(shared.PositionOf(r), *f.After):
		return false
	}
	return true
}

func after(p, q shared.ListPosition) bool {
	if !p.Date.Equal(q.Date) {
		return q.Date.Before(p.Date)
	}
	if p.Start != q.Start {
		return p.Start > q.Start
	}
	return p.SequenceNumber > q.SequenceNumber
}

// sortReservations orders by date, start time, then sequence number.
func sortReservations(rs []*reservation.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if !a.Date().Equal(b.Date()) {
			return a.Date().Before(b.Date())
		}
		if a.Slot().Start != b.Slot().Start {
			return a.Slot().Start < b.Slot().Start
		}
		return a.SequenceNumber() < b.SequenceNumber()
	})
}
