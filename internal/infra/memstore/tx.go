package memstore

import (
	"context"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/infra"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// memTx stages writes and applies them at commit. It is used by one goroutine.
type memTx struct {
	store   *Store
	staged  map[uuid.UUID]*reservation.Reservation
	deleted map[uuid.UUID]bool
	held    map[string]bool
	order   []string
}

func (t *memTx) Reservations() shared.ReservationRepository { return t }

func (t *memTx) Lock(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := t.lock(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) lock(ctx context.Context, key string) error {
	if t.held == nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "lock requested outside a write transaction", nil)
	}
	if t.held[key] {
		return nil
	}
	if err := t.store.locks.acquire(ctx, key); err != nil {
		return infra.WrapRepoErr(infra.KindTimeout, "lock wait cancelled", err)
	}
	t.held[key] = true
	t.order = append(t.order, key)
	return nil
}

func (t *memTx) releaseAll() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.store.locks.release(t.order[i])
	}
	t.order = nil
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id := range t.deleted {
		delete(t.store.rows, id)
	}
	for id, r := range t.staged {
		t.store.rows[id] = r
	}
}

func (t *memTx) Find(ctx context.Context, f shared.ReservationFilter) ([]*reservation.Reservation, error) {
	if err := t.store.gate(ctx); err != nil {
		return nil, err
	}
	var out []*reservation.Reservation
	for _, r := range t.store.snapshot(t) {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *memTx) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := t.store.gate(ctx); err != nil {
		return nil, err
	}
	if t.deleted[id] {
		return nil, notFound(id)
	}
	if r, ok := t.staged[id]; ok {
		return r, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	r, ok := t.store.rows[id]
	if !ok {
		return nil, notFound(id)
	}
	return r, nil
}

func (t *memTx) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := t.lock(ctx, "row|"+id.String()); err != nil {
		return nil, err
	}
	return t.FindByID(ctx, id)
}

func (t *memTx) Insert(ctx context.Context, draft reservation.Draft, at time.Time) (*reservation.Reservation, error) {
	if err := t.store.gate(ctx); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, sequenceLockKey); err != nil {
		return nil, err
	}
	var maxSeq int64
	for _, r := range t.store.snapshot(t) {
		maxSeq = max(maxSeq, r.SequenceNumber())
	}
	res := reservation.ReconstructReservation(uuid.New(), maxSeq+1, draft, at, at)
	if err := t.checkExclusion(res); err != nil {
		return nil, err
	}
	t.staged[res.ID()] = res
	return res, nil
}

func (t *memTx) Update(ctx context.Context, res *reservation.Reservation) error {
	if err := t.store.gate(ctx); err != nil {
		return err
	}
	if _, err := t.FindByID(ctx, res.ID()); err != nil {
		return err
	}
	if err := t.checkExclusion(res); err != nil {
		return err
	}
	t.staged[res.ID()] = res
	return nil
}

func (t *memTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.FindByIDForUpdate(ctx, id); err != nil {
		return err
	}
	delete(t.staged, id)
	t.deleted[id] = true
	return nil
}

// checkExclusion mirrors the Postgres exclusion constraints so a caller that
// skipped the conflict checks still cannot store an overlap.
func (t *memTx) checkExclusion(res *reservation.Reservation) error {
	for _, other := range t.store.snapshot(t) {
		if other.ID() == res.ID() || !other.Date().Equal(res.Date()) || !other.Slot().Overlaps(res.Slot()) {
			continue
		}
		if other.Room() == res.Room() {
			return infra.WrapConstraintErr(infra.ConstraintRoomOverlap, nil)
		}
		if other.RequesterID() == res.RequesterID() {
			return infra.WrapConstraintErr(infra.ConstraintRequesterOverlap, nil)
		}
	}
	return nil
}

func notFound(id uuid.UUID) error {
	return infra.WrapRepoErr(infra.KindNotFound, "reservation "+id.String()+" not found", nil)
}
