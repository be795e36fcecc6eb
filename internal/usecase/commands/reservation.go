package commands

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/commands/reservation.go -package=commandsmock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/clock"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/pkg/patch"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationResult struct {
	Reservation *reservation.Reservation
	IsReplayed  bool
}

// UpdatePatch carries the fields to change; nil keeps the stored value.
type UpdatePatch struct {
	Date                    *string
	Room                    *string
	RequesterName           *string
	RequesterID             *string
	TimeStart               *string
	TimeEnd                 *string
	PersonCount             *int
	Purpose                 *string
	Remark                  *string
	CleanlinessAcknowledged *bool
}

type ReservationCommands interface {
	Create(ctx context.Context, in reservation.Candidate, idempotencyKey string) (*CreateReservationResult, error)
	Update(ctx context.Context, id uuid.UUID, p UpdatePatch) (*reservation.Reservation, error)
	Extend(ctx context.Context, id uuid.UUID, increment time.Duration) (*reservation.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow    shared.UnitOfWork
	idem   IdempotencyStore
	clock  clock.Clock
	rules  reservation.Rules
	policy shared.StorePolicy
	logger *slog.Logger
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	idem IdempotencyStore,
	clk clock.Clock,
	rules reservation.Rules,
	policy shared.StorePolicy,
	logger *slog.Logger,
) ReservationCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationCommandsImpl{
		uow:    uow,
		idem:   idem,
		clock:  clk,
		rules:  rules,
		policy: policy,
		logger: logger,
	}
}

func (uc *reservationCommandsImpl) Create(ctx context.Context, in reservation.Candidate, idempotencyKey string) (*CreateReservationResult, error) {
	key := idempotencyKey
	var fingerprint string
	if key != "" && uc.idem != nil {
		fp, err := requestFingerprint(in)
		if err != nil {
			return nil, errs.Wrap(err, "fingerprint create request")
		}
		fingerprint = fp

		prevID, err := uc.idem.Begin(ctx, key, fingerprint)
		switch {
		case errs.IsAny(err, errs.ErrIdempotencyInProgress, errs.ErrIdempotencyKeyMismatch):
			return nil, err
		case err != nil:
			uc.logger.Warn("idempotency store unavailable, continuing without replay protection",
				"idempotency_key", key, "error", err.Error())
			key = ""
		case prevID != uuid.Nil:
			prev, ferr := uc.load(ctx, prevID)
			if ferr != nil {
				return nil, ferr
			}
			return &CreateReservationResult{Reservation: prev, IsReplayed: true}, nil
		}
	}

	created, err := uc.admit(ctx, in)
	if key != "" && uc.idem != nil {
		uc.finishIdempotency(ctx, key, fingerprint, created, err)
	}
	if err != nil {
		return nil, err
	}
	return &CreateReservationResult{Reservation: created}, nil
}

func (uc *reservationCommandsImpl) admit(ctx context.Context, in reservation.Candidate) (*reservation.Reservation, error) {
	now := uc.clock.Now()
	draft, err := reservation.Validate(in, now, uc.rules, reservation.ValidateOptions{})
	if err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	err = uc.runWrite(ctx, "create reservation", draftAttrs(draft), func(ctx context.Context, tx shared.Tx) error {
		if lerr := tx.Lock(ctx, shared.AdmissionLockKeys(draft.Room, draft.RequesterID, draft.Date)...); lerr != nil {
			return lerr
		}
		repo := tx.Reservations()
		if cerr := checkConflicts(ctx, repo, draft, uuid.Nil); cerr != nil {
			return cerr
		}
		res, ierr := repo.Insert(ctx, draft, now)
		if ierr != nil {
			return ierr
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("reservation created",
		"id", created.ID().String(),
		"sequence_number", created.SequenceNumber(),
		"room", created.Room(),
		"date", created.Date().String(),
		"slot", created.Slot().String())
	return created, nil
}

func (uc *reservationCommandsImpl) finishIdempotency(ctx context.Context, key, fingerprint string, created *reservation.Reservation, createErr error) {
	if createErr != nil || created == nil {
		if err := uc.idem.Release(ctx, key); err != nil {
			uc.logger.Warn("failed to release idempotency key", "idempotency_key", key, "error", err.Error())
		}
		return
	}
	if err := uc.idem.Complete(ctx, key, fingerprint, created.ID()); err != nil {
		uc.logger.Warn("failed to record idempotency result", "idempotency_key", key, "error", err.Error())
	}
}

func (uc *reservationCommandsImpl) Update(ctx context.Context, id uuid.UUID, p UpdatePatch) (*reservation.Reservation, error) {
	var updated *reservation.Reservation
	err := uc.runRowWrite(ctx, "update reservation", id, func(ctx context.Context, tx shared.Tx, current *reservation.Reservation) error {
		repo := tx.Reservations()
		now := uc.clock.Now()
		draft, err := reservation.Validate(applyPatch(current.Candidate(), p), now, uc.rules,
			reservation.ValidateOptions{SkipAdvanceNotice: true})
		if err != nil {
			return err
		}
		if err = tx.Lock(ctx, shared.AdmissionLockKeys(draft.Room, draft.RequesterID, draft.Date)...); err != nil {
			return err
		}
		if err = checkConflicts(ctx, repo, draft, id); err != nil {
			return err
		}

		next := reservation.ReconstructReservation(id, current.SequenceNumber(), draft, current.CreatedAt(), now)
		if err = repo.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *reservationCommandsImpl) Extend(ctx context.Context, id uuid.UUID, increment time.Duration) (*reservation.Reservation, error) {
	if increment <= 0 {
		increment = uc.rules.ExtensionIncrement
	}

	var extended *reservation.Reservation
	err := uc.runRowWrite(ctx, "extend reservation", id, func(ctx context.Context, tx shared.Tx, current *reservation.Reservation) error {
		repo := tx.Reservations()
		now := uc.clock.Now()
		addition, err := current.ExtensionSlot(now, uc.rules, increment)
		if err != nil {
			return err
		}

		if err = tx.Lock(ctx, shared.AdmissionLockKeys(current.Room(), current.RequesterID(), current.Date())...); err != nil {
			return err
		}
		if err = checkRoomConflict(ctx, repo, current.Room(), current.Date(), addition, id); err != nil {
			return err
		}
		if err = checkUserConflict(ctx, repo, current.RequesterID(), current.Date(), addition, id); err != nil {
			return err
		}

		next := current.WithEnd(addition.End, now)
		if err = repo.Update(ctx, next); err != nil {
			return err
		}
		extended = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return extended, nil
}

func (uc *reservationCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.runRowWrite(ctx, "delete reservation", id, func(ctx context.Context, tx shared.Tx, _ *reservation.Reservation) error {
		return tx.Reservations().Delete(ctx, id)
	})
}

func (uc *reservationCommandsImpl) load(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	ctx, cancel := uc.policy.Context(ctx)
	defer cancel()

	var found *reservation.Reservation
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, r shared.ReservationReader) error {
		res, err := r.FindByID(ctx, id)
		found = res
		return err
	})
	if err != nil {
		return nil, shared.StoreError(ctx, uc.logger, "load reservation", err, idAttrs(id)...)
	}
	return found, nil
}

func (uc *reservationCommandsImpl) runWrite(ctx context.Context, op string, attrs []slog.Attr, fn func(ctx context.Context, tx shared.Tx) error) error {
	ctx, cancel := uc.policy.Context(ctx)
	defer cancel()
	return shared.StoreError(ctx, uc.logger, op, uc.uow.Within(ctx, fn), attrs...)
}

// runRowWrite locks and loads the reservation before fn runs. Storage failures
// after the load are logged with the row's room and date.
func (uc *reservationCommandsImpl) runRowWrite(
	ctx context.Context,
	op string,
	id uuid.UUID,
	fn func(ctx context.Context, tx shared.Tx, current *reservation.Reservation) error,
) error {
	ctx, cancel := uc.policy.Context(ctx)
	defer cancel()

	attrs := idAttrs(id)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reservations().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		attrs = append(attrs, rowAttrs(current)...)
		return fn(ctx, tx, current)
	})
	return shared.StoreError(ctx, uc.logger, op, err, attrs...)
}

// requestFingerprint identifies a create body for idempotency key reuse checks.
func requestFingerprint(in reservation.Candidate) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func applyPatch(c reservation.Candidate, p UpdatePatch) reservation.Candidate {
	c.Date = patch.Coalesce(p.Date, c.Date)
	c.Room = patch.Coalesce(p.Room, c.Room)
	c.RequesterName = patch.Coalesce(p.RequesterName, c.RequesterName)
	c.RequesterID = patch.Coalesce(p.RequesterID, c.RequesterID)
	c.TimeStart = patch.Coalesce(p.TimeStart, c.TimeStart)
	c.TimeEnd = patch.Coalesce(p.TimeEnd, c.TimeEnd)
	c.Purpose = patch.Coalesce(p.Purpose, c.Purpose)
	c.Remark = patch.Coalesce(p.Remark, c.Remark)
	c.CleanlinessAcknowledged = patch.Coalesce(p.CleanlinessAcknowledged, c.CleanlinessAcknowledged)
	if p.PersonCount != nil {
		c.PersonCount = p.PersonCount
	}
	return c
}

func draftAttrs(d reservation.Draft) []slog.Attr {
	return []slog.Attr{
		slog.String("room", d.Room),
		slog.String("date", d.Date.String()),
		slog.String("slot", d.Slot.String()),
	}
}

func rowAttrs(r *reservation.Reservation) []slog.Attr {
	return []slog.Attr{
		slog.String("room", r.Room()),
		slog.String("date", r.Date().String()),
		slog.String("slot", r.Slot().String()),
	}
}

func idAttrs(id uuid.UUID) []slog.Attr {
	return []slog.Attr{slog.String("reservation_id", id.String())}
}
