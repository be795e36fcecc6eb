package infra

import (
	"context"
	"errors"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind       RepositoryErrorKind
	Constraint string
	msg        string
	err        error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Is maps kinds onto the category markers the use cases branch on.
func (e RepositoryError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == errs.ErrNotFound
	case KindDBFailure, KindTimeout:
		return target == errs.ErrStorageUnavailable
	}
	return false
}

func WrapRepoErr(kind RepositoryErrorKind, msg string, err error) error {
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindTimeout            RepositoryErrorKind = "TIMEOUT"
	KindConflict           RepositoryErrorKind = "CONFLICT"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
)

// Exclusion constraints declared in migrations/001_initial_schema.sql.
const (
	ConstraintRoomOverlap      = "reservations_room_no_overlap"
	ConstraintRequesterOverlap = "reservations_requester_no_overlap"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeExclusionViolation  = "23P01"
	pgErrCodeQueryCanceled       = "57014"
	pgErrCodeLockNotAvailable    = "55P03"
)

// WrapConstraintErr turns an overlap constraint hit into a ConflictError the use
// cases already understand.
func WrapConstraintErr(constraint string, err error) error {
	kind := reservation.ConflictRoom
	if constraint == ConstraintRequesterOverlap {
		kind = reservation.ConflictUser
	}
	return RepositoryError{
		Kind:       KindConflict,
		Constraint: constraint,
		msg:        "overlap rejected by " + constraint,
		err:        errors.Join(&reservation.ConflictError{Kind: kind}, err),
	}
}

// ClassifyPgError picks a RepositoryError kind for an error returned by pgx.
func ClassifyPgError(msg string, err error) error {
	if err == nil {
		return nil
	}
	if pgconv.IsNoRows(err) {
		return WrapRepoErr(KindNotFound, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return WrapRepoErr(KindTimeout, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeExclusionViolation:
			return WrapConstraintErr(pgErr.ConstraintName, err)
		case pgErrCodeUniqueViolation:
			return RepositoryError{Kind: KindDuplicateKey, Constraint: pgErr.ConstraintName, msg: msg, err: err}
		case pgErrCodeForeignKeyViolation:
			return RepositoryError{Kind: KindForeignKeyViolated, Constraint: pgErr.ConstraintName, msg: msg, err: err}
		case pgErrCodeQueryCanceled, pgErrCodeLockNotAvailable:
			return WrapRepoErr(KindTimeout, msg, err)
		}
	}
	return WrapRepoErr(KindDBFailure, msg, err)
}
