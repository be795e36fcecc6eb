//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/infra"
	"study-room-booking/internal/infra/repository"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/shared"
	"study-room-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ret := m.Called(ctx, sql, args)
	rows, _ := ret.Get(0).(pgx.Rows)
	return rows, ret.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("mockDBTX.QueryRow was called unexpectedly")
}

func isLock(sql string) bool {
	return sql == "SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))"
}

// =============================================================================
// Update / Delete
// =============================================================================

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	res := builder.NewReservationBuilder().BuildDomain()

	testCases := []struct {
		name       string
		tag        pgconn.CommandTag
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: row updated", tag: pgconn.NewCommandTag("UPDATE 1")},
		{name: "error: row missing", tag: pgconn.NewCommandTag("UPDATE 0"), expectKind: infra.KindNotFound},
		{name: "error: database error occurs", execErr: errors.New("connection reset"), expectKind: infra.KindDBFailure},
		{
			name:       "error: exclusion constraint",
			execErr:    &pgconn.PgError{Code: "23P01", ConstraintName: infra.ConstraintRoomOverlap},
			expectKind: infra.KindConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := &mockDBTX{}
			db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(tc.tag, tc.execErr).Once()

			err := repository.NewReservationRepository(db).Update(ctx, res)

			if tc.expectKind == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tc.expectKind), "expected kind [%v] but got [%T] (%v)", tc.expectKind, err, err)
			}
			db.AssertExpectations(t)

			args := db.Calls[0].Arguments.Get(2).([]any)
			assert.Equal(t, res.ID(), args[0], "id is the first positional argument")
			assert.Len(t, args, 12)
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success: row deleted", func(t *testing.T) {
		db := &mockDBTX{}
		db.On("Exec", ctx, "DELETE FROM reservations WHERE id = $1", []any{id}).Return(pgconn.NewCommandTag("DELETE 1"), nil).Once()

		require.NoError(t, repository.NewReservationRepository(db).Delete(ctx, id))
		db.AssertExpectations(t)
	})

	t.Run("error: not found maps to the use case category", func(t *testing.T) {
		db := &mockDBTX{}
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil).Once()

		err := repository.NewReservationRepository(db).Delete(ctx, id)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})
}

// =============================================================================
// Locks and reads
// =============================================================================

func TestRepository_Lock(t *testing.T) {
	ctx := context.Background()
	date := reservation.NewDate(2030, 1, 7)
	keys := shared.AdmissionLockKeys("1", "S001", date)

	t.Run("success: locks are taken in the given order", func(t *testing.T) {
		db := &mockDBTX{}
		db.On("Exec", ctx, mock.MatchedBy(isLock), mock.Anything).Return(pgconn.NewCommandTag("SELECT 1"), nil).Twice()

		require.NoError(t, repository.NewReservationRepository(db).Lock(ctx, keys...))
		require.Len(t, db.Calls, 2)
		assert.Equal(t, []any{keys[0]}, db.Calls[0].Arguments.Get(2))
		assert.Equal(t, []any{keys[1]}, db.Calls[1].Arguments.Get(2))
	})

	t.Run("error: lock wait cancelled", func(t *testing.T) {
		db := &mockDBTX{}
		db.On("Exec", ctx, mock.MatchedBy(isLock), mock.Anything).Return(pgconn.CommandTag{}, context.DeadlineExceeded).Once()

		err := repository.NewReservationRepository(db).Lock(ctx, keys...)
		assert.True(t, infra.IsKind(err, infra.KindTimeout))
		assert.Len(t, db.Calls, 1)
	})
}

func TestRepository_Insert_SequenceLockFirst(t *testing.T) {
	ctx := context.Background()
	db := &mockDBTX{}
	db.On("Exec", ctx, mock.MatchedBy(isLock), []any{repository.SequenceLockKey}).Return(pgconn.NewCommandTag("SELECT 1"), nil).Once()
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := repository.NewReservationRepository(db).Insert(ctx, builder.NewReservationBuilder().BuildDraft(), builder.NewReservationBuilder().CreatedAt)

	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	db.AssertExpectations(t)
	assert.Equal(t, "Exec", db.Calls[0].Method)
}

func TestRepository_Find_QueryError(t *testing.T) {
	ctx := context.Background()
	db := &mockDBTX{}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil, &pgconn.PgError{Code: "57014"}).Once()

	_, err := repository.NewReservationRepository(db).Find(ctx, shared.ReservationFilter{Room: "1"})

	assert.True(t, infra.IsKind(err, infra.KindTimeout))
	assert.True(t, errs.Is(err, errs.ErrStorageUnavailable))
}
