//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/infra/memstore"
	"study-room-booking/internal/pkg/clock"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/commands"
	"study-room-booking/internal/usecase/queries"
	"study-room-booking/internal/usecase/shared"
	"study-room-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	clock *clock.MockClock
	cmds  commands.ReservationCommands
	q     queries.ReservationQueries
}

func newFixture() *fixture {
	rules := reservation.DefaultRules()
	rules.Location = time.UTC
	store := memstore.New()
	policy := shared.StorePolicy{Timeout: time.Second}
	clk := clock.NewMockClock(time.Date(2030, 1, 5, 10, 0, 0, 0, time.UTC))
	return &fixture{
		ctx:   context.Background(),
		store: store,
		clock: clk,
		cmds:  commands.NewReservationCommands(store, nil, clk, rules, policy, nil),
		q:     queries.NewReservationQueries(store, clk, rules, policy, nil),
	}
}

func (f *fixture) seed(t *testing.T, bs ...*builder.ReservationBuilder) []*reservation.Reservation {
	t.Helper()
	out := make([]*reservation.Reservation, len(bs))
	for i, b := range bs {
		res, err := f.cmds.Create(f.ctx, b.BuildCandidate(), "")
		require.NoError(t, err)
		out[i] = res.Reservation
	}
	return out
}

func TestReservationQueries_List(t *testing.T) {
	f := newFixture()
	seeded := f.seed(t,
		builder.NewReservationBuilder().WithRoom("2").WithSlot("13:00", "14:00"),
		builder.NewReservationBuilder().WithRoom("1").WithSlot("09:00", "10:00").WithRequester("Bob", "S002"),
		builder.NewReservationBuilder().WithDate("2030-01-08").WithRequester("Carol", "S003"),
	)

	t.Run("日付、開始時刻、採番順に並ぶ", func(t *testing.T) {
		views, next, err := f.q.List(f.ctx, queries.ListFilter{}, nil, 0)
		require.NoError(t, err)
		assert.Nil(t, next)

		got := make([]uuid.UUID, len(views))
		for i, v := range views {
			got[i] = v.ID
		}
		want := []uuid.UUID{seeded[1].ID(), seeded[0].ID(), seeded[2].ID()}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("絞り込み", func(t *testing.T) {
		views, _, err := f.q.List(f.ctx, queries.ListFilter{Date: "2030-01-07", Room: "2"}, nil, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)

		want := &queries.ReservationView{
			ID:                      seeded[0].ID(),
			SequenceNumber:          1,
			Date:                    "2030-01-07",
			Room:                    "2",
			RequesterName:           "Alice",
			RequesterID:             "S001",
			RequesterLabel:          "Alice-S001",
			TimeStart:               "13:00",
			TimeEnd:                 "14:00",
			PersonCount:             3,
			Purpose:                 "Group study",
			CleanlinessAcknowledged: true,
			Status:                  "Active",
		}
		if diff := cmp.Diff(want, views[0], cmpopts.IgnoreFields(queries.ReservationView{}, "CreatedAt", "UpdatedAt")); diff != "" {
			t.Errorf("view mismatch (-want +got):\n%s", diff)
		}

		views, _, err = f.q.List(f.ctx, queries.ListFilter{RequesterID: "S003"}, nil, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, seeded[2].ID(), views[0].ID)
	})

	t.Run("不正な日付はValidationError", func(t *testing.T) {
		_, _, err := f.q.List(f.ctx, queries.ListFilter{Date: "tomorrow"}, nil, 0)
		assert.True(t, errs.Is(err, errs.ErrValidation))
	})

	t.Run("件数上限ごとにカーソルで続きを取得する", func(t *testing.T) {
		first, next, err := f.q.List(f.ctx, queries.ListFilter{}, nil, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.NotNil(t, next)
		assert.Equal(t, seeded[1].ID(), first[0].ID)
		assert.Equal(t, seeded[0].ID(), first[1].ID)

		rest, next, err := f.q.List(f.ctx, queries.ListFilter{}, next, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, seeded[2].ID(), rest[0].ID)
		assert.Nil(t, next)
	})

	t.Run("カーソルは絞り込みと併用できる", func(t *testing.T) {
		page, next, err := f.q.List(f.ctx, queries.ListFilter{Date: "2030-01-07"}, nil, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.NotNil(t, next)

		page, next, err = f.q.List(f.ctx, queries.ListFilter{Date: "2030-01-07"}, next, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, seeded[0].ID(), page[0].ID)
		assert.Nil(t, next)
	})

	t.Run("壊れたカーソルはErrInvalidCursor", func(t *testing.T) {
		_, _, err := f.q.List(f.ctx, queries.ListFilter{}, &queries.Cursor{After: "not-a-cursor"}, 0)
		assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
		assert.False(t, errs.Is(err, errs.ErrStorageUnavailable))
	})
}

func TestReservationQueries_Status(t *testing.T) {
	f := newFixture()
	seeded := f.seed(t,
		builder.NewReservationBuilder(),
		builder.NewReservationBuilder().WithSlot("12:00", "13:00").WithRequester("Bob", "S002"),
		builder.NewReservationBuilder().WithRoom("2").WithRequester("Carol", "S003"),
	)
	statuses := func(t *testing.T) map[uuid.UUID]string {
		t.Helper()
		views, _, err := f.q.List(f.ctx, queries.ListFilter{}, nil, 0)
		require.NoError(t, err)
		out := make(map[uuid.UUID]string, len(views))
		for _, v := range views {
			out[v.ID] = v.Status
		}
		return out
	}

	t.Run("開始前はすべてActive", func(t *testing.T) {
		for _, s := range statuses(t) {
			assert.Equal(t, "Active", s)
		}
	})

	t.Run("終了後は延長枠の空きで分かれる", func(t *testing.T) {
		f.clock.Set(time.Date(2030, 1, 7, 11, 0, 0, 0, time.UTC))

		got := statuses(t)
		assert.Equal(t, "Expired", got[seeded[0].ID()], "room 1 is booked from 12:00")
		assert.Equal(t, "Active", got[seeded[1].ID()])
		assert.Equal(t, "Extendable", got[seeded[2].ID()])

		view, err := f.q.GetByID(f.ctx, seeded[2].ID())
		require.NoError(t, err)
		assert.Equal(t, "Extendable", view.Status)
	})

	t.Run("翌日以降はExpired", func(t *testing.T) {
		f.clock.Set(time.Date(2030, 1, 8, 9, 0, 0, 0, time.UTC))

		for id, s := range statuses(t) {
			assert.Equal(t, "Expired", s, id.String())
		}
	})
}

func TestReservationQueries_GetByID(t *testing.T) {
	f := newFixture()
	seeded := f.seed(t, builder.NewReservationBuilder())

	t.Run("取得できる", func(t *testing.T) {
		view, err := f.q.GetByID(f.ctx, seeded[0].ID())
		require.NoError(t, err)
		assert.Equal(t, "09:00", view.TimeStart)
		assert.Equal(t, "Active", view.Status)
	})

	t.Run("存在しないIDはNotFound", func(t *testing.T) {
		_, err := f.q.GetByID(f.ctx, uuid.New())
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})

	t.Run("ストア障害はStorageUnavailable", func(t *testing.T) {
		f.store.FailWith(errors.New("boom"))
		defer f.store.FailWith(nil)

		_, err := f.q.GetByID(f.ctx, seeded[0].ID())
		assert.True(t, errs.Is(err, errs.ErrStorageUnavailable))
	})
}

func TestReservationQueries_Availability(t *testing.T) {
	f := newFixture()
	seeded := f.seed(t,
		builder.NewReservationBuilder().WithSlot("10:00", "12:00"),
		builder.NewReservationBuilder().WithSlot("14:00", "15:00").WithRequester("Bob", "S002"),
		builder.NewReservationBuilder().WithRoom("2").WithRequester("Carol", "S003"),
	)

	t.Run("予約済みと空き枠", func(t *testing.T) {
		view, err := f.q.Availability(f.ctx, "1", "2030-01-07")
		require.NoError(t, err)

		first, second := seeded[0].ID(), seeded[1].ID()
		want := &queries.AvailabilityView{
			Room:  "1",
			Date:  "2030-01-07",
			Open:  "08:00",
			Close: "18:00",
			Booked: []queries.SlotView{
				{Start: "10:00", End: "12:00", ReservationID: &first},
				{Start: "14:00", End: "15:00", ReservationID: &second},
			},
			Free: []queries.SlotView{
				{Start: "08:00", End: "10:00"},
				{Start: "12:00", End: "14:00"},
				{Start: "15:00", End: "18:00"},
			},
		}
		if diff := cmp.Diff(want, view); diff != "" {
			t.Errorf("availability mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("休館日", func(t *testing.T) {
		view, err := f.q.Availability(f.ctx, "1", "2030-01-06")
		require.NoError(t, err)
		assert.True(t, view.Closed)
		assert.Empty(t, view.Free)
	})

	t.Run("存在しない部屋", func(t *testing.T) {
		_, err := f.q.Availability(f.ctx, "7", "2030-01-07")
		var verr *reservation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, reservation.ReasonUnknownRoom, verr.Reason)
	})

	t.Run("部屋一覧", func(t *testing.T) {
		assert.Equal(t, []string{"1", "2", "3", "4"}, f.q.Rooms(f.ctx))
	})
}
