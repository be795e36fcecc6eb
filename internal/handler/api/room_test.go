//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/handler/api"
	resdto "study-room-booking/internal/handler/dto/response"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/queries"
	"study-room-booking/tests/common/httptest"
	queriesmock "study-room-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupRoomRouter(t *testing.T) (*gin.Engine, *queriesmock.MockReservationQueries) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	q := queriesmock.NewMockReservationQueries(ctrl)
	h := api.NewRoomHandler(q)

	r := gin.New()
	r.GET("/api/rooms", h.List)
	r.GET("/api/rooms/:room/availability", h.Availability)
	return r, q
}

func TestRoomHandler_List(t *testing.T) {
	router, q := setupRoomRouter(t)
	q.EXPECT().Rooms(gomock.Any()).Return([]string{"1", "2", "3", "4"})

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/rooms", nil)

	var body resdto.RoomsResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
	assert.Equal(t, []string{"1", "2", "3", "4"}, body.Rooms)
}

func TestRoomHandler_Availability(t *testing.T) {
	t.Run("returns booked and free slots", func(t *testing.T) {
		router, q := setupRoomRouter(t)
		booked := uuid.New()
		q.EXPECT().Availability(gomock.Any(), "2", "2030-01-07").Return(&queries.AvailabilityView{
			Room:   "2",
			Date:   "2030-01-07",
			Open:   "08:00",
			Close:  "18:00",
			Booked: []queries.SlotView{{Start: "10:00", End: "12:00", ReservationID: &booked}},
			Free:   []queries.SlotView{{Start: "08:00", End: "10:00"}, {Start: "12:00", End: "18:00"}},
		}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/rooms/2/availability?date=2030-01-07", nil)

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		require.Len(t, body.Booked, 1)
		require.NotNil(t, body.Booked[0].ReservationID)
		assert.Equal(t, booked, *body.Booked[0].ReservationID)
		assert.Len(t, body.Free, 2)
		assert.Equal(t, "12:00", body.Free[1].Start)
	})

	t.Run("closed day has no slots", func(t *testing.T) {
		router, q := setupRoomRouter(t)
		q.EXPECT().Availability(gomock.Any(), "1", "2030-01-06").
			Return(&queries.AvailabilityView{Room: "1", Date: "2030-01-06", Closed: true}, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/rooms/1/availability?date=2030-01-06", nil)

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.True(t, body.Closed)
		assert.Empty(t, body.Booked)
		assert.Empty(t, body.Free)
	})

	t.Run("unknown room is a validation error", func(t *testing.T) {
		router, q := setupRoomRouter(t)
		q.EXPECT().Availability(gomock.Any(), "9", gomock.Any()).
			Return(nil, reservation.NewValidationError(reservation.ReasonUnknownRoom, "room"))

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/rooms/9/availability?date=2030-01-07", nil)

		httptest.AssertErrorResponse(t, rec, http.StatusUnprocessableEntity, "does not exist")
		httptest.AssertErrorDetail(t, rec, "reason", "UnknownRoom")
	})

	t.Run("storage failure is 503", func(t *testing.T) {
		router, q := setupRoomRouter(t)
		q.EXPECT().Availability(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errors.New("down"), errs.ErrStorageUnavailable))

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/rooms/1/availability?date=2030-01-07", nil)
		httptest.AssertErrorResponse(t, rec, http.StatusServiceUnavailable, "temporarily unavailable")
	})
}
