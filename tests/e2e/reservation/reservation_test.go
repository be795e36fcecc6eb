//go:build e2e

package reservation_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"study-room-booking/internal/handler/dto/response"
	"study-room-booking/tests/common/builder"
	"study-room-booking/tests/common/dbtest"
	"study-room-booking/tests/common/httptest"
	"study-room-booking/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reservationsURL = "/api/reservations"
	reservationURL  = "/api/reservations/%s"
	extendURL       = "/api/reservations/%s/extend"
	availabilityURL = "/api/rooms/%s/availability?date=%s"
)

type ReservationSuite struct {
	e2e.SharedSuite
}

func (s *ReservationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReservationSuite))
}

func (s *ReservationSuite) create(body any, headers map[string]string) (*response.ReservationResponse, int) {
	t := s.T()
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, body, headers)
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		return nil, w.Code
	}
	var created response.ReservationResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
	return &created, w.Code
}

// =============================================================================
// TestCreateReservation
// =============================================================================

func (s *ReservationSuite) TestCreateReservation() {
	s.Run("Normal case: reservation is admitted with sequence numbers in order", func() {
		t := s.T()

		first, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)
		second, code := s.create(builder.NewReservationBuilder().WithRoom("2").
			WithRequester("Bob", "S002").BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)

		s.Equal(int64(1), first.SequenceNumber)
		s.Equal(int64(2), second.SequenceNumber)
		s.Equal("Alice-S001", first.RequesterLabel)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reservationURL, first.ID), nil)
		var fetched response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &fetched)

		if diff := cmp.Diff(*first, fetched, cmpopts.IgnoreFields(response.ReservationResponse{}, "CreatedAt", "UpdatedAt")); diff != "" {
			t.Errorf("stored reservation mismatch (-created +fetched):\n%s", diff)
		}
	})

	s.Run("Normal case: back-to-back slots do not conflict", func() {
		_, code := s.create(builder.NewReservationBuilder().WithSlot("09:00", "10:00").BuildCreateRequestDTO(), nil)
		s.Require().Equal(http.StatusCreated, code)
		_, code = s.create(builder.NewReservationBuilder().WithSlot("10:00", "11:00").BuildCreateRequestDTO(), nil)
		s.Equal(http.StatusCreated, code)
	})

	s.Run("Error case: overlapping room slot returns 409", func() {
		t := s.T()
		existing := dbtest.CreateTestReservation(t, s.DB, "2030-01-07", "1", "S999", "10:00", "12:00")

		reqBody := builder.NewReservationBuilder().WithSlot("09:30", "11:00").BuildCreateRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqBody)

		httptest.AssertErrorResponse(t, w, http.StatusConflict, "already booked")
		httptest.AssertErrorDetail(t, w, "kind", "RoomConflict")
		httptest.AssertErrorDetail(t, w, "conflictingId", existing.String())
		s.Equal(1, dbtest.CountReservations(t, s.DB))
	})

	s.Run("Error case: same requester in another room returns 409", func() {
		t := s.T()
		dbtest.CreateTestReservation(t, s.DB, "2030-01-07", "3", "S001", "10:00", "11:00")

		reqBody := builder.NewReservationBuilder().BuildCreateRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqBody)

		httptest.AssertErrorResponse(t, w, http.StatusConflict, "You already have")
		httptest.AssertErrorDetail(t, w, "kind", "UserConflict")
	})

	s.Run("Error case: rule violation returns 422 with reason", func() {
		t := s.T()
		reqBody := builder.NewReservationBuilder().WithDate("2030-01-06").BuildCreateRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqBody)

		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "closed")
		httptest.AssertErrorDetail(t, w, "reason", "ClosedDay")
		s.Equal(0, dbtest.CountReservations(t, s.DB))
	})
}

// =============================================================================
// TestConcurrentCreate - exactly one of N identical requests is admitted
// =============================================================================

func (s *ReservationSuite) TestConcurrentCreate() {
	t := s.T()
	const n = 10

	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reqBody := builder.NewReservationBuilder().
				WithRequester("Student", fmt.Sprintf("C%03d", i)).
				BuildCreateRequestDTO()
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqBody)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for code := range codes {
		counts[code]++
	}
	s.Equal(1, counts[http.StatusCreated], "exactly one request should be admitted: %v", counts)
	s.Equal(n-1, counts[http.StatusConflict], "the rest should conflict: %v", counts)
	s.Equal(1, dbtest.CountReservations(t, s.DB))
}

// =============================================================================
// TestIdempotentCreate
// =============================================================================

func (s *ReservationSuite) TestIdempotentCreate() {
	t := s.T()
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	reqBody := builder.NewReservationBuilder().BuildCreateRequestDTO()

	first, code := s.create(reqBody, headers)
	require.Equal(t, http.StatusCreated, code)

	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, reqBody, headers)
	require.Equal(t, http.StatusOK, w.Code)
	httptest.AssertHeaders(t, w, map[string]string{"Idempotent-Replayed": "true"})

	var replayed response.ReservationResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &replayed))
	s.Equal(first.ID, replayed.ID)
	s.Equal(1, dbtest.CountReservations(t, s.DB))

	other := builder.NewReservationBuilder().WithRoom("3").WithSlot("13:00", "15:00").
		WithRequester("Bob", "S002").BuildCreateRequestDTO()
	w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, reservationsURL, other, headers)
	httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "different request")
	s.Empty(w.Header().Get("Idempotent-Replayed"))
	s.Equal(1, dbtest.CountReservations(t, s.DB))
}

// =============================================================================
// TestListReservations
// =============================================================================

func (s *ReservationSuite) TestListReservations() {
	t := s.T()
	for _, b := range []*builder.ReservationBuilder{
		builder.NewReservationBuilder(),
		builder.NewReservationBuilder().WithRoom("2").WithRequester("Bob", "S002"),
		builder.NewReservationBuilder().WithDate("2030-01-08").WithRequester("Carol", "S003"),
	} {
		_, code := s.create(b.BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)
	}

	w := httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL+"?limit=2", nil)
	var page response.ReservationListResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &page)
	require.Len(t, page.Reservations, 2)
	require.NotEmpty(t, page.NextCursor)
	s.Equal("1", page.Reservations[0].Room)
	s.Equal("2", page.Reservations[1].Room)
	s.Equal("Active", page.Reservations[0].Status)

	w = httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL+"?limit=2&after="+page.NextCursor, nil)
	var rest response.ReservationListResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &rest)
	require.Len(t, rest.Reservations, 1)
	s.Equal("2030-01-08", rest.Reservations[0].Date)
	s.Empty(rest.NextCursor)

	w = httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL+"?after=garbage", nil)
	httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid cursor")
}

// =============================================================================
// TestExtendReservation
// =============================================================================

func (s *ReservationSuite) TestExtendReservation() {
	s.Run("Error case: cannot extend before the end time", func() {
		t := s.T()
		created, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)

		s.Clock.Set(time.Date(2030, 1, 7, 10, 30, 0, 0, time.UTC))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(extendURL, created.ID), nil)

		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "")
		httptest.AssertErrorDetail(t, w, "reason", "TooEarlyToExtend")
	})

	s.Run("Normal case: end time moves back two hours after it has passed", func() {
		t := s.T()
		created, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)

		s.Clock.Set(time.Date(2030, 1, 7, 11, 15, 0, 0, time.UTC))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(extendURL, created.ID), nil)

		var extended response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &extended)
		s.Equal("09:00", extended.TimeStart)
		s.Equal("13:00", extended.TimeEnd)
		s.Equal(created.SequenceNumber, extended.SequenceNumber)
		s.Equal("Active", extended.Status)
	})

	s.Run("Error case: extension into another booking returns 409", func() {
		t := s.T()
		created, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)
		dbtest.CreateTestReservation(t, s.DB, "2030-01-07", "1", "S777", "12:00", "13:00")

		s.Clock.Set(time.Date(2030, 1, 7, 11, 15, 0, 0, time.UTC))
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reservationURL, created.ID), nil)
		var fetched response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &fetched)
		s.Equal("Expired", fetched.Status)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(extendURL, created.ID), nil)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")
		httptest.AssertErrorDetail(t, w, "kind", "RoomConflict")
	})
}

// =============================================================================
// TestUpdateAndDelete
// =============================================================================

func (s *ReservationSuite) TestUpdateAndDelete() {
	s.Run("Normal case: moving a reservation within its own slot is allowed", func() {
		t := s.T()
		created, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)

		w := httptest.PerformRequest(t, s.Router, http.MethodPut, fmt.Sprintf(reservationURL, created.ID),
			map[string]any{"timeStart": "10:00", "timeEnd": "12:00"})

		var updated response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &updated)
		s.Equal("10:00", updated.TimeStart)
		s.Equal(created.SequenceNumber, updated.SequenceNumber)
	})

	s.Run("Normal case: deleted reservation frees the slot", func() {
		t := s.T()
		created, code := s.create(builder.NewReservationBuilder().BuildCreateRequestDTO(), nil)
		require.Equal(t, http.StatusCreated, code)

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf(reservationURL, created.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(reservationURL, created.ID), nil)
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(availabilityURL, "1", "2030-01-07"), nil)
		var avail response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &avail)
		s.Empty(avail.Booked)
		s.Len(avail.Free, 1)
	})
}
