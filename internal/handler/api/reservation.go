package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"study-room-booking/internal/domain/reservation"
	reqdto "study-room-booking/internal/handler/dto/request"
	resdto "study-room-booking/internal/handler/dto/response"
	"study-room-booking/internal/handler/httperr"
	"study-room-booking/internal/usecase/commands"
	"study-room-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey     = "Idempotency-Key"
	headerIdempotentReplayed = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 200
)

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary List reservations
// @Description List reservations ordered by date, start time and sequence number
// @Tags reservations
// @Produce json
// @Param date query string false "Reservation date (YYYY-MM-DD)"
// @Param room query string false "Room"
// @Param requesterId query string false "Requester ID"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param after query string false "Cursor from the previous page's nextCursor"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	var query reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	query = query.Trimmed()

	views, next, err := h.q.List(c.Request.Context(), query.ToFilter(), query.ToCursor(), query.Limit)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationPage(views, next))
}

// @Summary Get reservation
// @Description Get reservation by ID
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Create reservation
// @Description Validate, conflict-check and admit a reservation. A repeated Idempotency-Key replays the first result.
// @Tags reservations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Success 200 {object} resdto.ReservationResponse "Replayed result"
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	key := c.GetHeader(headerIdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("idempotency key too long"), "Invalid idempotency key", nil)
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), req.ToCandidate(), key)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}

	resp := h.respond(c, result.Reservation)
	c.Header("Location", "/api/reservations/"+resp.ID.String())
	if result.IsReplayed {
		c.Header(headerIdempotentReplayed, "true")
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Update reservation
// @Description Change fields of a reservation; omitted fields keep their stored values
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateReservationRequest true "Fields to change"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	updated, err := h.cmds.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respond(c, updated))
}

// @Summary Extend reservation
// @Description Push the end time back by the extension increment once the reservation has ended
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ExtendReservationRequest false "Optional increment"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/reservations/{id}/extend [post]
func (h *ReservationHandler) Extend(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.ExtendReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	extended, err := h.cmds.Extend(c.Request.Context(), id, time.Duration(req.IncrementHours)*time.Hour)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.respond(c, extended))
}

// @Summary Delete reservation
// @Description Remove a reservation
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), id); err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respond reads the written row back so the body carries its current status.
// The write already succeeded, so a failed read falls back to the row as written.
func (h *ReservationHandler) respond(c *gin.Context, res *reservation.Reservation) *resdto.ReservationResponse {
	view, err := h.q.GetByID(c.Request.Context(), res.ID())
	if err != nil {
		view = queries.ViewFromDomain(res)
	}
	return resdto.FromReservationView(view)
}
