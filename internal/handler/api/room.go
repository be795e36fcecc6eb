package api

import (
	"net/http"

	resdto "study-room-booking/internal/handler/dto/response"
	"study-room-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	q queries.ReservationQueries
}

func NewRoomHandler(q queries.ReservationQueries) *RoomHandler {
	return &RoomHandler{q: q}
}

// @Summary List rooms
// @Tags rooms
// @Produce json
// @Success 200 {object} resdto.RoomsResponse
// @Router /api/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.RoomsResponse{Rooms: h.q.Rooms(c.Request.Context())})
}

// @Summary Room availability
// @Description Booked and free slots of a room within the day's operating hours
// @Tags rooms
// @Produce json
// @Param room path string true "Room"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/rooms/{room}/availability [get]
func (h *RoomHandler) Availability(c *gin.Context) {
	view, err := h.q.Availability(c.Request.Context(), c.Param("room"), c.Query("date"))
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}
