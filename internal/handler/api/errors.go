package api

import (
	"errors"
	"net/http"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/handler/httperr"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type validationDetail struct {
	Reason reservation.Reason `json:"reason"`
	Field  string             `json:"field,omitempty"`
}

type conflictDetail struct {
	Kind          reservation.ConflictKind `json:"kind"`
	ConflictingID *uuid.UUID               `json:"conflictingId,omitempty"`
	Slot          string                   `json:"slot,omitempty"`
}

// abortWithUsecaseError maps the use case error categories onto HTTP statuses.
func abortWithUsecaseError(c *gin.Context, err error) {
	var verr *reservation.ValidationError
	if errors.As(err, &verr) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, verr.Message(),
			validationDetail{Reason: verr.Reason, Field: verr.Field})
		return
	}

	var cerr *reservation.ConflictError
	if errors.As(err, &cerr) {
		detail := conflictDetail{Kind: cerr.Kind}
		if cerr.ConflictingID != uuid.Nil {
			id := cerr.ConflictingID
			detail.ConflictingID = &id
			detail.Slot = cerr.Slot.String()
		}
		httperr.AbortWithError(c, http.StatusConflict, err, cerr.Message(), detail)
		return
	}

	switch {
	case errs.Is(err, errs.ErrNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errs.Is(err, errs.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Reservation request is currently being processed", nil)
	case errs.Is(err, errs.ErrIdempotencyKeyMismatch):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Idempotency key was already used with a different request", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	case errs.Is(err, errs.ErrStorageUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Reservation storage is temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
