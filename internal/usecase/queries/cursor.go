package queries

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/shared"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	CursorVersionV1  = "v1"
)

var ErrInvalidCursor = errs.New("invalid cursor")

// Cursor carries the position of the last row on the previous page.
type Cursor struct {
	After string `json:"after,omitempty"`
}

// EncodeAfterCursor packs the list order key as "v1:<date>|<HH:MM>|<sequence>".
func EncodeAfterCursor(pos shared.ListPosition) string {
	cursorData := fmt.Sprintf("%s:%s|%s|%d", CursorVersionV1, pos.Date, pos.Start, pos.SequenceNumber)
	return base64.URLEncoding.EncodeToString([]byte(cursorData))
}

func DecodeAfterCursor(cursor string) (shared.ListPosition, error) {
	if cursor == "" {
		return shared.ListPosition{}, fmt.Errorf("cursor cannot be empty")
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return shared.ListPosition{}, fmt.Errorf("invalid cursor encoding: %w", err)
	}
	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return shared.ListPosition{}, fmt.Errorf("unsupported cursor version")
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return shared.ListPosition{}, fmt.Errorf("invalid cursor format: expected '<date>|<start>|<sequence>'")
	}
	date, err := reservation.ParseDate(parts[0])
	if err != nil {
		return shared.ListPosition{}, fmt.Errorf("invalid date: %w", err)
	}
	start, err := reservation.ParseTimeOfDay(parts[1])
	if err != nil {
		return shared.ListPosition{}, fmt.Errorf("invalid start: %w", err)
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 1 {
		return shared.ListPosition{}, fmt.Errorf("invalid sequence number %q", parts[2])
	}

	return shared.ListPosition{Date: date, Start: start, SequenceNumber: seq}, nil
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
