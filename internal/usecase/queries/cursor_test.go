//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/usecase/queries"
	"study-room-booking/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	t.Run("位置を復元できる", func(t *testing.T) {
		pos := shared.ListPosition{
			Date:           reservation.NewDate(2030, 1, 7),
			Start:          reservation.NewTimeOfDay(9, 30),
			SequenceNumber: 42,
		}
		got, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(pos))
		require.NoError(t, err)
		assert.True(t, pos.Date.Equal(got.Date))
		assert.Equal(t, pos.Start, got.Start)
		assert.Equal(t, pos.SequenceNumber, got.SequenceNumber)
	})

	t.Run("不正なカーソル", func(t *testing.T) {
		enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }
		for _, cursor := range []string{
			"",
			"%%%",
			enc("2030-01-07|09:00|1"),
			enc("v1:2030-01-07|09:00"),
			enc("v1:2030-13-07|09:00|1"),
			enc("v1:2030-01-07|9am|1"),
			enc("v1:2030-01-07|09:00|0"),
		} {
			_, err := queries.DecodeAfterCursor(cursor)
			assert.Error(t, err, cursor)
		}
	})

	t.Run("件数の既定値と上限", func(t *testing.T) {
		assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
		assert.Equal(t, 5, queries.ValidateLimit(5))
		assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(1000))
	})
}
