//go:build unit

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		logger:   slog.New(slog.NewJSONHandler(buf, nil)),
		timezone: time.UTC,
	}
}

func completedEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "Request completed" {
			return entry
		}
	}
	t.Fatalf("no completed entry in %s", buf.String())
	return nil
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records reservation route params", func(t *testing.T) {
		var buf bytes.Buffer
		r := gin.New()
		r.Use(newTestLogger(&buf).LoggingMiddleware())
		r.POST("/api/reservations/:id/extend", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/api/reservations/0b6c1f7e-2f4e-4c55-9d4a-3f1f0f8f2a11/extend", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)

		entry := completedEntry(t, &buf)
		assert.Equal(t, "0b6c1f7e-2f4e-4c55-9d4a-3f1f0f8f2a11", entry["reservation_id"])
		assert.NotContains(t, entry, "room")
		assert.EqualValues(t, http.StatusOK, entry["status_code"])
	})

	t.Run("records the room of an availability lookup", func(t *testing.T) {
		var buf bytes.Buffer
		r := gin.New()
		r.Use(newTestLogger(&buf).LoggingMiddleware())
		r.GET("/api/rooms/:room/availability", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms/3/availability?date=2030-01-07", nil))

		entry := completedEntry(t, &buf)
		assert.Equal(t, "3", entry["room"])
		assert.NotContains(t, entry, "reservation_id")
		assert.Equal(t, "WARN", entry["level"])
	})
}
