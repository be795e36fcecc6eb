//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// inserts a reservation row directly, bypassing the rule validator
func CreateTestReservation(t *testing.T, db DBLike, date, room, requesterID, start, end string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(context.Background(), `
		INSERT INTO reservations (
			sequence_number, reservation_date, room, requester_name, requester_id,
			time_start, time_end, person_count, purpose, cleanliness_acknowledged
		)
		SELECT COALESCE(MAX(sequence_number), 0) + 1, $1::date, $2, 'Fixture', $3, $4::time, $5::time, 2, 'fixture', true
		FROM reservations
		RETURNING id`,
		date, room, requesterID, start, end).Scan(&id)
	require.NoError(t, err)

	return id
}

func CountReservations(t *testing.T, db DBLike) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM reservations").Scan(&n)
	require.NoError(t, err)
	return n
}

// truncates the reservation table between sub tests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "TRUNCATE reservations")
	return err
}
