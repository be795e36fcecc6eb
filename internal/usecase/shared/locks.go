package shared

import "study-room-booking/internal/domain/reservation"

func RoomLockKey(room string, date reservation.Date) string {
	return "room|" + room + "|" + date.String()
}

func RequesterLockKey(requesterID string, date reservation.Date) string {
	return "requester|" + requesterID + "|" + date.String()
}

// AdmissionLockKeys lists the keys guarding a slot, room first. Every writer
// acquires in this order so two writers cannot wait on each other.
func AdmissionLockKeys(room, requesterID string, date reservation.Date) []string {
	return []string{RoomLockKey(room, date), RequesterLockKey(requesterID, date)}
}
