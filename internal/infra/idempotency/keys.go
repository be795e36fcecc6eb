package idempotency

import "time"

const (
	// idem:reservation:create:{Idempotency-Key} -> "processing|<sha256>" | "<reservation id>|<sha256>"
	KeyReservationCreate = "idem:reservation:create:%s"

	processingMarker = "processing"
	entrySeparator   = "|"
)

var DefaultTTL = 24 * time.Hour
