package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber builds a human-facing order number. Uniqueness relies on
// second precision plus millis plus a 4-digit cryptographic suffix, which keeps
// collision probability negligible without a DB round trip.
func GenerateOrderNumber() string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf(
		"ORD-%s-%03d-%04d",
		datePart,
		millis,
		n.Int64(),
	)
}
