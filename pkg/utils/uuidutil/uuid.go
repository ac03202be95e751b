// Package uuidutil generates the opaque identifiers used to correlate
// log lines of one inverter session.
package uuidutil

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UUID answers a random identifier as plain lowercase hex.
func UUID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
