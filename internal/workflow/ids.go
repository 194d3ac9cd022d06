package workflow

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// newID mints a definition-scoped entity id: prefix, UTC timestamp, and a
// crypto/rand suffix, matching the teacher's newID exactly.
func newID(prefix string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return prefix + "_" + time.Now().UTC().Format("20060102T150405") + "_" + hex.EncodeToString(buf)
}

// newCorrelationID mints an instance correlation/context id using
// github.com/google/uuid, matching the teacher's engine/service.go
// uuid.NewString() idiom for run-scoped identifiers.
func newCorrelationID() string {
	return uuid.NewString()
}
