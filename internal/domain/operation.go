package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation describes a completed ledger mutation for auditing.
type Operation struct {
	ID        uuid.UUID
	Name      string
	Args      map[string]string
	Result    string
	Err       error
	StartedAt time.Time
	Latency   time.Duration
}
