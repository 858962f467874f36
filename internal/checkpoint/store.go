package checkpoint

import (
	"strings"
	"time"

	"github.com/ppiankov/clawback/internal/model"
)

// Record is a durable snapshot of a claim's accumulated state taken
// after a completed stage. It is what makes an interrupted run
// resumable without repeating evaluator or drafting calls.
type Record struct {
	Claim     model.DeductionClaim `json:"claim"`
	Stage     string               `json:"stage"` // Last completed stage
	UpdatedAt time.Time            `json:"updated_at"`
}

// Store defines the interface for checkpoint persistence. Records are
// keyed per claim ID; no cross-claim coordination is required.
type Store interface {
	Put(claimID string, rec Record) error
	Get(claimID string) (Record, bool)
	Delete(claimID string) error
}

// fileKey maps a claim ID to a safe filename component
func fileKey(claimID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, claimID)
}
