package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog caches a committed purchase result so a retried commit with
// the same reference returns the original receipt instead of double-debiting.
type IdempotencyLog struct {
	Key          string    `json:"key"` // Format: "user_id:reference_id"
	ExpenseID    uuid.UUID `json:"expense_id"`
	ResponseJSON []byte    `json:"response_json"` // Cached receipt to return
	CreatedAt    time.Time `json:"created_at"`
}

// BuildPurchaseKey builds the idempotency key for a purchase commit.
func BuildPurchaseKey(userID uuid.UUID, referenceID string) string {
	return fmt.Sprintf("%s:%s", userID, referenceID)
}
