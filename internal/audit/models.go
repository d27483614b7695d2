package audit

import "time"

// Actions recorded in the audit trail.
const (
	ActionUserRegistered     = "user_registered"
	ActionUserUpdated        = "user_updated"
	ActionUserDeleted        = "user_deleted"
	ActionAccountCreated     = "account_created"
	ActionAccountUpdated     = "account_updated"
	ActionAccountDeleted     = "account_deleted"
	ActionTransactionApplied = "transaction_applied"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Actor     string // principal user id
	Action    string
	Resource  string // account number, user id, transaction id
	Detail    string
	RequestID string
	ClientIP  string
	UserAgent string
}
