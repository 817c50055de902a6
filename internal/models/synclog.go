package models

import "time"

// SyncOutcome is the terminal result of one sync attempt.
type SyncOutcome string

const (
	SyncSuccess SyncOutcome = "success"
	// SyncPartial is reserved for aggregate records spanning several
	// accounts. A single account sync replaces its position snapshot
	// wholesale, so it always lands on success or failed.
	SyncPartial SyncOutcome = "partial"
	SyncFailed  SyncOutcome = "failed"
)

// SyncLog is the append-only audit record of one sync attempt for one
// account. One record per attempt; never mutated after creation.
type SyncLog struct {
	ID            string      `json:"id"`
	AccountID     string      `json:"account_id"`
	UserID        string      `json:"user_id"`
	Broker        BrokerType  `json:"broker"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    time.Time   `json:"finished_at"`
	Outcome       SyncOutcome `json:"outcome"`
	Error         string      `json:"error,omitempty"`
	TokenExpired  bool        `json:"token_expired,omitempty"`
	PositionCount int         `json:"position_count"`
}

// RefreshStatus is the per-account result of an interactive refresh.
type RefreshStatus string

const (
	RefreshOK      RefreshStatus = "refreshed"
	RefreshSkipped RefreshStatus = "skipped" // lock busy, sync already running
	RefreshFailed  RefreshStatus = "failed"
)

// AccountRefreshOutcome is one account's line in a manual refresh response.
type AccountRefreshOutcome struct {
	AccountID     string        `json:"account_id"`
	Broker        BrokerType    `json:"broker"`
	Status        RefreshStatus `json:"status"`
	Error         string        `json:"error,omitempty"`
	ReauthNeeded  bool          `json:"reauth_needed,omitempty"`
	PositionCount int           `json:"position_count,omitempty"`
}

// ManualRefreshResponse aggregates per-account outcomes of an interactive
// refresh. Partial failure is a normal result to display, not an error.
type ManualRefreshResponse struct {
	UserID    string                  `json:"user_id"`
	Accounts  []AccountRefreshOutcome `json:"accounts"`
	Refreshed int                     `json:"refreshed"`
	Skipped   int                     `json:"skipped"`
	Failed    int                     `json:"failed"`
}
