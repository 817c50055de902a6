// Package models defines the domain types shared across Folio services.
package models

import (
	"errors"
	"fmt"
	"time"
)

// BrokerType identifies a supported broker integration.
type BrokerType string

const (
	BrokerZerodha  BrokerType = "zerodha"
	BrokerUpstox   BrokerType = "upstox"
	BrokerAngelOne BrokerType = "angelone"
)

// TokenExpiryReason classifies why a broker credential stopped working.
type TokenExpiryReason string

const (
	TokenExpiryNone         TokenExpiryReason = "none"
	TokenExpiryExpired      TokenExpiryReason = "expired"
	TokenExpiryRevoked      TokenExpiryReason = "revoked"
	TokenExpiryInvalidScope TokenExpiryReason = "invalid_scope"
)

// BrokerAccount is one linked brokerage credential for one user.
// It is created on broker linking and deactivated on unlink or on an
// unrecoverable authentication failure; it is never hard-deleted while
// sync history references it.
type BrokerAccount struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Broker       BrokerType `json:"broker"`
	Active       bool       `json:"active"`
	LastSyncedAt time.Time  `json:"last_synced_at"`
	AccessToken  string     `json:"access_token,omitempty"` // opaque credential material
	CreatedAt    time.Time  `json:"created_at"`
}

// BrokerError is a broker call failure carrying structured metadata so
// callers can switch on the token-expiry tag instead of matching on type
// hierarchies. TokenExpired=true means the user must re-authenticate.
type BrokerError struct {
	Broker       BrokerType
	TokenExpired bool
	Reason       TokenExpiryReason
	Err          error
}

func (e *BrokerError) Error() string {
	if e.TokenExpired {
		return fmt.Sprintf("broker %s: credential %s: %v", e.Broker, e.Reason, e.Err)
	}
	return fmt.Sprintf("broker %s: %v", e.Broker, e.Err)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError wraps a transient broker failure.
func NewBrokerError(broker BrokerType, err error) *BrokerError {
	return &BrokerError{Broker: broker, Reason: TokenExpiryNone, Err: err}
}

// NewTokenExpiredError wraps an authentication failure that requires
// user re-authentication.
func NewTokenExpiredError(broker BrokerType, reason TokenExpiryReason, err error) *BrokerError {
	return &BrokerError{Broker: broker, TokenExpired: true, Reason: reason, Err: err}
}

// IsTokenExpired reports whether err carries a token-expired broker failure.
func IsTokenExpired(err error) bool {
	var be *BrokerError
	return errors.As(err, &be) && be.TokenExpired
}

// ErrSyncInProgress signals that a sync was skipped because another sync
// already holds the relevant lock. It is a normal outcome, not a failure.
var ErrSyncInProgress = errors.New("sync already in progress")
