// Package quota holds the entitlement metering rules. It is pure
// computation: callers read aggregates from storage, consult this
// package, and persist the results themselves.
package quota

import (
	"github.com/synergyai/orchestrator-server-go/internal/model"
)

// Free-tier caps. Premium accounts are unmetered.
const (
	FreeSessionCap = 1
	FreeTurnCap    = 5
)

// CanCreateSession reports whether the entitlement permits opening
// another session.
func CanCreateSession(e *model.Entitlement) bool {
	if e.IsPremium {
		return true
	}
	return e.SessionsCreated < FreeSessionCap
}

// CanExchange reports whether a session with the given completed turn
// count may run another exchange.
func CanExchange(e *model.Entitlement, turnCount int) bool {
	if e.IsPremium {
		return true
	}
	return turnCount < FreeTurnCap
}

// RecordSessionCreated returns the entitlement with the session counter
// advanced by exactly one. Call only after the session create has been
// durably persisted, so failed creations are never counted.
func RecordSessionCreated(e model.Entitlement) model.Entitlement {
	e.SessionsCreated++
	return e
}

// RecordExchange returns the session with its turn counter advanced by
// exactly one. Call only once the full exchange is durably persisted.
func RecordExchange(s model.Session) model.Session {
	s.TurnCount++
	return s
}
