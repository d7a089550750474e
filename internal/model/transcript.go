package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Turn is one message within a session's transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the ordered, append-only message log of one session,
// stored as a single jsonb column. Turns normally alternate starting
// with a user turn, but any ordering recovered from storage is kept
// as-is.
type Transcript []Turn

// Value implements driver.Valuer so a Transcript can be written as jsonb.
// A nil transcript is stored as an empty array, never SQL NULL.
func (t Transcript) Value() (driver.Value, error) {
	if t == nil {
		t = Transcript{}
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for jsonb columns.
func (t *Transcript) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Transcript{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported transcript source type %T", src)
	}
}

// CompletedExchanges counts assistant turns, the durable footprint of a
// finished exchange. Used to cross-check the session turn counter.
func (t Transcript) CompletedExchanges() int {
	n := 0
	for _, turn := range t {
		if turn.Role == RoleAssistant {
			n++
		}
	}
	return n
}
