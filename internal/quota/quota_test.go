package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synergyai/orchestrator-server-go/internal/model"
)

func TestCanCreateSession(t *testing.T) {
	t.Run("free tier allowed below cap", func(t *testing.T) {
		e := &model.Entitlement{SessionsCreated: 0}
		assert.True(t, CanCreateSession(e))
	})

	t.Run("free tier denied at cap", func(t *testing.T) {
		e := &model.Entitlement{SessionsCreated: FreeSessionCap}
		assert.False(t, CanCreateSession(e))
	})

	t.Run("premium unmetered regardless of prior count", func(t *testing.T) {
		e := &model.Entitlement{SessionsCreated: 4000, IsPremium: true}
		assert.True(t, CanCreateSession(e))
	})
}

func TestCanExchange(t *testing.T) {
	t.Run("free tier allowed for turns below cap", func(t *testing.T) {
		e := &model.Entitlement{}
		for turnCount := 0; turnCount < FreeTurnCap; turnCount++ {
			assert.True(t, CanExchange(e, turnCount), "turnCount=%d", turnCount)
		}
	})

	t.Run("free tier denied at cap", func(t *testing.T) {
		e := &model.Entitlement{}
		assert.False(t, CanExchange(e, FreeTurnCap))
	})

	t.Run("premium unmetered", func(t *testing.T) {
		e := &model.Entitlement{IsPremium: true}
		assert.True(t, CanExchange(e, 9999))
	})
}

func TestRecordSessionCreated(t *testing.T) {
	t.Run("increments by exactly one without mutating input", func(t *testing.T) {
		e := model.Entitlement{SessionsCreated: 2}
		next := RecordSessionCreated(e)
		assert.Equal(t, 3, next.SessionsCreated)
		assert.Equal(t, 2, e.SessionsCreated)
	})
}

func TestRecordExchange(t *testing.T) {
	t.Run("increments by exactly one without mutating input", func(t *testing.T) {
		s := model.Session{TurnCount: 4}
		next := RecordExchange(s)
		assert.Equal(t, 5, next.TurnCount)
		assert.Equal(t, 4, s.TurnCount)
	})
}
