package audit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogEntry(t *testing.T) {
	actor := identity.Actor{UserID: uuid.New(), Type: identity.ActorTypeTenantManager}
	tenantID := uuid.New()
	entityID := uuid.New()

	t.Run("creates entry with snapshots", func(t *testing.T) {
		old := Snapshot{"balance": "100"}
		updated := Snapshot{"balance": "150"}

		entry, err := NewLogEntry(tenantID, ActionAwardToEmployee, "EmployeeWallet", entityID, old, updated, actor)
		require.NoError(t, err)

		assert.Equal(t, tenantID, entry.TenantID)
		assert.Equal(t, ActionAwardToEmployee, entry.Action)
		assert.Equal(t, "100", entry.OldValues["balance"])
		assert.Equal(t, "150", entry.NewValues["balance"])
		assert.Equal(t, actor.UserID, entry.ActorID)
	})

	t.Run("nil old values allowed for creations", func(t *testing.T) {
		entry, err := NewLogEntry(tenantID, ActionAllocateToLead, "LeadBudget", entityID, nil, Snapshot{"total": "500"}, actor)
		require.NoError(t, err)
		assert.Nil(t, entry.OldValues)
	})

	t.Run("requires tenant and action", func(t *testing.T) {
		_, err := NewLogEntry(uuid.Nil, ActionSpendFromWallet, "EmployeeWallet", entityID, nil, nil, actor)
		require.Error(t, err)

		_, err = NewLogEntry(tenantID, "", "EmployeeWallet", entityID, nil, nil, actor)
		require.Error(t, err)
	})
}

func TestSnapshot_ValueScan(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := Snapshot{"allocated": "1000", "spent": "250"}

		v, err := s.Value()
		require.NoError(t, err)

		var got Snapshot
		require.NoError(t, got.Scan(v))
		assert.Equal(t, s, got)
	})

	t.Run("nil snapshot stores null", func(t *testing.T) {
		var s Snapshot
		v, err := s.Value()
		require.NoError(t, err)
		assert.Nil(t, v)

		var got Snapshot
		require.NoError(t, got.Scan(nil))
		assert.Nil(t, got)
	})

	t.Run("scans byte slices", func(t *testing.T) {
		var got Snapshot
		require.NoError(t, got.Scan([]byte(`{"k":"v"}`)))
		assert.Equal(t, "v", got["k"])
	})
}
