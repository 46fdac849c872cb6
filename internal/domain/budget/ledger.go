package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// Tier names the balance-holding level a ledger entry belongs to.
// Each tier has its own append-only table.
type Tier string

const (
	TierPlatform   Tier = "platform"
	TierTenant     Tier = "tenant"
	TierDepartment Tier = "department"
	TierWallet     Tier = "wallet"
)

// IsValid checks if the tier is valid
func (t Tier) IsValid() bool {
	switch t {
	case TierPlatform, TierTenant, TierDepartment, TierWallet:
		return true
	}
	return false
}

// EntryType names the budget operation that produced a ledger entry
type EntryType string

const (
	EntryAllocation     EntryType = "allocation"
	EntryClawback       EntryType = "clawback"
	EntryDistribution   EntryType = "distribution"
	EntryLeadAllocation EntryType = "lead_allocation"
	EntryAward          EntryType = "award"
	EntrySpend          EntryType = "spend"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryAllocation, EntryClawback, EntryDistribution, EntryLeadAllocation, EntryAward, EntrySpend:
		return true
	}
	return false
}

// LedgerEntry is one immutable signed movement against a balance
// holder. Entries are appended inside the same transaction as the
// balance mutation and are never updated or deleted.
//
// Sign convention per tier:
//
//	platform:   +allocation out of the pool, -clawback returned
//	tenant:     +allocation, -clawback, -distribution
//	department: +distribution, -lead_allocation, -award
//	wallet:     +award, -spend
//
// The tenant tier sums to the tenant's allocation balance and the
// wallet tier sums to the wallet balance, which is what makes
// reconciliation a single-table query.
type LedgerEntry struct {
	ID             uuid.UUID
	Tier           Tier
	TenantID       uuid.UUID
	OwnerID        uuid.UUID
	Type           EntryType
	Amount         valueobject.Points
	ActorID        uuid.UUID
	ActorType      identity.ActorType
	Reference      string
	IdempotencyKey *string
	CreatedAt      time.Time
}

// NewLedgerEntry creates a signed ledger entry. Amount carries the
// sign; zero amounts never reach the ledger.
func NewLedgerEntry(tier Tier, tenantID, ownerID uuid.UUID, entryType EntryType, amount valueobject.Points, actor identity.Actor, reference string) (*LedgerEntry, error) {
	if !tier.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("invalid ledger tier: " + string(tier))
	}
	if amount.IsZero() {
		return nil, shared.ErrInvalidAmount
	}
	if tenantID == uuid.Nil || ownerID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("tenant and owner ids are required")
	}
	if !entryType.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("invalid entry type: " + string(entryType))
	}
	if !actor.Type.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("invalid actor type: " + string(actor.Type))
	}

	return &LedgerEntry{
		ID:        uuid.New(),
		Tier:      tier,
		TenantID:  tenantID,
		OwnerID:   ownerID,
		Type:      entryType,
		Amount:    amount,
		ActorID:   actor.UserID,
		ActorType: actor.Type,
		Reference: reference,
		CreatedAt: time.Now(),
	}, nil
}

// WithIdempotencyKey tags the entry with the caller-supplied key.
// Only platform-tier allocation entries carry one; the store enforces
// uniqueness per (tenant_id, idempotency_key).
func (e *LedgerEntry) WithIdempotencyKey(key string) *LedgerEntry {
	e.IdempotencyKey = &key
	return e
}
