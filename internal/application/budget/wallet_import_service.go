package budget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	csvimport "github.com/rewards/backend/internal/infrastructure/import"
	"github.com/rewards/backend/internal/infrastructure/logger"
)

// WalletImportService provisions employee wallets in bulk from a CSV
// file. The file is validated as a whole first; nothing is written
// unless every row passes.
type WalletImportService struct {
	wallets  budget.WalletRepository
	tenants  identity.TenantRepository
	sessions csvimport.SessionStore
}

// NewWalletImportService creates a new WalletImportService
func NewWalletImportService(wallets budget.WalletRepository, tenants identity.TenantRepository, sessions csvimport.SessionStore) *WalletImportService {
	return &WalletImportService{wallets: wallets, tenants: tenants, sessions: sessions}
}

// walletImportRules returns the field rules for a wallet CSV. The
// currency column is optional; when present it must match the tenant's
// configured currency.
func walletImportRules(tenantCurrency string) []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("user_id").Required().UUID().Unique().Build(),
		csvimport.Field("currency").Length(3, 3).Custom(func(value string) error {
			if value != tenantCurrency {
				return fmt.Errorf("currency %q does not match tenant currency %q", value, tenantCurrency)
			}
			return nil
		}).Build(),
	}
}

// max accepted upload, 10MB
const maxImportFileSize = 10 << 20

// Import validates the CSV and, if every row passes, creates one empty
// wallet per row in the tenant's configured currency. The returned
// session carries per-row errors when validation fails.
func (s *WalletImportService) Import(ctx context.Context, tenantID, actorID uuid.UUID, fileName string, r io.Reader) (*csvimport.ImportSession, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.ErrInvalidState.WithMessage("tenant is not active")
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImportFileSize {
		return nil, shared.ErrInvalidInput.WithMessage("import file exceeds the maximum size")
	}

	session := csvimport.NewImportSession(tenantID, actorID, csvimport.EntityWallets, fileName, int64(len(data)))
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	processor := csvimport.NewImportProcessor(
		csvimport.WithUniqueLookup(func(entityType, field, value string) (bool, error) {
			userID, err := uuid.Parse(value)
			if err != nil {
				return false, nil
			}
			_, err = s.wallets.FindByUser(ctx, userID)
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return true, nil
		}),
	)

	result, err := processor.Validate(ctx, session, bytes.NewReader(data), walletImportRules(string(tenant.Config.Currency)))
	if err != nil {
		s.sessions.Save(session)
		return nil, err
	}
	if !result.IsValid() {
		s.sessions.Save(session)
		return session, nil
	}

	session.UpdateState(csvimport.StateImporting)
	s.sessions.Save(session)

	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		session.UpdateState(csvimport.StateFailed)
		s.sessions.Save(session)
		return session, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(csvimport.StateFailed)
		s.sessions.Save(session)
		return session, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		session.UpdateState(csvimport.StateFailed)
		s.sessions.Save(session)
		return session, err
	}

	created := 0
	for _, row := range rows {
		userID, err := uuid.Parse(row.Get("user_id"))
		if err != nil {
			continue
		}
		wallet, err := budget.NewEmployeeWallet(tenantID, userID, tenant.Config.Currency)
		if err != nil {
			session.UpdateState(csvimport.StateFailed)
			s.sessions.Save(session)
			return session, err
		}
		if err := s.wallets.Save(ctx, wallet); err != nil {
			session.UpdateState(csvimport.StateFailed)
			s.sessions.Save(session)
			return session, err
		}
		created++
	}

	session.UpdateState(csvimport.StateCompleted)
	s.sessions.Save(session)

	logger.L(ctx).Info("wallet import completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Int("wallets_created", created))

	return session, nil
}

// GetSession returns one import session, or nil when unknown or expired
func (s *WalletImportService) GetSession(id uuid.UUID) (*csvimport.ImportSession, error) {
	return s.sessions.Get(id)
}

// ListSessions returns recent import sessions for a tenant
func (s *WalletImportService) ListSessions(tenantID uuid.UUID, limit int) ([]*csvimport.ImportSession, error) {
	return s.sessions.GetByTenant(tenantID, limit)
}
