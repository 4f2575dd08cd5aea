package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
)

// SecurityPolicy decides whether an operation needs the verification gate
// and whether it fits within the wallet's limits. Pure decisions over the
// wallet's SecuritySettings, plus the daily-accumulation tracker.
type SecurityPolicy struct {
	spendTracker DailySpendTracker
}

// NewSecurityPolicy creates a new SecurityPolicy. The tracker may be nil,
// in which case the daily limit is not enforced.
func NewSecurityPolicy(spendTracker DailySpendTracker) *SecurityPolicy {
	return &SecurityPolicy{spendTracker: spendTracker}
}

// RequiresVerification reports whether the operation must pass the
// verification gate before executing.
func (p *SecurityPolicy) RequiresVerification(op domain.OperationKind, s domain.SecuritySettings) bool {
	switch op {
	case domain.OpWithdraw:
		return s.WithdrawalRequires2FA
	case domain.OpSendPayment:
		return s.PaymentRequires2FA
	case domain.OpRemoveMethod:
		// Removing a payment instrument is always gated.
		return true
	}
	return false
}

// CheckLimits validates an amount against the single-transaction limit and
// the accumulated daily spend.
func (p *SecurityPolicy) CheckLimits(ctx context.Context, walletID string, amount decimal.Decimal, s domain.SecuritySettings) error {
	if s.SingleTransactionLimit.IsPositive() && amount.GreaterThan(s.SingleTransactionLimit) {
		return domain.ErrSingleTransactionLimit
	}

	if p.spendTracker == nil || !s.DailyLimit.IsPositive() {
		return nil
	}

	spent, err := p.spendTracker.SpentOn(ctx, walletID, time.Now().UTC())
	if err != nil {
		return err
	}
	if spent.Add(amount).GreaterThan(s.DailyLimit) {
		return domain.ErrDailyLimit
	}

	return nil
}

// RecordSpend adds a completed outflow to the daily accumulation. Best
// effort: tracker failures must not fail the committed operation.
func (p *SecurityPolicy) RecordSpend(ctx context.Context, walletID string, amount decimal.Decimal) error {
	if p.spendTracker == nil {
		return nil
	}
	return p.spendTracker.Add(ctx, walletID, time.Now().UTC(), amount)
}

// SecurityUseCase manages the wallet's security settings.
type SecurityUseCase struct {
	walletRepo WalletRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
}

// NewSecurityUseCase creates a new SecurityUseCase.
func NewSecurityUseCase(walletRepo WalletRepository, auditRepo AuditRepository, idGen IDGenerator) *SecurityUseCase {
	return &SecurityUseCase{
		walletRepo: walletRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
	}
}

// GetSettings returns the wallet's security settings.
func (uc *SecurityUseCase) GetSettings(ctx context.Context, walletID string) (domain.SecuritySettings, error) {
	return uc.walletRepo.GetSecurity(ctx, walletID)
}

// UpdateSettingsInput carries the updatable non-money security fields.
// Nil pointers leave the current value untouched (last-write-wins).
type UpdateSettingsInput struct {
	DailyLimit             *decimal.Decimal
	SingleTransactionLimit *decimal.Decimal
	WithdrawalRequires2FA  *bool
	PaymentRequires2FA     *bool
	LoginAlerts            *bool
	TransactionAlerts      *bool
}

// UpdateSettings applies a partial settings update.
func (uc *SecurityUseCase) UpdateSettings(ctx context.Context, walletID string, input UpdateSettingsInput) (domain.SecuritySettings, error) {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return domain.SecuritySettings{}, err
	}

	if input.DailyLimit != nil {
		settings.DailyLimit = *input.DailyLimit
	}
	if input.SingleTransactionLimit != nil {
		settings.SingleTransactionLimit = *input.SingleTransactionLimit
	}
	if input.WithdrawalRequires2FA != nil {
		settings.WithdrawalRequires2FA = *input.WithdrawalRequires2FA
	}
	if input.PaymentRequires2FA != nil {
		settings.PaymentRequires2FA = *input.PaymentRequires2FA
	}
	if input.LoginAlerts != nil {
		settings.LoginAlerts = *input.LoginAlerts
	}
	if input.TransactionAlerts != nil {
		settings.TransactionAlerts = *input.TransactionAlerts
	}

	if err := uc.walletRepo.UpdateSecurity(ctx, walletID, settings, time.Now().UTC()); err != nil {
		return domain.SecuritySettings{}, err
	}

	uc.audit(ctx, walletID, domain.AuditActionSecurityUpdate, settings)

	return settings, nil
}

// VerifyPhone marks the phone channel verified after the gate confirmed a
// code delivered to it.
func (uc *SecurityUseCase) VerifyPhone(ctx context.Context, walletID, phoneNumber string) (domain.SecuritySettings, error) {
	if err := domain.ValidatePhone(phoneNumber); err != nil {
		return domain.SecuritySettings{}, err
	}

	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return domain.SecuritySettings{}, err
	}

	settings.PhoneVerified = true
	settings.PhoneNumber = phoneNumber

	if err := uc.walletRepo.UpdateSecurity(ctx, walletID, settings, time.Now().UTC()); err != nil {
		return domain.SecuritySettings{}, err
	}

	return settings, nil
}

// EnableTwoFactor turns on the two-step gate. Rejected while the phone
// channel is unverified, since the second step would be unsatisfiable.
func (uc *SecurityUseCase) EnableTwoFactor(ctx context.Context, walletID string) (domain.SecuritySettings, error) {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return domain.SecuritySettings{}, err
	}

	if !settings.PhoneVerified {
		return domain.SecuritySettings{}, domain.ErrPhoneNotVerified
	}

	settings.TwoFactorEnabled = true
	if err := uc.walletRepo.UpdateSecurity(ctx, walletID, settings, time.Now().UTC()); err != nil {
		return domain.SecuritySettings{}, err
	}

	uc.audit(ctx, walletID, domain.AuditActionSecurityUpdate, settings)

	return settings, nil
}

// DisableTwoFactor turns off the two-step gate.
func (uc *SecurityUseCase) DisableTwoFactor(ctx context.Context, walletID string) (domain.SecuritySettings, error) {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return domain.SecuritySettings{}, err
	}

	settings.TwoFactorEnabled = false
	if err := uc.walletRepo.UpdateSecurity(ctx, walletID, settings, time.Now().UTC()); err != nil {
		return domain.SecuritySettings{}, err
	}

	uc.audit(ctx, walletID, domain.AuditActionSecurityUpdate, settings)

	return settings, nil
}

// MarkVerified stamps the last successful gate completion.
func (uc *SecurityUseCase) MarkVerified(ctx context.Context, walletID string) error {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	settings.LastVerifiedAt = &now

	return uc.walletRepo.UpdateSecurity(ctx, walletID, settings, now)
}

func (uc *SecurityUseCase) audit(ctx context.Context, walletID string, action domain.AuditAction, state any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		WalletID:     walletID,
		Action:       string(action),
		ResourceType: "security_settings",
		ResourceID:   walletID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	})
}
