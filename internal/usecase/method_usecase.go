package usecase

import (
	"context"
	"time"

	"github.com/strefex-app/walletd/internal/domain"
)

// MethodUseCase manages the wallet's registered payment instruments.
type MethodUseCase struct {
	walletRepo WalletRepository
	methodRepo MethodRepository
	auditRepo  AuditRepository
	policy     *SecurityPolicy
	clearance  ClearanceConsumer
	idGen      IDGenerator
}

// NewMethodUseCase creates a new MethodUseCase.
func NewMethodUseCase(
	walletRepo WalletRepository,
	methodRepo MethodRepository,
	auditRepo AuditRepository,
	policy *SecurityPolicy,
	clearance ClearanceConsumer,
	idGen IDGenerator,
) *MethodUseCase {
	return &MethodUseCase{
		walletRepo: walletRepo,
		methodRepo: methodRepo,
		auditRepo:  auditRepo,
		policy:     policy,
		clearance:  clearance,
		idGen:      idGen,
	}
}

// AddMethodInput represents input for registering a payment method.
type AddMethodInput struct {
	WalletID    string
	Type        domain.MethodType
	Label       string
	Fields      map[string]string
	MakeDefault bool
}

// AddMethod registers a payment method on a wallet. The first method on a
// wallet becomes the default. Wallet-provider types come in verified.
func (uc *MethodUseCase) AddMethod(ctx context.Context, input AddMethodInput) (*domain.PaymentMethod, error) {
	if _, err := uc.walletRepo.GetByID(ctx, input.WalletID); err != nil {
		return nil, err
	}

	details, err := domain.NewMethodDetails(input.Type, input.Fields)
	if err != nil {
		return nil, err
	}

	method := &domain.PaymentMethod{
		ID:       uc.idGen.Generate(),
		WalletID: input.WalletID,
		Type:     input.Type,
		Label:    input.Label,
		Details:  details,
		Verified: input.Type.InstantVerified(),
		AddedAt:  time.Now().UTC(),
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.methodRepo.List(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}
	method.IsDefault = len(existing) == 0 || input.MakeDefault

	// The schema allows one default row per wallet, so the old default must
	// lose the flag before this insert carries it.
	if method.IsDefault && len(existing) > 0 {
		if err := uc.methodRepo.ClearDefault(ctx, input.WalletID); err != nil {
			return nil, err
		}
	}

	if err := uc.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.WalletID, domain.AuditActionMethodAdd, method.ID, method)

	return method, nil
}

// RemoveMethod deletes a payment method. Always gated: a clearance token
// for the remove_method operation is required. The default flag is not
// promoted to another method; the owner picks a new default explicitly.
func (uc *MethodUseCase) RemoveMethod(ctx context.Context, walletID, methodID, clearanceToken string) error {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return err
	}

	if uc.policy.RequiresVerification(domain.OpRemoveMethod, settings) {
		if err := uc.clearance.Consume(ctx, walletID, domain.OpRemoveMethod, clearanceToken); err != nil {
			return err
		}
	}

	method, err := uc.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		return err
	}
	if method.WalletID != walletID {
		return domain.ErrMethodNotFound
	}

	if err := uc.methodRepo.Delete(ctx, methodID); err != nil {
		return err
	}

	uc.audit(ctx, walletID, domain.AuditActionMethodRemove, methodID, method)

	return nil
}

// SetDefault marks a method as the wallet's default, clearing the flag on
// all others.
func (uc *MethodUseCase) SetDefault(ctx context.Context, walletID, methodID string) error {
	method, err := uc.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		return err
	}
	if method.WalletID != walletID {
		return domain.ErrMethodNotFound
	}

	return uc.methodRepo.SetDefault(ctx, walletID, methodID)
}

// VerifyMethod marks a method verified after an external check (micro
// deposit, card authorization) succeeded.
func (uc *MethodUseCase) VerifyMethod(ctx context.Context, walletID, methodID string) error {
	method, err := uc.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		return err
	}
	if method.WalletID != walletID {
		return domain.ErrMethodNotFound
	}

	return uc.methodRepo.SetVerified(ctx, methodID)
}

// GetMethod retrieves a payment method by ID.
func (uc *MethodUseCase) GetMethod(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	return uc.methodRepo.GetByID(ctx, id)
}

// ListMethods returns a wallet's payment methods.
func (uc *MethodUseCase) ListMethods(ctx context.Context, walletID string) ([]*domain.PaymentMethod, error) {
	return uc.methodRepo.List(ctx, walletID)
}

func (uc *MethodUseCase) audit(ctx context.Context, walletID string, action domain.AuditAction, methodID string, state any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		WalletID:     walletID,
		Action:       string(action),
		ResourceType: "payment_method",
		ResourceID:   methodID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	})
}
