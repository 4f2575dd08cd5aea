package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
	"github.com/strefex-app/walletd/internal/usecase/mocks"
)

// fixture wires the full usecase layer against in-memory mocks.
type fixture struct {
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	escrowRepo *mocks.MockEscrowRepository
	methodRepo *mocks.MockMethodRepository
	outboxRepo *mocks.MockOutboxRepository
	auditRepo  *mocks.MockAuditRepository
	txMgr      *mocks.MockTransactionManager
	idGen      *mocks.MockIDGenerator
	store      *mocks.MockVerificationStore
	sender     *mocks.MockCodeSender
	tracker    *mocks.MockDailySpendTracker

	policy       *usecase.SecurityPolicy
	verification *usecase.VerificationUseCase
	wallets      *usecase.WalletUseCase
	escrows      *usecase.EscrowUseCase
	methods      *usecase.MethodUseCase
	security     *usecase.SecurityUseCase
	settlement   *usecase.SettlementUseCase
}

func newFixture() *fixture {
	f := &fixture{
		walletRepo: mocks.NewMockWalletRepository(),
		txRepo:     mocks.NewMockTransactionRepository(),
		escrowRepo: mocks.NewMockEscrowRepository(),
		methodRepo: mocks.NewMockMethodRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
		txMgr:      mocks.NewMockTransactionManager(),
		idGen:      mocks.NewMockIDGenerator(),
		store:      mocks.NewMockVerificationStore(),
		sender:     mocks.NewMockCodeSender(),
		tracker:    mocks.NewMockDailySpendTracker(),
	}

	f.policy = usecase.NewSecurityPolicy(f.tracker)
	f.verification = usecase.NewVerificationUseCase(f.walletRepo, f.store, f.sender, f.idGen, nil)
	f.wallets = usecase.NewWalletUseCase(
		f.txMgr, f.walletRepo, f.txRepo, f.methodRepo, f.outboxRepo, f.auditRepo,
		f.policy, f.verification, f.idGen, nil,
	)
	f.escrows = usecase.NewEscrowUseCase(
		f.txMgr, f.walletRepo, f.escrowRepo, f.txRepo, f.outboxRepo, f.auditRepo,
		f.policy, f.verification, f.idGen, nil,
	)
	f.wallets.SetEscrowFunder(f.escrows)
	f.methods = usecase.NewMethodUseCase(f.walletRepo, f.methodRepo, f.auditRepo, f.policy, f.verification, f.idGen)
	f.security = usecase.NewSecurityUseCase(f.walletRepo, f.auditRepo, f.idGen)
	f.settlement = usecase.NewSettlementUseCase(f.txMgr, f.walletRepo, f.txRepo, f.outboxRepo, f.idGen, nil)

	return f
}

// newWallet provisions a wallet and optionally disables the verification
// gate so money operations run without the code flow.
func (f *fixture) newWallet(t *testing.T, balance int64, gated bool) *domain.Wallet {
	t.Helper()

	ctx := context.Background()
	wallet, err := f.wallets.CreateWallet(ctx, usecase.CreateWalletInput{
		OwnerEmail: "buyer@example.com",
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	if !gated {
		off := false
		if _, err := f.security.UpdateSettings(ctx, wallet.ID, usecase.UpdateSettingsInput{
			WithdrawalRequires2FA: &off,
			PaymentRequires2FA:    &off,
		}); err != nil {
			t.Fatalf("UpdateSettings: %v", err)
		}
	}

	if balance > 0 {
		if _, err := f.wallets.TopUp(ctx, usecase.TopUpInput{
			WalletID: wallet.ID,
			Amount:   decimal.NewFromInt(balance),
		}); err != nil {
			t.Fatalf("TopUp: %v", err)
		}
	}

	return wallet
}

// clearance runs the full email-only verification flow and returns the token.
func (f *fixture) clearance(t *testing.T, walletID string, op domain.OperationKind) string {
	t.Helper()

	ctx := context.Background()
	if _, err := f.verification.IssueCode(ctx, walletID, domain.ChannelEmail); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	result, err := f.verification.CheckCode(ctx, walletID, op, domain.ChannelEmail, f.sender.LastCode())
	if err != nil {
		t.Fatalf("CheckCode: %v", err)
	}
	if !result.Completed {
		t.Fatal("expected gate to complete")
	}
	return result.ClearanceToken
}
