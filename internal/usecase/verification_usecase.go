package usecase

import (
	"context"
	"time"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
)

// VerificationUseCase is the gate in front of sensitive operations: it
// issues one-time codes per channel, checks them strictly in step order,
// and hands out a single-use clearance token once every required step for
// an operation attempt has passed.
type VerificationUseCase struct {
	walletRepo WalletRepository
	store      VerificationStore
	sender     CodeSender
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewVerificationUseCase creates a new VerificationUseCase.
func NewVerificationUseCase(
	walletRepo WalletRepository,
	store VerificationStore,
	sender CodeSender,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *VerificationUseCase {
	return &VerificationUseCase{
		walletRepo: walletRepo,
		store:      store,
		sender:     sender,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// IssueCode generates a 6-digit code for the channel, replacing any prior
// pending code, and hands it to the dispatch collaborator. The code lives
// only in the verification store and only for its TTL.
func (uc *VerificationUseCase) IssueCode(ctx context.Context, walletID string, channel domain.Channel) (time.Time, error) {
	if !channel.IsValid() {
		return time.Time{}, domain.ErrNoPendingCode
	}

	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return time.Time{}, err
	}

	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return time.Time{}, err
	}

	target := wallet.OwnerEmail
	if channel == domain.ChannelPhone {
		if !settings.PhoneVerified && settings.PhoneNumber == "" {
			return time.Time{}, domain.ErrPhoneNotVerified
		}
		target = settings.PhoneNumber
	}

	code := domain.GenerateCode()
	expiresAt := time.Now().UTC().Add(domain.CodeTTL)

	pending := domain.PendingCode{
		Code:      code,
		Target:    target,
		ExpiresAt: expiresAt,
	}
	if err := uc.store.PutCode(ctx, walletID, channel, pending); err != nil {
		return time.Time{}, err
	}

	if err := uc.sender.Deliver(ctx, channel, target, code); err != nil {
		return time.Time{}, err
	}

	if uc.metrics != nil {
		uc.metrics.VerificationCodesIssued.WithLabelValues(string(channel)).Inc()
	}

	return expiresAt, nil
}

// CheckResult reports the outcome of a gate step.
type CheckResult struct {
	Step      domain.Channel
	Completed bool
	// ClearanceToken is set once every required step has passed. It is
	// bound to one operation attempt and consumed on first use.
	ClearanceToken string
}

// CheckCode verifies the code for a gate step of the given operation.
// Steps must be satisfied strictly in the order RequiredSteps dictates;
// a successful check consumes the pending code.
func (uc *VerificationUseCase) CheckCode(ctx context.Context, walletID string, op domain.OperationKind, channel domain.Channel, input string) (*CheckResult, error) {
	settings, err := uc.walletRepo.GetSecurity(ctx, walletID)
	if err != nil {
		return nil, err
	}

	steps := domain.RequiredSteps(settings)

	stepIndex := -1
	for i, step := range steps {
		if step == channel {
			stepIndex = i
			break
		}
	}
	if stepIndex < 0 {
		return nil, domain.ErrStepOutOfOrder
	}

	done, err := uc.store.GetProgress(ctx, walletID, op)
	if err != nil {
		return nil, err
	}
	if stepIndex != len(done) {
		return nil, domain.ErrStepOutOfOrder
	}

	pending, err := uc.store.GetCode(ctx, walletID, channel)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, domain.ErrNoPendingCode
	}

	if pending.Expired(time.Now().UTC()) {
		_ = uc.store.DeleteCode(ctx, walletID, channel)
		uc.countCheck(channel, "expired")
		return nil, domain.ErrCodeExpired
	}

	if pending.Code != input {
		uc.countCheck(channel, "mismatch")
		return nil, domain.ErrCodeMismatch
	}

	// Single use: the code is consumed on success.
	if err := uc.store.DeleteCode(ctx, walletID, channel); err != nil {
		return nil, err
	}

	done = append(done, channel)
	result := &CheckResult{Step: channel}

	if len(done) < len(steps) {
		if err := uc.store.PutProgress(ctx, walletID, op, done, ProgressTTL); err != nil {
			return nil, err
		}
		uc.countCheck(channel, "ok")
		return result, nil
	}

	// All steps passed: mint the clearance token and drop the attempt
	// state so a later operation starts from the first step again.
	token := uc.idGen.Generate()
	if err := uc.store.PutClearance(ctx, walletID, op, token, ClearanceTTL); err != nil {
		return nil, err
	}
	_ = uc.store.DeleteProgress(ctx, walletID, op)

	uc.stampLastVerified(ctx, walletID, settings)
	uc.countCheck(channel, "ok")

	result.Completed = true
	result.ClearanceToken = token

	return result, nil
}

// Consume redeems a clearance token for an operation. Tokens are single
// use; a missing or already-used token fails with ErrVerificationRequired.
func (uc *VerificationUseCase) Consume(ctx context.Context, walletID string, op domain.OperationKind, token string) error {
	if token == "" {
		return domain.ErrVerificationRequired
	}

	ok, err := uc.store.ConsumeClearance(ctx, walletID, op, token)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrVerificationRequired
	}

	return nil
}

// Cancel drops any in-flight attempt state for the operation. A partially
// completed gate carries no residual authorization.
func (uc *VerificationUseCase) Cancel(ctx context.Context, walletID string, op domain.OperationKind) error {
	return uc.store.DeleteProgress(ctx, walletID, op)
}

func (uc *VerificationUseCase) stampLastVerified(ctx context.Context, walletID string, settings domain.SecuritySettings) {
	now := time.Now().UTC()
	settings.LastVerifiedAt = &now
	_ = uc.walletRepo.UpdateSecurity(ctx, walletID, settings, now)
}

func (uc *VerificationUseCase) countCheck(channel domain.Channel, outcome string) {
	if uc.metrics != nil {
		uc.metrics.VerificationChecks.WithLabelValues(string(channel), outcome).Inc()
	}
}
