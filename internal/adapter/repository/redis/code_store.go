package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strefex-app/walletd/internal/domain"
)

// CodeStore implements usecase.VerificationStore using Redis. All state is
// short-lived: pending codes, per-operation step progress, and single-use
// clearance tokens.
type CodeStore struct {
	client *redis.Client
}

// NewCodeStore creates a new CodeStore.
func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client}
}

func codeKey(walletID string, channel domain.Channel) string {
	return "verify:code:" + walletID + ":" + string(channel)
}

func progressKey(walletID string, op domain.OperationKind) string {
	return "verify:progress:" + walletID + ":" + string(op)
}

func clearanceKey(walletID string, op domain.OperationKind) string {
	return "verify:clearance:" + walletID + ":" + string(op)
}

// PutCode stores the pending code for a channel, replacing any prior one.
// The key outlives the code's own expiry by a grace window so an expired
// code is still readable and can be reported as expired rather than absent.
func (s *CodeStore) PutCode(ctx context.Context, walletID string, channel domain.Channel, code domain.PendingCode) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return err
	}

	ttl := time.Until(code.ExpiresAt) + time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}

	return s.client.Set(ctx, codeKey(walletID, channel), payload, ttl).Err()
}

// GetCode returns the pending code for a channel, or nil when none exists.
func (s *CodeStore) GetCode(ctx context.Context, walletID string, channel domain.Channel) (*domain.PendingCode, error) {
	payload, err := s.client.Get(ctx, codeKey(walletID, channel)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var code domain.PendingCode
	if err := json.Unmarshal(payload, &code); err != nil {
		return nil, err
	}

	return &code, nil
}

// DeleteCode removes the pending code for a channel.
func (s *CodeStore) DeleteCode(ctx context.Context, walletID string, channel domain.Channel) error {
	return s.client.Del(ctx, codeKey(walletID, channel)).Err()
}

// PutProgress records the completed steps of an operation attempt.
func (s *CodeStore) PutProgress(ctx context.Context, walletID string, op domain.OperationKind, steps []domain.Channel, ttl time.Duration) error {
	payload, err := json.Marshal(steps)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, progressKey(walletID, op), payload, ttl).Err()
}

// GetProgress returns the completed steps of an operation attempt. No
// recorded progress yields an empty slice.
func (s *CodeStore) GetProgress(ctx context.Context, walletID string, op domain.OperationKind) ([]domain.Channel, error) {
	payload, err := s.client.Get(ctx, progressKey(walletID, op)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var steps []domain.Channel
	if err := json.Unmarshal(payload, &steps); err != nil {
		return nil, err
	}

	return steps, nil
}

// DeleteProgress drops the attempt state for an operation.
func (s *CodeStore) DeleteProgress(ctx context.Context, walletID string, op domain.OperationKind) error {
	return s.client.Del(ctx, progressKey(walletID, op)).Err()
}

// PutClearance stores a clearance token for an operation.
func (s *CodeStore) PutClearance(ctx context.Context, walletID string, op domain.OperationKind, token string, ttl time.Duration) error {
	return s.client.Set(ctx, clearanceKey(walletID, op), token, ttl).Err()
}

// consumeScript deletes the clearance key only when the stored token
// matches, so a wrong token does not burn a valid one.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ConsumeClearance atomically checks and removes the token. Returns true
// only when the token matched and was deleted.
func (s *CodeStore) ConsumeClearance(ctx context.Context, walletID string, op domain.OperationKind, token string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{clearanceKey(walletID, op)}, token).Int()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
