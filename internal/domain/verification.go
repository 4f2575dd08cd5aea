package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Channel is a verification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// IsValid checks if the channel is known.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelPhone
}

// CodeTTL is how long an issued verification code stays valid.
const CodeTTL = 5 * time.Minute

// PendingCode is a one-time code awaiting confirmation on a channel.
// At most one pending code per channel per wallet; issuing a new code
// replaces the previous one.
type PendingCode struct {
	Code      string    `json:"code"`
	Target    string    `json:"target"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry.
func (p *PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failure is unrecoverable for code issuance
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// RequiredSteps returns the ordered verification steps for a sensitive
// operation: always email first, phone appended only when the phone is
// verified and two-factor is enabled. Steps must be satisfied in order.
func RequiredSteps(s SecuritySettings) []Channel {
	steps := []Channel{ChannelEmail}
	if s.PhoneVerified && s.TwoFactorEnabled {
		steps = append(steps, ChannelPhone)
	}
	return steps
}

// OperationKind names a gated wallet operation.
type OperationKind string

const (
	OpWithdraw     OperationKind = "withdraw"
	OpSendPayment  OperationKind = "send_payment"
	OpRemoveMethod OperationKind = "remove_method"
)

// MaskEmail masks the local part of an email for display.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return local + "@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}

// MaskPhone masks the middle digits of a phone number for display.
func MaskPhone(phone string) string {
	if len(phone) < 6 {
		return phone
	}
	return phone[:3] + "***" + phone[len(phone)-3:]
}
