package domain

import (
	"fmt"
	"time"
)

type MethodType string

const (
	MethodCard        MethodType = "card"
	MethodBankAccount MethodType = "bank_account"
	MethodWireTrans   MethodType = "wire_transfer"
	MethodSEPA        MethodType = "sepa"
	MethodPayPal      MethodType = "paypal"
	MethodStripe      MethodType = "stripe"
	MethodGooglePay   MethodType = "google_pay"
	MethodApplePay    MethodType = "apple_pay"
	MethodCryptoBTC   MethodType = "crypto_btc"
	MethodCryptoETH   MethodType = "crypto_eth"
	MethodCryptoUSDT  MethodType = "crypto_usdt"
)

// InstantVerified reports whether methods of this type are considered
// verified at add time (external account types carry their own verification).
func (t MethodType) InstantVerified() bool {
	switch t {
	case MethodPayPal, MethodGooglePay, MethodApplePay:
		return true
	}
	return false
}

// MethodDetails is the tagged variant for type-specific payment method
// fields. Each variant carries only its own required fields and knows how
// to validate them.
type MethodDetails interface {
	MethodType() MethodType
	Validate() error
}

type CardDetails struct {
	Number     string `json:"number"`
	Holder     string `json:"holder"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	LastDigits string `json:"last_digits,omitempty"`
}

func (d CardDetails) MethodType() MethodType { return MethodCard }

func (d CardDetails) Validate() error {
	return requireFields(map[string]string{
		"number": d.Number,
		"holder": d.Holder,
		"expiry": d.Expiry,
		"cvv":    d.CVV,
	})
}

type BankAccountDetails struct {
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name,omitempty"`
}

func (d BankAccountDetails) MethodType() MethodType { return MethodBankAccount }

func (d BankAccountDetails) Validate() error {
	return requireFields(map[string]string{
		"account_number": d.AccountNumber,
		"routing_number": d.RoutingNumber,
		"holder_name":    d.HolderName,
	})
}

type WireDetails struct {
	SwiftCode     string `json:"swift_code"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

func (d WireDetails) MethodType() MethodType { return MethodWireTrans }

func (d WireDetails) Validate() error {
	return requireFields(map[string]string{
		"swift_code":     d.SwiftCode,
		"account_number": d.AccountNumber,
		"bank_name":      d.BankName,
	})
}

type SEPADetails struct {
	IBAN       string `json:"iban"`
	BIC        string `json:"bic"`
	HolderName string `json:"holder_name"`
}

func (d SEPADetails) MethodType() MethodType { return MethodSEPA }

func (d SEPADetails) Validate() error {
	return requireFields(map[string]string{
		"iban":        d.IBAN,
		"bic":         d.BIC,
		"holder_name": d.HolderName,
	})
}

// AccountEmailDetails covers wallet providers identified by an email
// (paypal, google_pay, apple_pay).
type AccountEmailDetails struct {
	Type  MethodType `json:"-"`
	Email string     `json:"email"`
}

func (d AccountEmailDetails) MethodType() MethodType { return d.Type }

func (d AccountEmailDetails) Validate() error {
	return requireFields(map[string]string{"email": d.Email})
}

type StripeDetails struct {
	AccountID string `json:"account_id"`
}

func (d StripeDetails) MethodType() MethodType { return MethodStripe }

func (d StripeDetails) Validate() error {
	return requireFields(map[string]string{"account_id": d.AccountID})
}

// CryptoDetails covers crypto address methods (btc, eth, usdt).
type CryptoDetails struct {
	Type    MethodType `json:"-"`
	Address string     `json:"address"`
}

func (d CryptoDetails) MethodType() MethodType { return d.Type }

func (d CryptoDetails) Validate() error {
	return requireFields(map[string]string{"address": d.Address})
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, name)
		}
	}
	return nil
}

// NewMethodDetails builds the typed variant for a method type from raw
// key/value fields, as received on the wire.
func NewMethodDetails(t MethodType, fields map[string]string) (MethodDetails, error) {
	switch t {
	case MethodCard:
		return CardDetails{
			Number: fields["number"],
			Holder: fields["holder"],
			Expiry: fields["expiry"],
			CVV:    fields["cvv"],
		}, nil
	case MethodBankAccount:
		return BankAccountDetails{
			AccountNumber: fields["account_number"],
			RoutingNumber: fields["routing_number"],
			HolderName:    fields["holder_name"],
			BankName:      fields["bank_name"],
		}, nil
	case MethodWireTrans:
		return WireDetails{
			SwiftCode:     fields["swift_code"],
			AccountNumber: fields["account_number"],
			BankName:      fields["bank_name"],
		}, nil
	case MethodSEPA:
		return SEPADetails{
			IBAN:       fields["iban"],
			BIC:        fields["bic"],
			HolderName: fields["holder_name"],
		}, nil
	case MethodPayPal, MethodGooglePay, MethodApplePay:
		return AccountEmailDetails{Type: t, Email: fields["email"]}, nil
	case MethodStripe:
		return StripeDetails{AccountID: fields["account_id"]}, nil
	case MethodCryptoBTC, MethodCryptoETH, MethodCryptoUSDT:
		return CryptoDetails{Type: t, Address: fields["address"]}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethodType, t)
	}
}

// PaymentMethod is a registered payment instrument. Immutable after add
// except for the IsDefault and Verified flags.
type PaymentMethod struct {
	ID        string
	WalletID  string
	Type      MethodType
	Label     string
	Details   MethodDetails
	IsDefault bool
	Verified  bool
	AddedAt   time.Time
}

// Validate checks the method and its type-specific details.
func (m *PaymentMethod) Validate() error {
	if m.Details == nil {
		return fmt.Errorf("%w: details", ErrMissingRequiredField)
	}
	if m.Details.MethodType() != m.Type {
		return fmt.Errorf("%w: %s", ErrUnknownMethodType, m.Type)
	}
	return m.Details.Validate()
}
