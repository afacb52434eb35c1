// Package domain defines the double-entry ledger. Every financial state
// transition produces one transaction whose entries debit and credit the same
// total, and the ledger is append-only.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/errors"
)

// Direction tells whether an entry debits or credits its account.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Account names the ledger accounts the engine books against.
type Account string

const (
	// AccountPSPClearing tracks funds held at the payment provider.
	AccountPSPClearing Account = "psp_clearing"
	// AccountMerchantPayable tracks what is owed to the merchant.
	AccountMerchantPayable Account = "merchant_payable"
)

// TransactionKind tells what business movement a transaction books.
type TransactionKind string

const (
	TransactionKindPayment       TransactionKind = "payment"
	TransactionKindRefund        TransactionKind = "refund"
	TransactionKindPartialRefund TransactionKind = "partial_refund"
)

// Entry is one leg of a ledger transaction. Amount is always positive, the
// direction carries the sign.
type Entry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Account       Account
	Direction     Direction
	Amount        int64
	Currency      string
	CreatedAt     time.Time
}

// Transaction groups the entries booked for one financial event.
type Transaction struct {
	ID              uuid.UUID
	PaymentIntentID uuid.UUID
	RefundID        *uuid.UUID
	Kind            TransactionKind
	Entries         []*Entry
	CreatedAt       time.Time
}

// ErrUnbalancedTransaction indicates the entries of a transaction do not
// debit and credit the same totals.
var ErrUnbalancedTransaction = errors.New("ledger transaction entries are not balanced")

// Balanced reports whether debits equal credits per currency.
func (t *Transaction) Balanced() bool {
	if len(t.Entries) == 0 {
		return false
	}
	totals := make(map[string]int64)
	for _, entry := range t.Entries {
		if entry.Amount <= 0 {
			return false
		}
		switch entry.Direction {
		case DirectionDebit:
			totals[entry.Currency] += entry.Amount
		case DirectionCredit:
			totals[entry.Currency] -= entry.Amount
		default:
			return false
		}
	}
	for _, total := range totals {
		if total != 0 {
			return false
		}
	}
	return true
}

// NewPaymentTransaction books a successful charge: funds arrive at the PSP
// and become payable to the merchant.
func NewPaymentTransaction(intentID uuid.UUID, amount int64, currency string) *Transaction {
	txID := uuid.Must(uuid.NewV7())
	return &Transaction{
		ID:              txID,
		PaymentIntentID: intentID,
		Kind:            TransactionKindPayment,
		Entries: []*Entry{
			{
				ID:            uuid.Must(uuid.NewV7()),
				TransactionID: txID,
				Account:       AccountPSPClearing,
				Direction:     DirectionDebit,
				Amount:        amount,
				Currency:      currency,
			},
			{
				ID:            uuid.Must(uuid.NewV7()),
				TransactionID: txID,
				Account:       AccountMerchantPayable,
				Direction:     DirectionCredit,
				Amount:        amount,
				Currency:      currency,
			},
		},
	}
}

// NewRefundTransaction books a refund: the merchant payable shrinks and the
// funds flow back out through the PSP. The kind records whether the refund
// covers the full paid amount or only part of it.
func NewRefundTransaction(intentID, refundID uuid.UUID, amount int64, currency string, kind TransactionKind) *Transaction {
	txID := uuid.Must(uuid.NewV7())
	return &Transaction{
		ID:              txID,
		PaymentIntentID: intentID,
		RefundID:        &refundID,
		Kind:            kind,
		Entries: []*Entry{
			{
				ID:            uuid.Must(uuid.NewV7()),
				TransactionID: txID,
				Account:       AccountMerchantPayable,
				Direction:     DirectionDebit,
				Amount:        amount,
				Currency:      currency,
			},
			{
				ID:            uuid.Must(uuid.NewV7()),
				TransactionID: txID,
				Account:       AccountPSPClearing,
				Direction:     DirectionCredit,
				Amount:        amount,
				Currency:      currency,
			},
		},
	}
}
