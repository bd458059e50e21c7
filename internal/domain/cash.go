package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CashBucket string

const (
	BucketCash       CashBucket = "cash"
	BucketCreditCard CashBucket = "creditCard"
	BucketDebitCard  CashBucket = "debitCard"
	BucketPix        CashBucket = "pix"
)

func ParseCashBucket(raw string) (CashBucket, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return BucketCash, nil
	case "creditcard":
		return BucketCreditCard, nil
	case "debitcard":
		return BucketDebitCard, nil
	case "pix":
		return BucketPix, nil
	default:
		return "", Validationf("unknown cash bucket %q", raw)
	}
}

type CashTotals struct {
	Cash       decimal.Decimal `json:"cash"`
	CreditCard decimal.Decimal `json:"creditCard"`
	DebitCard  decimal.Decimal `json:"debitCard"`
	Pix        decimal.Decimal `json:"pix"`
}

func (t CashTotals) Sum() decimal.Decimal {
	return t.Cash.Add(t.CreditCard).Add(t.DebitCard).Add(t.Pix)
}

func (t *CashTotals) add(bucket CashBucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCash:
		t.Cash = t.Cash.Add(amount)
	case BucketCreditCard:
		t.CreditCard = t.CreditCard.Add(amount)
	case BucketDebitCard:
		t.DebitCard = t.DebitCard.Add(amount)
	case BucketPix:
		t.Pix = t.Pix.Add(amount)
	}
}

// CashSession is the register period between open and close.
type CashSession struct {
	IsOpen     bool       `json:"isOpen"`
	OpenedAt   *time.Time `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt"`
	Totals     CashTotals `json:"totals"`
	OrderCount int        `json:"orderCount"`
}

// Open resets every total and starts a new period.
func (s *CashSession) Open(at time.Time) error {
	if s.IsOpen {
		return Constraintf("cash session already open")
	}
	openedAt := at.UTC()
	*s = CashSession{
		IsOpen:   true,
		OpenedAt: &openedAt,
		Totals: CashTotals{
			Cash:       decimal.Zero,
			CreditCard: decimal.Zero,
			DebitCard:  decimal.Zero,
			Pix:        decimal.Zero,
		},
	}
	return nil
}

func (s *CashSession) Record(bucket CashBucket, amount decimal.Decimal) error {
	parsed, err := ParseCashBucket(string(bucket))
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return Validationf("transaction amount must be greater than zero")
	}
	if !s.IsOpen {
		return Constraintf("cash session is closed")
	}
	s.Totals.add(parsed, amount)
	s.OrderCount++
	return nil
}

// Close freezes the totals. The returned copy is the end-of-day snapshot.
func (s *CashSession) Close(at time.Time) (CashSession, error) {
	if !s.IsOpen {
		return CashSession{}, Constraintf("cash session is not open")
	}
	closedAt := at.UTC()
	s.IsOpen = false
	s.ClosedAt = &closedAt
	return *s, nil
}

func (s CashSession) GrandTotal() decimal.Decimal {
	return s.Totals.Sum()
}
