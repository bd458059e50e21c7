package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type ProductRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// Client holds copies of the orders extended to them on credit. A snapshot never
// follows later changes to the ledger order it was taken from.
type Client struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	CreditedOrders []Order `json:"creditedOrders"`
}

type ClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

// UnmarshalJSON also accepts the older "orders" field for credited orders.
func (c *Client) UnmarshalJSON(data []byte) error {
	type plain Client
	var raw struct {
		plain
		LegacyOrders []Order `json:"orders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Client(raw.plain)
	if c.CreditedOrders == nil && raw.LegacyOrders != nil {
		c.CreditedOrders = raw.LegacyOrders
	}
	return nil
}

// Due is the sum still owed across every credited order.
func (c Client) Due() decimal.Decimal {
	due := decimal.Zero
	for _, order := range c.CreditedOrders {
		due = due.Add(order.Due())
	}
	return due
}

type SettleRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type SettlementResponse struct {
	Client      Client      `json:"client"`
	ReportEntry ReportEntry `json:"report_entry"`
}

type OrderCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

type ItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	ClientID      *int            `json:"client_id,omitempty"`
}

type PaymentResponse struct {
	Order       Order   `json:"order"`
	Client      *Client `json:"client,omitempty"`
	Transferred bool    `json:"transferred"`
}

type OrderDeleteResponse struct {
	OrderID     int64        `json:"order_id"`
	ReportEntry *ReportEntry `json:"report_entry,omitempty"`
}

// ReportEntry is an immutable payment fact kept after its order left the ledger.
type ReportEntry struct {
	Date          time.Time       `json:"date"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
}

// ReportFilter bounds entries by date: From inclusive, To exclusive. A nil bound
// is open.
type ReportFilter struct {
	From *time.Time
	To   *time.Time
}

func (f ReportFilter) Includes(at time.Time) bool {
	if f.From != nil && at.Before(*f.From) {
		return false
	}
	if f.To != nil && !at.Before(*f.To) {
		return false
	}
	return true
}

type ReportPayment struct {
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Entries       int             `json:"entries"`
	Total         decimal.Decimal `json:"total"`
}

type ReportDay struct {
	Date    string          `json:"date"`
	Entries int             `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}

type Report struct {
	Entries   []ReportEntry   `json:"entries"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	ByPayment []ReportPayment `json:"by_payment"`
	ByDay     []ReportDay     `json:"by_day"`
}

type CashTransactionRequest struct {
	Bucket string          `json:"bucket" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type CashCloseResponse struct {
	Session    CashSession `json:"session"`
	ExportPath string      `json:"export_path,omitempty"`
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Dinheiro"
	PaymentPix    PaymentMethod = "Pix"
	PaymentDebit  PaymentMethod = "Débito"
	PaymentCredit PaymentMethod = "Crédito"
	PaymentFiado  PaymentMethod = "Fiado"
)

var accentFolder = strings.NewReplacer("é", "e", "É", "e")

// ParsePaymentMethod accepts any casing and the unaccented spellings ("debito").
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	key := strings.ToLower(accentFolder.Replace(strings.TrimSpace(raw)))
	switch key {
	case "dinheiro":
		return PaymentCash, nil
	case "pix":
		return PaymentPix, nil
	case "debito":
		return PaymentDebit, nil
	case "credito":
		return PaymentCredit, nil
	case "fiado":
		return PaymentFiado, nil
	default:
		return "", Validationf("unknown payment method %q", raw)
	}
}

// Bucket is the cash-session bucket a payment lands in. Fiado has none.
func (m PaymentMethod) Bucket() (CashBucket, bool) {
	switch m {
	case PaymentCash:
		return BucketCash, true
	case PaymentPix:
		return BucketPix, true
	case PaymentDebit:
		return BucketDebitCard, true
	case PaymentCredit:
		return BucketCreditCard, true
	default:
		return "", false
	}
}

// DisplayName trims the name and upper-cases its first letter.
func DisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}

// FormatMoney renders a value with the two places used for display and export.
func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}
