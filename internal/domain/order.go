package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice * Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an open tab (comanda). Total always equals the sum of its line
// subtotals and TotalPaid never exceeds Total.
type Order struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	IsClosed      bool            `json:"isClosed"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	ClientID      *int            `json:"clientId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func NewOrder(id int64, name string, createdAt time.Time) (Order, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Order{}, Validationf("order name is required")
	}
	return Order{
		ID:        id,
		Name:      name,
		Items:     []OrderItem{},
		Total:     decimal.Zero,
		TotalPaid: decimal.Zero,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// Due is what is still owed on the order.
func (o Order) Due() decimal.Decimal {
	return o.Total.Sub(o.TotalPaid)
}

func (o Order) findItem(name string) int {
	for i, item := range o.Items {
		if strings.EqualFold(item.Name, name) {
			return i
		}
	}
	return -1
}

// AddItem adds quantity units of product. A line whose name matches the product
// case-insensitively grows instead of a second line being appended; its unit
// price stays the one recorded when the line was opened.
func (o *Order) AddItem(product Product, quantity int) error {
	if quantity <= 0 {
		return Validationf("quantity must be a positive integer")
	}
	if o.IsClosed {
		return Constraintf("order %q is closed", o.Name)
	}

	qty := decimal.NewFromInt(int64(quantity))
	if idx := o.findItem(product.Name); idx >= 0 {
		line := o.Items[idx]
		o.Items[idx].Quantity = line.Quantity + quantity
		o.Total = o.Total.Add(line.UnitPrice.Mul(qty))
		return nil
	}

	o.Items = append(o.Items, OrderItem{
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
	})
	o.Total = o.Total.Add(product.UnitPrice.Mul(qty))
	return nil
}

// RemoveItem takes quantity units off the named line, dropping the line when it
// reaches zero.
func (o *Order) RemoveItem(name string, quantity int) error {
	if quantity <= 0 {
		return Validationf("quantity to remove must be a positive integer")
	}
	if o.IsClosed {
		return Constraintf("order %q is closed", o.Name)
	}
	idx := o.findItem(strings.TrimSpace(name))
	if idx < 0 {
		return NotFoundf("item %q is not on order %q", name, o.Name)
	}

	line := o.Items[idx]
	if quantity > line.Quantity {
		return Constraintf("cannot remove %d x %s, only %d on the order", quantity, line.Name, line.Quantity)
	}
	total := o.Total.Sub(line.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	if total.IsNegative() {
		return Constraintf("removing %d x %s would make the order total negative", quantity, line.Name)
	}
	if total.LessThan(o.TotalPaid) {
		return Constraintf("removing %d x %s would drop the total below the %s already paid", quantity, line.Name, FormatMoney(o.TotalPaid))
	}

	remaining := line.Quantity - quantity
	if remaining == 0 {
		items := make([]OrderItem, 0, len(o.Items)-1)
		items = append(items, o.Items[:idx]...)
		o.Items = append(items, o.Items[idx+1:]...)
	} else {
		o.Items[idx].Quantity = remaining
	}
	o.Total = total
	return nil
}

// ApplyPayment is the numeric payment path. The order closes once TotalPaid
// reaches Total.
func (o *Order) ApplyPayment(amount decimal.Decimal, method PaymentMethod) error {
	if !amount.IsPositive() {
		return Validationf("payment amount must be greater than zero")
	}
	if o.IsClosed {
		return Constraintf("order %q is already closed", o.Name)
	}
	paid := o.TotalPaid.Add(amount)
	if paid.GreaterThan(o.Total) {
		return Constraintf("payment of %s exceeds the %s still due", FormatMoney(amount), FormatMoney(o.Due()))
	}

	o.TotalPaid = paid
	o.PaymentMethod = method
	o.IsClosed = paid.GreaterThanOrEqual(o.Total)
	return nil
}

// TransferToClient is the fiado path: the whole order becomes the client's
// liability. The client receives a snapshot and the order is closed regardless
// of TotalPaid. Money already collected keeps the method it was paid with.
func (o *Order) TransferToClient(client *Client) error {
	if client == nil {
		return Validationf("a client is required for fiado")
	}
	if o.IsClosed {
		return Constraintf("order %q is already closed", o.Name)
	}

	clientID := client.ID
	if o.TotalPaid.IsZero() {
		o.PaymentMethod = PaymentFiado
	}
	o.ClientID = &clientID
	client.CreditedOrders = append(client.CreditedOrders, o.Snapshot())
	o.IsClosed = true
	return nil
}

// Snapshot returns a deep copy.
func (o Order) Snapshot() Order {
	dup := o
	dup.Items = make([]OrderItem, len(o.Items))
	copy(dup.Items, o.Items)
	if o.ClientID != nil {
		id := *o.ClientID
		dup.ClientID = &id
	}
	return dup
}

// ReportEntry projects the order onto the payment log.
func (o Order) ReportEntry() ReportEntry {
	return ReportEntry{
		Date:          o.CreatedAt,
		AmountPaid:    o.TotalPaid,
		PaymentMethod: o.PaymentMethod,
	}
}
