package service

import (
	"context"
	"fmt"
	"strings"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
	"comanda/backend/internal/xid"
)

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		var err error
		orders, err = tx.Orders()
		return err
	})
	return nonNil(orders), err
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		idx := findOrder(orders, id)
		if idx < 0 {
			return domain.NotFoundf("order %d not found", id)
		}
		order = orders[idx]
		return nil
	})
	return order, err
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	var created domain.Order
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}

		now := s.now()
		id := xid.FromTime(now, func(id int64) bool { return findOrder(orders, id) >= 0 })
		created, err = domain.NewOrder(id, req.Name, now)
		if err != nil {
			return err
		}
		tx.SetOrders(append(orders, created))
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logEvent("order_create", "order", created.ID, "name="+created.Name)
	return created, nil
}

// AddItem resolves the name against the catalog, ignoring case, and adds the
// product under its catalog name.
func (s *Service) AddItem(ctx context.Context, orderID int64, req domain.ItemRequest) (domain.Order, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Order{}, domain.Validationf("item name is required")
	}

	var product domain.Product
	order, err := s.mutateOrder(ctx, orderID, func(tx *store.Tx, order *domain.Order) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		found := false
		for _, candidate := range products {
			if strings.EqualFold(candidate.Name, name) {
				product = candidate
				found = true
				break
			}
		}
		if !found {
			return domain.NotFoundf("product %q is not in the catalog", name)
		}
		return order.AddItem(product, req.Quantity)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logEvent("order_add_item", "order", order.ID, fmt.Sprintf("item=%s,qty=%d,total=%s", product.Name, req.Quantity, domain.FormatMoney(order.Total)))
	return order, nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID int64, req domain.ItemRequest) (domain.Order, error) {
	order, err := s.mutateOrder(ctx, orderID, func(_ *store.Tx, order *domain.Order) error {
		return order.RemoveItem(req.Name, req.Quantity)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logEvent("order_remove_item", "order", order.ID, fmt.Sprintf("item=%s,qty=%d,total=%s", strings.TrimSpace(req.Name), req.Quantity, domain.FormatMoney(order.Total)))
	return order, nil
}

// ApplyPayment takes one of two paths. Fiado with a client transfers the whole
// order onto that client and closes it without touching TotalPaid. Anything
// else is a numeric payment, recorded in the open cash session when the method
// has a bucket.
func (s *Service) ApplyPayment(ctx context.Context, orderID int64, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return domain.PaymentResponse{}, err
	}

	if method == domain.PaymentFiado && req.ClientID != nil {
		return s.transferToClient(ctx, orderID, *req.ClientID)
	}

	order, err := s.mutateOrder(ctx, orderID, func(tx *store.Tx, order *domain.Order) error {
		if err := order.ApplyPayment(req.Amount, method); err != nil {
			return err
		}
		return recordInSession(tx, method, req.Amount)
	})
	if err != nil {
		return domain.PaymentResponse{}, err
	}

	s.logEvent("order_payment", "order", order.ID, fmt.Sprintf("amount=%s,method=%s,paid=%s,closed=%t", domain.FormatMoney(req.Amount), method, domain.FormatMoney(order.TotalPaid), order.IsClosed))
	return domain.PaymentResponse{Order: order}, nil
}

func (s *Service) transferToClient(ctx context.Context, orderID int64, clientID int) (domain.PaymentResponse, error) {
	var client domain.Client
	order, err := s.mutateOrder(ctx, orderID, func(tx *store.Tx, order *domain.Order) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}
		idx := findClient(clients, clientID)
		if idx < 0 {
			return domain.NotFoundf("client %d not found", clientID)
		}

		client = clients[idx]
		if err := order.TransferToClient(&client); err != nil {
			return err
		}
		clients[idx] = client
		tx.SetClients(clients)
		return nil
	})
	if err != nil {
		return domain.PaymentResponse{}, err
	}

	s.logEvent("order_fiado", "order", order.ID, fmt.Sprintf("client=%d,total=%s,paid=%s", clientID, domain.FormatMoney(order.Total), domain.FormatMoney(order.TotalPaid)))
	return domain.PaymentResponse{Order: order, Client: &client, Transferred: true}, nil
}

// DeleteOrder removes an order from the ledger. An open order needs confirmed.
// Whatever was paid on it moves to the report log first.
func (s *Service) DeleteOrder(ctx context.Context, id int64, confirmed bool) (domain.OrderDeleteResponse, error) {
	resp := domain.OrderDeleteResponse{OrderID: id}
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		idx := findOrder(orders, id)
		if idx < 0 {
			return domain.NotFoundf("order %d not found", id)
		}
		order := orders[idx]
		if !order.IsClosed && !confirmed {
			return domain.ConfirmationRequiredf("order %q is still open; confirm to delete it", order.Name)
		}

		if order.TotalPaid.IsPositive() {
			reports, err := tx.Reports()
			if err != nil {
				return err
			}
			entry := order.ReportEntry()
			tx.SetReports(append(reports, entry))
			resp.ReportEntry = &entry
		}

		tx.SetOrders(append(orders[:idx], orders[idx+1:]...))
		return nil
	})
	if err != nil {
		return domain.OrderDeleteResponse{}, err
	}

	s.logEvent("order_delete", "order", id, fmt.Sprintf("archived=%t", resp.ReportEntry != nil))
	return resp, nil
}

func (s *Service) mutateOrder(ctx context.Context, orderID int64, fn func(tx *store.Tx, order *domain.Order) error) (domain.Order, error) {
	var result domain.Order
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		idx := findOrder(orders, orderID)
		if idx < 0 {
			return domain.NotFoundf("order %d not found", orderID)
		}

		order := orders[idx].Snapshot()
		if err := fn(tx, &order); err != nil {
			return err
		}
		orders[idx] = order
		tx.SetOrders(orders)
		result = order
		return nil
	})
	return result, err
}
