package service

import (
	"context"
	"fmt"
	"strings"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
	"comanda/backend/internal/xid"
)

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		var err error
		clients, err = tx.Clients()
		return err
	})
	for i := range clients {
		clients[i].CreditedOrders = nonNil(clients[i].CreditedOrders)
	}
	return nonNil(clients), err
}

func (s *Service) GetClient(ctx context.Context, id int) (domain.Client, error) {
	var client domain.Client
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}
		idx := findClient(clients, id)
		if idx < 0 {
			return domain.NotFoundf("client %d not found", id)
		}
		client = clients[idx]
		return nil
	})
	client.CreditedOrders = nonNil(client.CreditedOrders)
	return client, err
}

func (s *Service) CreateClient(ctx context.Context, req domain.ClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.Validationf("client name is required")
	}

	var created domain.Client
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(clients))
		for _, client := range clients {
			ids = append(ids, client.ID)
		}
		created = domain.Client{
			ID:             xid.Next(ids),
			Name:           name,
			Phone:          strings.TrimSpace(req.Phone),
			CreditedOrders: []domain.Order{},
		}
		tx.SetClients(append(clients, created))
		return nil
	})
	if err != nil {
		return domain.Client{}, err
	}

	s.logEvent("client_create", "client", created.ID, "name="+created.Name)
	return created, nil
}

// UpdateClient changes contact details only; credited orders are untouched.
func (s *Service) UpdateClient(ctx context.Context, id int, req domain.ClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.Validationf("client name is required")
	}

	var updated domain.Client
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}
		idx := findClient(clients, id)
		if idx < 0 {
			return domain.NotFoundf("client %d not found", id)
		}
		clients[idx].Name = name
		clients[idx].Phone = strings.TrimSpace(req.Phone)
		updated = clients[idx]
		tx.SetClients(clients)
		return nil
	})
	if err != nil {
		return domain.Client{}, err
	}

	updated.CreditedOrders = nonNil(updated.CreditedOrders)
	s.logEvent("client_update", "client", updated.ID, "name="+updated.Name)
	return updated, nil
}

// DeleteClient refuses while the client still owes on a credited order.
func (s *Service) DeleteClient(ctx context.Context, id int) error {
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}
		idx := findClient(clients, id)
		if idx < 0 {
			return domain.NotFoundf("client %d not found", id)
		}
		if due := clients[idx].Due(); due.IsPositive() {
			return domain.Constraintf("client %q still owes %s", clients[idx].Name, domain.FormatMoney(due))
		}
		tx.SetClients(append(clients[:idx], clients[idx+1:]...))
		return nil
	})
	if err != nil {
		return err
	}

	s.logEvent("client_delete", "client", id, "")
	return nil
}

// SettleCreditedOrder collects what is left on a credited order. The snapshot
// leaves the client and the collected amount enters the report log, and the
// open cash session when there is one.
func (s *Service) SettleCreditedOrder(ctx context.Context, clientID int, orderID int64, req domain.SettleRequest) (domain.SettlementResponse, error) {
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return domain.SettlementResponse{}, err
	}
	if method == domain.PaymentFiado {
		return domain.SettlementResponse{}, domain.Validationf("a credited order cannot be settled with %s", domain.PaymentFiado)
	}

	var resp domain.SettlementResponse
	err = s.repo.Update(ctx, func(tx *store.Tx) error {
		clients, err := tx.Clients()
		if err != nil {
			return err
		}
		idx := findClient(clients, clientID)
		if idx < 0 {
			return domain.NotFoundf("client %d not found", clientID)
		}
		client := clients[idx]
		orderIdx := findOrder(client.CreditedOrders, orderID)
		if orderIdx < 0 {
			return domain.NotFoundf("order %d is not credited to client %q", orderID, client.Name)
		}

		credited := client.CreditedOrders[orderIdx]
		entry := domain.ReportEntry{
			Date:          s.now(),
			AmountPaid:    credited.Due(),
			PaymentMethod: method,
		}

		remaining := make([]domain.Order, 0, len(client.CreditedOrders)-1)
		remaining = append(remaining, client.CreditedOrders[:orderIdx]...)
		client.CreditedOrders = append(remaining, client.CreditedOrders[orderIdx+1:]...)
		clients[idx] = client
		tx.SetClients(clients)

		if entry.AmountPaid.IsPositive() {
			reports, err := tx.Reports()
			if err != nil {
				return err
			}
			tx.SetReports(append(reports, entry))

			if err := recordInSession(tx, method, entry.AmountPaid); err != nil {
				return err
			}
		}

		resp = domain.SettlementResponse{Client: client, ReportEntry: entry}
		return nil
	})
	if err != nil {
		return domain.SettlementResponse{}, err
	}

	s.logEvent("client_settle", "client", clientID, fmt.Sprintf("order=%d,amount=%s,method=%s", orderID, domain.FormatMoney(resp.ReportEntry.AmountPaid), method))
	return resp, nil
}
