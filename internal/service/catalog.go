package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
	"comanda/backend/internal/xid"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		var err error
		products, err = tx.Products()
		return err
	})
	return nonNil(products), err
}

func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return s.suggester.Suggest(query, products, limit), nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductRequest) (domain.Product, error) {
	name, price, err := validateProduct(req)
	if err != nil {
		return domain.Product{}, err
	}

	var created domain.Product
	err = s.repo.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(products))
		for _, product := range products {
			ids = append(ids, product.ID)
		}
		created = domain.Product{ID: xid.Next(ids), Name: name, UnitPrice: price}
		tx.SetProducts(append(products, created))
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logEvent("product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%s", created.Name, domain.FormatMoney(created.UnitPrice)))
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int, req domain.ProductRequest) (domain.Product, error) {
	name, price, err := validateProduct(req)
	if err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err = s.repo.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		idx := findProduct(products, id)
		if idx < 0 {
			return domain.NotFoundf("product %d not found", id)
		}

		products[idx].Name = name
		products[idx].UnitPrice = price
		updated = products[idx]
		tx.SetProducts(products)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logEvent("product_update", "product", updated.ID, fmt.Sprintf("name=%s,price=%s", updated.Name, domain.FormatMoney(updated.UnitPrice)))
	return updated, nil
}

// DeleteProduct removes the product from the catalog. Lines already on orders
// keep their copied name and price.
func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		products, err := tx.Products()
		if err != nil {
			return err
		}
		idx := findProduct(products, id)
		if idx < 0 {
			return domain.NotFoundf("product %d not found", id)
		}
		tx.SetProducts(append(products[:idx], products[idx+1:]...))
		return nil
	})
	if err != nil {
		return err
	}

	s.logEvent("product_delete", "product", id, "")
	return nil
}

func validateProduct(req domain.ProductRequest) (string, decimal.Decimal, error) {
	name := domain.DisplayName(req.Name)
	if name == "" {
		return "", decimal.Zero, domain.Validationf("product name is required")
	}
	if !req.Price.IsPositive() {
		return "", decimal.Zero, domain.Validationf("product price must be greater than zero")
	}
	return name, req.Price, nil
}
