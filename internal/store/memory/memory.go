package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
)

// Store keeps collection payloads in process memory. Everything is lost on exit.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// NewSeeded returns a store preloaded with a demo catalog and the demo clients.
func NewSeeded() *Store {
	s := New()

	products := []domain.Product{
		{ID: 1, Name: "Coca Cola Lata", UnitPrice: decimal.RequireFromString("6.00")},
		{ID: 2, Name: "Guaraná Lata", UnitPrice: decimal.RequireFromString("5.50")},
		{ID: 3, Name: "Água Mineral", UnitPrice: decimal.RequireFromString("3.00")},
		{ID: 4, Name: "Cerveja Long Neck", UnitPrice: decimal.RequireFromString("9.90")},
		{ID: 5, Name: "Suco de Laranja", UnitPrice: decimal.RequireFromString("8.00")},
		{ID: 6, Name: "Café Expresso", UnitPrice: decimal.RequireFromString("4.50")},
		{ID: 7, Name: "Pão de Queijo", UnitPrice: decimal.RequireFromString("4.00")},
		{ID: 8, Name: "Coxinha", UnitPrice: decimal.RequireFromString("7.00")},
		{ID: 9, Name: "Pastel de Carne", UnitPrice: decimal.RequireFromString("8.50")},
		{ID: 10, Name: "Porção de Batata Frita", UnitPrice: decimal.RequireFromString("28.00")},
		{ID: 11, Name: "Prato Feito", UnitPrice: decimal.RequireFromString("25.00")},
		{ID: 12, Name: "Pudim", UnitPrice: decimal.RequireFromString("9.00")},
	}
	clients := []domain.Client{
		{ID: 1, Name: "João Silva", Phone: "1234-5678", CreditedOrders: []domain.Order{}},
		{ID: 2, Name: "Maria Souza", Phone: "9876-5432", CreditedOrders: []domain.Order{}},
		{ID: 3, Name: "Carlos Almeida", Phone: "4567-8901", CreditedOrders: []domain.Order{}},
	}

	s.mustSeed(store.KeyProducts, products)
	s.mustSeed(store.KeyClients, clients)
	return s
}

func (s *Store) mustSeed(key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("memory store: encode seed %s: %v", key, err))
	}
	s.data[key] = payload
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := make([]byte, len(payload))
	copy(dup, payload)
	return dup, nil
}

func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	return s.PutAll(ctx, map[string][]byte{key: payload})
}

func (s *Store) PutAll(_ context.Context, payloads map[string][]byte) error {
	dups := make(map[string][]byte, len(payloads))
	for key, payload := range payloads {
		dup := make([]byte, len(payload))
		copy(dup, payload)
		dups[key] = dup
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, dup := range dups {
		s.data[key] = dup
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
