package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"comanda/backend/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Collection keys. Each key holds the whole collection as one JSON document.
const (
	KeyProducts    = "products"
	KeyClients     = "clients"
	KeyOrders      = "orders"
	KeyReports     = "reports"
	KeyCashSession = "cashSession"
	KeyCashReport  = "cashReport"

	// Older installs wrote the report log under this key.
	keyLegacyReports = "paymentReport"
)

// Backend persists opaque collection payloads. Get returns ErrNotFound for a key
// that was never written. PutAll writes every payload or none of them.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutAll(ctx context.Context, payloads map[string][]byte) error
	Close() error
}

// Repository is the single owner of the persisted collections. Writers are
// serialized; readers see the last committed state.
type Repository struct {
	mu      sync.RWMutex
	backend Backend
}

func NewRepository(backend Backend) *Repository {
	return &Repository{backend: backend}
}

func (r *Repository) Close() error {
	return r.backend.Close()
}

// View runs fn against a read-only view. Anything fn sets is discarded.
func (r *Repository) View(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(newTx(ctx, r.backend))
}

// Update runs fn and, when it returns nil, writes back every collection fn set.
// A failing fn persists nothing.
func (r *Repository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := newTx(ctx, r.backend)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Tx loads collections lazily and tracks which ones were replaced.
type Tx struct {
	ctx     context.Context
	backend Backend
	cache   map[string]any
	dirty   map[string]bool
}

func newTx(ctx context.Context, backend Backend) *Tx {
	return &Tx{
		ctx:     ctx,
		backend: backend,
		cache:   make(map[string]any),
		dirty:   make(map[string]bool),
	}
}

func (tx *Tx) Products() ([]domain.Product, error) {
	return load[[]domain.Product](tx, KeyProducts)
}

func (tx *Tx) SetProducts(products []domain.Product) {
	stage(tx, KeyProducts, products)
}

func (tx *Tx) Clients() ([]domain.Client, error) {
	return load[[]domain.Client](tx, KeyClients)
}

func (tx *Tx) SetClients(clients []domain.Client) {
	stage(tx, KeyClients, clients)
}

func (tx *Tx) Orders() ([]domain.Order, error) {
	return load[[]domain.Order](tx, KeyOrders)
}

func (tx *Tx) SetOrders(orders []domain.Order) {
	stage(tx, KeyOrders, orders)
}

// Reports returns the report log, falling back to the legacy key when the
// current one was never written.
func (tx *Tx) Reports() ([]domain.ReportEntry, error) {
	if _, ok := tx.cache[KeyReports]; !ok {
		payload, err := tx.backend.Get(tx.ctx, KeyReports)
		if errors.Is(err, ErrNotFound) {
			payload, err = tx.backend.Get(tx.ctx, keyLegacyReports)
		}
		var entries []domain.ReportEntry
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("load %s: %w", KeyReports, err)
		default:
			if err := json.Unmarshal(payload, &entries); err != nil {
				return nil, fmt.Errorf("decode %s: %w", KeyReports, err)
			}
		}
		tx.cache[KeyReports] = entries
	}
	return tx.cache[KeyReports].([]domain.ReportEntry), nil
}

func (tx *Tx) SetReports(entries []domain.ReportEntry) {
	stage(tx, KeyReports, entries)
}

func (tx *Tx) CashSession() (domain.CashSession, error) {
	return load[domain.CashSession](tx, KeyCashSession)
}

func (tx *Tx) SetCashSession(session domain.CashSession) {
	stage(tx, KeyCashSession, session)
}

// CashReport is the snapshot frozen by the last close, nil before the first one.
func (tx *Tx) CashReport() (*domain.CashSession, error) {
	return load[*domain.CashSession](tx, KeyCashReport)
}

func (tx *Tx) SetCashReport(report domain.CashSession) {
	stage(tx, KeyCashReport, &report)
}

func (tx *Tx) commit() error {
	if len(tx.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tx.dirty))
	for key := range tx.dirty {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	payloads := make(map[string][]byte, len(keys))
	for _, key := range keys {
		payload, err := json.Marshal(tx.cache[key])
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		payloads[key] = payload
	}
	if err := tx.backend.PutAll(tx.ctx, payloads); err != nil {
		return fmt.Errorf("save %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}

func load[T any](tx *Tx, key string) (T, error) {
	if cached, ok := tx.cache[key]; ok {
		return cached.(T), nil
	}

	var value T
	payload, err := tx.backend.Get(tx.ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return value, fmt.Errorf("load %s: %w", key, err)
	default:
		if err := json.Unmarshal(payload, &value); err != nil {
			return value, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	tx.cache[key] = value
	return value, nil
}

func stage[T any](tx *Tx, key string, value T) {
	tx.cache[key] = value
	tx.dirty[key] = true
}
