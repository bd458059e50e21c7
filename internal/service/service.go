package service

import (
	"time"

	"github.com/rs/zerolog/log"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
	"comanda/backend/internal/suggestion"
)

// CashReportExporter renders the frozen end-of-day report. It runs after the
// close is persisted, so a failure never undoes the close.
type CashReportExporter interface {
	ExportCashReport(session domain.CashSession) (string, error)
}

type Service struct {
	repo      *store.Repository
	suggester *suggestion.Engine
	exporter  CashReportExporter
	now       func() time.Time
}

func New(repo *store.Repository, suggester *suggestion.Engine, exporter CashReportExporter) *Service {
	if suggester == nil {
		suggester = suggestion.NewEngine(suggestion.DefaultLimit)
	}

	return &Service{
		repo:      repo,
		suggester: suggester,
		exporter:  exporter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// logEvent leaves an audit record of every committed mutation.
func (s *Service) logEvent(action string, entityType string, entityID any, detail string) {
	log.Info().
		Str("action", action).
		Str("entity_type", entityType).
		Interface("entity_id", entityID).
		Str("detail", detail).
		Msg("audit")
}

func findProduct(products []domain.Product, id int) int {
	for i, product := range products {
		if product.ID == id {
			return i
		}
	}
	return -1
}

func findClient(clients []domain.Client, id int) int {
	for i, client := range clients {
		if client.ID == id {
			return i
		}
	}
	return -1
}

func findOrder(orders []domain.Order, id int64) int {
	for i, order := range orders {
		if order.ID == id {
			return i
		}
	}
	return -1
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
