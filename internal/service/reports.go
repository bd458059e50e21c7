package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
)

const reportDayLayout = "2006-01-02"

// ComputeReport combines the report log, which only holds deleted orders and
// settled credit, with the closed orders still on the ledger. The two sources
// never describe the same payment.
func (s *Service) ComputeReport(ctx context.Context, filter domain.ReportFilter) (domain.Report, error) {
	var entries []domain.ReportEntry
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		logged, err := tx.Reports()
		if err != nil {
			return err
		}
		orders, err := tx.Orders()
		if err != nil {
			return err
		}

		entries = make([]domain.ReportEntry, 0, len(logged)+len(orders))
		entries = append(entries, logged...)
		for _, order := range orders {
			if order.IsClosed {
				entries = append(entries, order.ReportEntry())
			}
		}
		return nil
	})
	if err != nil {
		return domain.Report{}, err
	}

	return aggregate(entries, filter), nil
}

func aggregate(entries []domain.ReportEntry, filter domain.ReportFilter) domain.Report {
	report := domain.Report{
		Entries:   []domain.ReportEntry{},
		TotalPaid: decimal.Zero,
		ByPayment: []domain.ReportPayment{},
		ByDay:     []domain.ReportDay{},
	}
	byPayment := map[domain.PaymentMethod]*domain.ReportPayment{}
	byDay := map[string]*domain.ReportDay{}

	for _, entry := range entries {
		if !filter.Includes(entry.Date) {
			continue
		}
		report.Entries = append(report.Entries, entry)
		report.TotalPaid = report.TotalPaid.Add(entry.AmountPaid)

		payment, ok := byPayment[entry.PaymentMethod]
		if !ok {
			payment = &domain.ReportPayment{PaymentMethod: entry.PaymentMethod, Total: decimal.Zero}
			byPayment[entry.PaymentMethod] = payment
		}
		payment.Entries++
		payment.Total = payment.Total.Add(entry.AmountPaid)

		key := entry.Date.UTC().Format(reportDayLayout)
		day, ok := byDay[key]
		if !ok {
			day = &domain.ReportDay{Date: key, Total: decimal.Zero}
			byDay[key] = day
		}
		day.Entries++
		day.Total = day.Total.Add(entry.AmountPaid)
	}

	for _, payment := range byPayment {
		report.ByPayment = append(report.ByPayment, *payment)
	}
	sort.Slice(report.ByPayment, func(i, j int) bool {
		return report.ByPayment[i].PaymentMethod < report.ByPayment[j].PaymentMethod
	})

	for _, day := range byDay {
		report.ByDay = append(report.ByDay, *day)
	}
	sort.Slice(report.ByDay, func(i, j int) bool {
		return report.ByDay[i].Date < report.ByDay[j].Date
	})

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Date.Before(report.Entries[j].Date)
	})
	return report
}
