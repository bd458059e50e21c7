package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"comanda/backend/internal/domain"
	"comanda/backend/internal/store"
)

func (s *Service) GetCashSession(ctx context.Context) (domain.CashSession, error) {
	var session domain.CashSession
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		var err error
		session, err = tx.CashSession()
		return err
	})
	return session, err
}

func (s *Service) OpenCashSession(ctx context.Context) (domain.CashSession, error) {
	var session domain.CashSession
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		var err error
		session, err = tx.CashSession()
		if err != nil {
			return err
		}
		if err := session.Open(s.now()); err != nil {
			return err
		}
		tx.SetCashSession(session)
		return nil
	})
	if err != nil {
		return domain.CashSession{}, err
	}

	s.logEvent("cash_open", "cash_session", session.OpenedAt.Unix(), "")
	return session, nil
}

func (s *Service) RecordCashTransaction(ctx context.Context, req domain.CashTransactionRequest) (domain.CashSession, error) {
	bucket, err := domain.ParseCashBucket(req.Bucket)
	if err != nil {
		return domain.CashSession{}, err
	}

	var session domain.CashSession
	err = s.repo.Update(ctx, func(tx *store.Tx) error {
		var err error
		session, err = tx.CashSession()
		if err != nil {
			return err
		}
		if err := session.Record(bucket, req.Amount); err != nil {
			return err
		}
		tx.SetCashSession(session)
		return nil
	})
	if err != nil {
		return domain.CashSession{}, err
	}

	s.logEvent("cash_record", "cash_session", session.OpenedAt.Unix(), fmt.Sprintf("bucket=%s,amount=%s", bucket, domain.FormatMoney(req.Amount)))
	return session, nil
}

// CloseCashSession freezes the session as the last cash report, replacing the
// previous one, and hands it to the exporter.
func (s *Service) CloseCashSession(ctx context.Context) (domain.CashCloseResponse, error) {
	var report domain.CashSession
	err := s.repo.Update(ctx, func(tx *store.Tx) error {
		session, err := tx.CashSession()
		if err != nil {
			return err
		}
		report, err = session.Close(s.now())
		if err != nil {
			return err
		}
		tx.SetCashSession(session)
		tx.SetCashReport(report)
		return nil
	})
	if err != nil {
		return domain.CashCloseResponse{}, err
	}

	s.logEvent("cash_close", "cash_session", report.OpenedAt.Unix(), fmt.Sprintf("orders=%d,total=%s", report.OrderCount, domain.FormatMoney(report.GrandTotal())))

	resp := domain.CashCloseResponse{Session: report}
	if s.exporter != nil {
		path, err := s.exporter.ExportCashReport(report)
		if err != nil {
			log.Warn().Err(err).Msg("failed to export cash report")
		} else {
			resp.ExportPath = path
		}
	}
	return resp, nil
}

func (s *Service) LastCashReport(ctx context.Context) (domain.CashSession, error) {
	var report *domain.CashSession
	err := s.repo.View(ctx, func(tx *store.Tx) error {
		var err error
		report, err = tx.CashReport()
		return err
	})
	if err != nil {
		return domain.CashSession{}, err
	}
	if report == nil {
		return domain.CashSession{}, domain.NotFoundf("no cash session has been closed yet")
	}
	return *report, nil
}

// recordInSession adds a collected payment to the open session. Nothing happens
// when the register is closed or the method has no bucket.
func recordInSession(tx *store.Tx, method domain.PaymentMethod, amount decimal.Decimal) error {
	bucket, ok := method.Bucket()
	if !ok {
		return nil
	}
	session, err := tx.CashSession()
	if err != nil {
		return err
	}
	if !session.IsOpen {
		return nil
	}
	if err := session.Record(bucket, amount); err != nil {
		return err
	}
	tx.SetCashSession(session)
	return nil
}
