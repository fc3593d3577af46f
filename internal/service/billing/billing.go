// Package billing computes per-account billing summaries from the record store.
package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SummaryPageSize is the page size of each sub-query behind a summary.
// Accounts with more records than this in the period get a truncated summary.
const SummaryPageSize = 1000

// ErrAccountIDRequired is returned when a summary is requested without an account.
var ErrAccountIDRequired = errors.New("Account ID is required for billing summary") //nolint:staticcheck

// SummaryRequest selects the account and optional date range of a summary.
type SummaryRequest struct {
	AccountID string
	StartDate string
	EndDate   string
}

// Service builds billing summaries.
type Service struct {
	store  recordstore.Store
	logger *zap.Logger
}

func NewService(store recordstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Summarize fetches the invoices, payments and usage records of an account concurrently
// and folds them into a summary.
// A store that cannot be reached fails the summary. A sub-query rejected by the store
// contributes nothing; the failure is only logged.
// A panicking sub-query is re-raised on the calling goroutine.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (*types.BillingSummary, error) {
	if req.AccountID == "" {
		return nil, ErrAccountIDRequired
	}
	if err := s.store.Connect(ctx); err != nil {
		return nil, err
	}

	var (
		invoices *recordstore.QueryResult[types.Invoice]
		payments *recordstore.QueryResult[types.Payment]
		usage    *recordstore.QueryResult[types.UsageRecord]

		panicMu   sync.Mutex
		recovered any
	)

	// errgroup does not recover panics, and a panic on a worker goroutine would
	// take down the process before the dispatcher could contain it.
	goSafe := func(g *errgroup.Group, fn func()) {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if recovered == nil {
						recovered = r
					}
					panicMu.Unlock()
				}
			}()
			fn()
			return nil
		})
	}

	var g errgroup.Group
	goSafe(&g, func() {
		invoices = fetch(s, "invoices", func() (*recordstore.QueryResult[types.Invoice], error) {
			return s.store.QueryInvoices(ctx, recordstore.InvoiceFilter{
				AccountID: req.AccountID,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				Limit:     SummaryPageSize,
			})
		})
	})
	goSafe(&g, func() {
		payments = fetch(s, "payments", func() (*recordstore.QueryResult[types.Payment], error) {
			return s.store.QueryPayments(ctx, recordstore.PaymentFilter{
				AccountID: req.AccountID,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				Limit:     SummaryPageSize,
			})
		})
	})
	goSafe(&g, func() {
		usage = fetch(s, "usage records", func() (*recordstore.QueryResult[types.UsageRecord], error) {
			return s.store.QueryUsageRecords(ctx, recordstore.UsageFilter{
				AccountID: req.AccountID,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				Limit:     SummaryPageSize,
			})
		})
	})
	_ = g.Wait()

	if recovered != nil {
		panic(recovered)
	}

	return Aggregate(req, invoices, payments, usage), nil
}

// fetch runs one sub-query of a summary.
// Errors are logged and turned into an empty result.
func fetch[T any](s *Service, what string, query func() (*recordstore.QueryResult[T], error)) *recordstore.QueryResult[T] {
	res, err := query()
	if err != nil {
		s.logger.Warn("billing summary sub-query failed", zap.String("query", what), zap.Error(err))
		return &recordstore.QueryResult[T]{}
	}
	if res == nil {
		return &recordstore.QueryResult[T]{}
	}
	return res
}

// Aggregate folds the three record lists into a summary.
// Missing amounts count as 0. Counts are the totals reported by the store, which can
// exceed the number of records summed; Truncated is set when that happens.
// Nil results are treated as empty.
func Aggregate(
	req SummaryRequest,
	invoices *recordstore.QueryResult[types.Invoice],
	payments *recordstore.QueryResult[types.Payment],
	usage *recordstore.QueryResult[types.UsageRecord],
) *types.BillingSummary {
	sum := &types.BillingSummary{
		AccountID: req.AccountID,
		Period: types.Period{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
	}

	if invoices != nil {
		for _, inv := range invoices.Records {
			sum.TotalInvoiced += value(inv.Amount)
		}
		sum.InvoiceCount = invoices.TotalSize
		sum.Truncated = sum.Truncated || invoices.TotalSize > len(invoices.Records)
	}
	if payments != nil {
		for _, p := range payments.Records {
			sum.TotalPaid += value(p.Amount)
		}
		sum.PaymentCount = payments.TotalSize
		sum.Truncated = sum.Truncated || payments.TotalSize > len(payments.Records)
	}
	if usage != nil {
		for _, u := range usage.Records {
			sum.TotalUsage += value(u.TotalCost)
		}
		sum.UsageRecordCount = usage.TotalSize
		sum.Truncated = sum.Truncated || usage.TotalSize > len(usage.Records)
	}

	sum.OutstandingBalance = sum.TotalInvoiced - sum.TotalPaid
	return sum
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
