package recordstore

import (
	"context"
	"time"

	"github.com/sfbilling/sfbilling/pkg/types"
)

// QueryMetrics receives one observation per record store query.
type QueryMetrics interface {
	RecordStoreQuery(ctx context.Context, store, operation string, failed bool, elapsed time.Duration)
}

// InstrumentedStore wraps a Store and reports the outcome and latency of every query.
// Connect and Disconnect pass through unobserved.
type InstrumentedStore struct {
	Store

	name    string
	metrics QueryMetrics
}

var _ Store = (*InstrumentedStore)(nil)

// Instrument wraps s so that its queries are reported to m under the given store name.
func Instrument(s Store, name string, m QueryMetrics) *InstrumentedStore {
	return &InstrumentedStore{Store: s, name: name, metrics: m}
}

func (s *InstrumentedStore) QueryInvoices(ctx context.Context, f InvoiceFilter) (*QueryResult[types.Invoice], error) {
	return observe(ctx, s, "QueryInvoices", func() (*QueryResult[types.Invoice], error) {
		return s.Store.QueryInvoices(ctx, f)
	})
}

func (s *InstrumentedStore) QueryAccounts(ctx context.Context, f AccountFilter) (*QueryResult[types.Account], error) {
	return observe(ctx, s, "QueryAccounts", func() (*QueryResult[types.Account], error) {
		return s.Store.QueryAccounts(ctx, f)
	})
}

func (s *InstrumentedStore) QueryUsageRecords(ctx context.Context, f UsageFilter) (*QueryResult[types.UsageRecord], error) {
	return observe(ctx, s, "QueryUsageRecords", func() (*QueryResult[types.UsageRecord], error) {
		return s.Store.QueryUsageRecords(ctx, f)
	})
}

func (s *InstrumentedStore) QueryPayments(ctx context.Context, f PaymentFilter) (*QueryResult[types.Payment], error) {
	return observe(ctx, s, "QueryPayments", func() (*QueryResult[types.Payment], error) {
		return s.Store.QueryPayments(ctx, f)
	})
}

func observe[T any](ctx context.Context, s *InstrumentedStore, op string, query func() (*QueryResult[T], error)) (*QueryResult[T], error) {
	start := time.Now()
	res, err := query()
	s.metrics.RecordStoreQuery(ctx, s.name, op, err != nil, time.Since(start))
	return res, err
}
