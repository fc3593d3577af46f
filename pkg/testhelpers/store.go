package testhelpers

import (
	"context"
	"sync"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/pkg/types"
)

// StubStore is an in-memory recordstore.Store for tests.
// Every query returns the configured result (or error) and increments a call counter.
// The last filter passed to each query is kept for inspection.
type StubStore struct {
	Invoices     *recordstore.QueryResult[types.Invoice]
	Accounts     *recordstore.QueryResult[types.Account]
	UsageRecords *recordstore.QueryResult[types.UsageRecord]
	Payments     *recordstore.QueryResult[types.Payment]

	InvoicesErr     error
	AccountsErr     error
	UsageRecordsErr error
	PaymentsErr     error

	// ConnectErr is returned by Connect.
	ConnectErr error

	// Panic, when set, makes every query panic with this value.
	Panic any

	mu    sync.Mutex
	calls map[string]int

	LastInvoiceFilter recordstore.InvoiceFilter
	LastAccountFilter recordstore.AccountFilter
	LastUsageFilter   recordstore.UsageFilter
	LastPaymentFilter recordstore.PaymentFilter
}

var _ recordstore.Store = (*StubStore)(nil)

// NewStubStore returns a stub whose queries all succeed with no records.
func NewStubStore() *StubStore {
	return &StubStore{
		Invoices:     &recordstore.QueryResult[types.Invoice]{},
		Accounts:     &recordstore.QueryResult[types.Account]{},
		UsageRecords: &recordstore.QueryResult[types.UsageRecord]{},
		Payments:     &recordstore.QueryResult[types.Payment]{},
		calls:        make(map[string]int),
	}
}

// Calls returns how many times the named operation was called.
func (s *StubStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of query calls across all operations.
// Connect and Disconnect are not counted.
func (s *StubStore) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for op, c := range s.calls {
		if op != "Connect" && op != "Disconnect" {
			n += c
		}
	}
	return n
}

func (s *StubStore) record(op string) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
	s.mu.Unlock()
	if s.Panic != nil {
		panic(s.Panic)
	}
}

func (s *StubStore) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls["Connect"]++
	return s.ConnectErr
}

func (s *StubStore) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls["Disconnect"]++
	return nil
}

func (s *StubStore) QueryInvoices(_ context.Context, f recordstore.InvoiceFilter) (*recordstore.QueryResult[types.Invoice], error) {
	s.record("QueryInvoices")
	s.mu.Lock()
	s.LastInvoiceFilter = f
	s.mu.Unlock()
	if s.InvoicesErr != nil {
		return nil, s.InvoicesErr
	}
	return s.Invoices, nil
}

func (s *StubStore) QueryAccounts(_ context.Context, f recordstore.AccountFilter) (*recordstore.QueryResult[types.Account], error) {
	s.record("QueryAccounts")
	s.mu.Lock()
	s.LastAccountFilter = f
	s.mu.Unlock()
	if s.AccountsErr != nil {
		return nil, s.AccountsErr
	}
	return s.Accounts, nil
}

func (s *StubStore) QueryUsageRecords(_ context.Context, f recordstore.UsageFilter) (*recordstore.QueryResult[types.UsageRecord], error) {
	s.record("QueryUsageRecords")
	s.mu.Lock()
	s.LastUsageFilter = f
	s.mu.Unlock()
	if s.UsageRecordsErr != nil {
		return nil, s.UsageRecordsErr
	}
	return s.UsageRecords, nil
}

func (s *StubStore) QueryPayments(_ context.Context, f recordstore.PaymentFilter) (*recordstore.QueryResult[types.Payment], error) {
	s.record("QueryPayments")
	s.mu.Lock()
	s.LastPaymentFilter = f
	s.mu.Unlock()
	if s.PaymentsErr != nil {
		return nil, s.PaymentsErr
	}
	return s.Payments, nil
}

// Float returns a pointer to v, for building records with optional amounts.
func Float(v float64) *float64 {
	return &v
}
