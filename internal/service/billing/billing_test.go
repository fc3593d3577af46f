package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/pkg/testhelpers"
	"github.com/sfbilling/sfbilling/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "001000000000001AAA"

func stubWithRecords() *testhelpers.StubStore {
	store := testhelpers.NewStubStore()
	store.Invoices = &recordstore.QueryResult[types.Invoice]{
		TotalSize: 2,
		Records: []types.Invoice{
			{ID: "a01000000000001AAA", Amount: testhelpers.Float(100)},
			{ID: "a01000000000002AAA", Amount: testhelpers.Float(50)},
		},
	}
	store.Payments = &recordstore.QueryResult[types.Payment]{
		TotalSize: 1,
		Records:   []types.Payment{{ID: "a02000000000001AAA", Amount: testhelpers.Float(80)}},
	}
	store.UsageRecords = &recordstore.QueryResult[types.UsageRecord]{
		TotalSize: 1,
		Records:   []types.UsageRecord{{ID: "a03000000000001AAA", TotalCost: testhelpers.Float(20)}},
	}
	return store
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	s := NewService(store, nil)

	sum, err := s.Summarize(context.Background(), SummaryRequest{AccountID: testAccount})
	require.NoError(t, err)

	assert.Equal(t, &types.BillingSummary{
		AccountID:          testAccount,
		TotalInvoiced:      150,
		TotalPaid:          80,
		OutstandingBalance: 70,
		TotalUsage:         20,
		InvoiceCount:       2,
		PaymentCount:       1,
		UsageRecordCount:   1,
	}, sum)

	assert.Equal(t, 1, store.Calls("QueryInvoices"))
	assert.Equal(t, 1, store.Calls("QueryPayments"))
	assert.Equal(t, 1, store.Calls("QueryUsageRecords"))
	assert.Equal(t, 0, store.Calls("QueryAccounts"))
}

func TestSummarizeScopesSubQueries(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	s := NewService(store, nil)

	req := SummaryRequest{AccountID: testAccount, StartDate: "2024-01-01", EndDate: "2024-06-30"}
	sum, err := s.Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.Period{StartDate: "2024-01-01", EndDate: "2024-06-30"}, sum.Period)

	assert.Equal(t, recordstore.InvoiceFilter{
		AccountID: testAccount, StartDate: "2024-01-01", EndDate: "2024-06-30", Limit: SummaryPageSize,
	}, store.LastInvoiceFilter)
	assert.Equal(t, recordstore.PaymentFilter{
		AccountID: testAccount, StartDate: "2024-01-01", EndDate: "2024-06-30", Limit: SummaryPageSize,
	}, store.LastPaymentFilter)
	assert.Equal(t, recordstore.UsageFilter{
		AccountID: testAccount, StartDate: "2024-01-01", EndDate: "2024-06-30", Limit: SummaryPageSize,
	}, store.LastUsageFilter)
}

func TestSummarizeRequiresAccount(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	s := NewService(store, nil)

	sum, err := s.Summarize(context.Background(), SummaryRequest{StartDate: "2024-01-01"})
	assert.Nil(t, sum)
	require.ErrorIs(t, err, ErrAccountIDRequired)
	assert.Equal(t, "Account ID is required for billing summary", err.Error())
	assert.Zero(t, store.TotalCalls())
}

func TestSummarizeFailedSubQuery(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	store.PaymentsErr = errors.New("INVALID_FIELD: No such column 'Payment_Date__c'")
	s := NewService(store, nil)

	sum, err := s.Summarize(context.Background(), SummaryRequest{AccountID: testAccount})
	require.NoError(t, err)

	assert.Equal(t, 150.0, sum.TotalInvoiced)
	assert.Equal(t, 0.0, sum.TotalPaid)
	assert.Equal(t, 0, sum.PaymentCount)
	assert.Equal(t, 150.0, sum.OutstandingBalance)
	assert.Equal(t, 20.0, sum.TotalUsage)
}

func TestSummarizeAllSubQueriesFail(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	store.InvoicesErr = errors.New("INVALID_TYPE: sObject type 'Invoice__c' is not supported")
	store.PaymentsErr = errors.New("INVALID_TYPE: sObject type 'Payment__c' is not supported")
	store.UsageRecordsErr = errors.New("INVALID_TYPE: sObject type 'Usage_Record__c' is not supported")
	s := NewService(store, nil)

	sum, err := s.Summarize(context.Background(), SummaryRequest{AccountID: testAccount})
	require.NoError(t, err)
	assert.Equal(t, &types.BillingSummary{AccountID: testAccount}, sum)
}

func TestSummarizeUnreachableStore(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	store.ConnectErr = errors.New("Failed to connect to Salesforce: authentication failure")
	s := NewService(store, nil)

	sum, err := s.Summarize(context.Background(), SummaryRequest{AccountID: testAccount})
	assert.Nil(t, sum)
	require.EqualError(t, err, "Failed to connect to Salesforce: authentication failure")
	assert.Equal(t, 1, store.Calls("Connect"))
	assert.Zero(t, store.TotalCalls())
}

func TestSummarizeSubQueryPanicReachesCaller(t *testing.T) {
	t.Parallel()

	store := stubWithRecords()
	store.Panic = "session lost"
	s := NewService(store, nil)

	assert.PanicsWithValue(t, "session lost", func() {
		_, _ = s.Summarize(context.Background(), SummaryRequest{AccountID: testAccount})
	})
}

// barrierStore blocks each summary sub-query until all three have started.
type barrierStore struct {
	*testhelpers.StubStore
	arrived sync.WaitGroup
	release chan struct{}
}

func newBarrierStore() *barrierStore {
	b := &barrierStore{StubStore: stubWithRecords(), release: make(chan struct{})}
	b.arrived.Add(3)
	go func() {
		b.arrived.Wait()
		close(b.release)
	}()
	return b
}

func (b *barrierStore) wait(ctx context.Context) error {
	b.arrived.Done()
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *barrierStore) QueryInvoices(ctx context.Context, f recordstore.InvoiceFilter) (*recordstore.QueryResult[types.Invoice], error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.StubStore.QueryInvoices(ctx, f)
}

func (b *barrierStore) QueryPayments(ctx context.Context, f recordstore.PaymentFilter) (*recordstore.QueryResult[types.Payment], error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.StubStore.QueryPayments(ctx, f)
}

func (b *barrierStore) QueryUsageRecords(ctx context.Context, f recordstore.UsageFilter) (*recordstore.QueryResult[types.UsageRecord], error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.StubStore.QueryUsageRecords(ctx, f)
}

func TestSummarizeRunsSubQueriesConcurrently(t *testing.T) {
	t.Parallel()

	store := newBarrierStore()
	s := NewService(store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sum, err := s.Summarize(ctx, SummaryRequest{AccountID: testAccount})
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "sub-queries did not overlap")

	assert.Equal(t, 150.0, sum.TotalInvoiced)
	assert.Equal(t, 80.0, sum.TotalPaid)
	assert.Equal(t, 20.0, sum.TotalUsage)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	req := SummaryRequest{AccountID: testAccount}

	t.Run("missing amounts count as zero", func(t *testing.T) {
		sum := Aggregate(req,
			&recordstore.QueryResult[types.Invoice]{
				TotalSize: 3,
				Records: []types.Invoice{
					{Amount: testhelpers.Float(10.5)},
					{Amount: nil},
					{Amount: testhelpers.Float(4.5)},
				},
			},
			&recordstore.QueryResult[types.Payment]{
				TotalSize: 1,
				Records:   []types.Payment{{Amount: nil}},
			},
			&recordstore.QueryResult[types.UsageRecord]{
				TotalSize: 2,
				Records:   []types.UsageRecord{{TotalCost: nil}, {TotalCost: testhelpers.Float(3)}},
			},
		)
		assert.Equal(t, 15.0, sum.TotalInvoiced)
		assert.Equal(t, 0.0, sum.TotalPaid)
		assert.Equal(t, 15.0, sum.OutstandingBalance)
		assert.Equal(t, 3.0, sum.TotalUsage)
		assert.Equal(t, 3, sum.InvoiceCount)
		assert.False(t, sum.Truncated)
	})

	t.Run("empty and nil results", func(t *testing.T) {
		sum := Aggregate(req, nil, &recordstore.QueryResult[types.Payment]{}, nil)
		assert.Equal(t, 0.0, sum.TotalInvoiced)
		assert.Equal(t, 0.0, sum.TotalPaid)
		assert.Equal(t, 0.0, sum.OutstandingBalance)
		assert.Zero(t, sum.InvoiceCount)
		assert.Zero(t, sum.PaymentCount)
		assert.Zero(t, sum.UsageRecordCount)
	})

	t.Run("negative balance", func(t *testing.T) {
		sum := Aggregate(req,
			&recordstore.QueryResult[types.Invoice]{TotalSize: 1, Records: []types.Invoice{{Amount: testhelpers.Float(40)}}},
			&recordstore.QueryResult[types.Payment]{TotalSize: 1, Records: []types.Payment{{Amount: testhelpers.Float(100)}}},
			nil,
		)
		assert.Equal(t, -60.0, sum.OutstandingBalance)
	})

	t.Run("reported totals larger than the page", func(t *testing.T) {
		sum := Aggregate(req,
			&recordstore.QueryResult[types.Invoice]{
				TotalSize: 1500,
				Records:   []types.Invoice{{Amount: testhelpers.Float(1)}},
			},
			nil,
			nil,
		)
		assert.Equal(t, 1500, sum.InvoiceCount)
		assert.Equal(t, 1.0, sum.TotalInvoiced)
		assert.True(t, sum.Truncated)
	})
}
