// Package recordstore defines the contract between the tool handlers and the
// CRM-style record store that holds accounts, invoices, payments and usage records.
package recordstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sfbilling/sfbilling/pkg/types"
)

const (
	// DefaultLimit is the page size used by invoice, payment and usage queries
	// when the caller does not supply one.
	DefaultLimit = 100
	// DefaultAccountLimit is the page size used by account queries.
	DefaultAccountLimit = 50
)

// InvoiceFilter narrows down an invoice query. Zero-valued fields are ignored.
type InvoiceFilter struct {
	AccountID string
	StartDate string
	EndDate   string
	Status    string
	Limit     int
}

// AccountFilter narrows down an account query. Zero-valued fields are ignored.
type AccountFilter struct {
	AccountID string
	// AccountName is matched as a substring of the account name.
	AccountName string
	Limit       int
}

// UsageFilter narrows down a usage record query. Zero-valued fields are ignored.
type UsageFilter struct {
	AccountID   string
	StartDate   string
	EndDate     string
	ServiceType string
	Limit       int
}

// PaymentFilter narrows down a payment query. Zero-valued fields are ignored.
type PaymentFilter struct {
	AccountID string
	InvoiceID string
	StartDate string
	EndDate   string
	Status    string
	Limit     int
}

// QueryResult is one page of records together with the total number of matches
// reported by the store.
type QueryResult[T any] struct {
	TotalSize int
	Records   []T
}

// Store is a record store the billing tools can query.
// Implementations must be safe for concurrent use.
type Store interface {
	// Connect establishes the session with the store.
	// It is idempotent: calling it on a connected store is a no-op.
	Connect(ctx context.Context) error
	// Disconnect tears down the session.
	Disconnect(ctx context.Context) error

	QueryInvoices(ctx context.Context, f InvoiceFilter) (*QueryResult[types.Invoice], error)
	QueryAccounts(ctx context.Context, f AccountFilter) (*QueryResult[types.Account], error)
	QueryUsageRecords(ctx context.Context, f UsageFilter) (*QueryResult[types.UsageRecord], error)
	QueryPayments(ctx context.Context, f PaymentFilter) (*QueryResult[types.Payment], error)
}

// LimitOrDefault returns limit if it is positive, def otherwise.
func LimitOrDefault(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}

// ValidateDate checks that s is a calendar date in YYYY-MM-DD format.
func ValidateDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("invalid date '%s': expected YYYY-MM-DD format", s)
	}
	return nil
}
