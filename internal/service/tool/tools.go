package tool

import (
	"context"
	"strconv"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/internal/service/billing"
	"github.com/sfbilling/sfbilling/pkg/types"
)

// Names of the billing tools, in registration order.
const (
	QueryInvoices     = "query_invoices"
	QueryAccounts     = "query_accounts"
	QueryUsageRecords = "query_usage_records"
	QueryPayments     = "query_payments"
	GetBillingSummary = "get_billing_summary"
)

var (
	startDateParam = types.ParamSchema{
		Type:        types.ParamTypeString,
		Description: "Start date in YYYY-MM-DD format",
	}
	endDateParam = types.ParamSchema{
		Type:        types.ParamTypeString,
		Description: "End date in YYYY-MM-DD format",
	}
)

func limitParam(def int) types.ParamSchema {
	return types.ParamSchema{
		Type:        types.ParamTypeNumber,
		Description: "Maximum number of records to return (default: " + strconv.Itoa(def) + ")",
		Default:     def,
	}
}

// BillingTools returns the descriptors of the billing tools, bound to the given store.
func BillingTools(store recordstore.Store, summaries *billing.Service) []Descriptor {
	return []Descriptor{
		{
			Name:        QueryInvoices,
			Description: "Query Salesforce invoices by account, date range, or status. Returns invoice details including amounts, dates, and status.",
			InputSchema: types.ToolInputSchema{
				Type: "object",
				Properties: map[string]types.ParamSchema{
					"accountId": {
						Type:        types.ParamTypeString,
						Description: "Salesforce Account ID (18-character ID)",
					},
					"startDate": startDateParam,
					"endDate":   endDateParam,
					"status": {
						Type:        types.ParamTypeString,
						Description: "Invoice status (e.g., Paid, Pending, Overdue, Draft)",
						Enum:        types.InvoiceStatuses,
					},
					"limit": limitParam(recordstore.DefaultLimit),
				},
			},
			Handler: func(ctx context.Context, p Params) (*types.ToolResult, error) {
				return recordsResult(store.QueryInvoices(ctx, recordstore.InvoiceFilter{
					AccountID: p.String("accountId"),
					StartDate: p.String("startDate"),
					EndDate:   p.String("endDate"),
					Status:    p.String("status"),
					Limit:     p.Int("limit"),
				}))
			},
		},
		{
			Name:        QueryAccounts,
			Description: "Search for Salesforce accounts by name or ID. Returns account details including billing address and contact information.",
			InputSchema: types.ToolInputSchema{
				Type: "object",
				Properties: map[string]types.ParamSchema{
					"accountName": {
						Type:        types.ParamTypeString,
						Description: "Account name to search for (partial match supported)",
					},
					"accountId": {
						Type:        types.ParamTypeString,
						Description: "Specific Salesforce Account ID",
					},
					"limit": limitParam(recordstore.DefaultAccountLimit),
				},
			},
			Handler: func(ctx context.Context, p Params) (*types.ToolResult, error) {
				return recordsResult(store.QueryAccounts(ctx, recordstore.AccountFilter{
					AccountID:   p.String("accountId"),
					AccountName: p.String("accountName"),
					Limit:       p.Int("limit"),
				}))
			},
		},
		{
			Name:        QueryUsageRecords,
			Description: "Query AI service usage records by account, date range, or service type. Returns usage amounts, costs, and service details.",
			InputSchema: types.ToolInputSchema{
				Type: "object",
				Properties: map[string]types.ParamSchema{
					"accountId": {
						Type:        types.ParamTypeString,
						Description: "Salesforce Account ID",
					},
					"startDate": startDateParam,
					"endDate":   endDateParam,
					"serviceType": {
						Type:        types.ParamTypeString,
						Description: "Type of AI service (e.g., GPT-4, Claude, Embeddings)",
						Enum:        types.ServiceTypes,
					},
					"limit": limitParam(recordstore.DefaultLimit),
				},
			},
			Handler: func(ctx context.Context, p Params) (*types.ToolResult, error) {
				return recordsResult(store.QueryUsageRecords(ctx, recordstore.UsageFilter{
					AccountID:   p.String("accountId"),
					StartDate:   p.String("startDate"),
					EndDate:     p.String("endDate"),
					ServiceType: p.String("serviceType"),
					Limit:       p.Int("limit"),
				}))
			},
		},
		{
			Name:        QueryPayments,
			Description: "Query payment records by account, invoice, or date range. Returns payment details including amounts, methods, and status.",
			InputSchema: types.ToolInputSchema{
				Type: "object",
				Properties: map[string]types.ParamSchema{
					"accountId": {
						Type:        types.ParamTypeString,
						Description: "Salesforce Account ID",
					},
					"invoiceId": {
						Type:        types.ParamTypeString,
						Description: "Salesforce Invoice ID",
					},
					"startDate": startDateParam,
					"endDate":   endDateParam,
					"status": {
						Type:        types.ParamTypeString,
						Description: "Payment status",
						Enum:        types.PaymentStatuses,
					},
					"limit": limitParam(recordstore.DefaultLimit),
				},
			},
			Handler: func(ctx context.Context, p Params) (*types.ToolResult, error) {
				return recordsResult(store.QueryPayments(ctx, recordstore.PaymentFilter{
					AccountID: p.String("accountId"),
					InvoiceID: p.String("invoiceId"),
					StartDate: p.String("startDate"),
					EndDate:   p.String("endDate"),
					Status:    p.String("status"),
					Limit:     p.Int("limit"),
				}))
			},
		},
		{
			Name:        GetBillingSummary,
			Description: "Get comprehensive billing summary for an account including total invoiced, paid, outstanding balance, and usage statistics.",
			InputSchema: types.ToolInputSchema{
				Type: "object",
				Properties: map[string]types.ParamSchema{
					"accountId": {
						Type:        types.ParamTypeString,
						Description: "Salesforce Account ID (required)",
						Required:    true,
					},
					"startDate": startDateParam,
					"endDate":   endDateParam,
				},
				Required: []string{"accountId"},
			},
			Handler: func(ctx context.Context, p Params) (*types.ToolResult, error) {
				summary, err := summaries.Summarize(ctx, billing.SummaryRequest{
					AccountID: p.String("accountId"),
					StartDate: p.String("startDate"),
					EndDate:   p.String("endDate"),
				})
				if err != nil {
					return nil, err
				}
				return types.NewSummaryResult(summary), nil
			},
		},
	}
}

// NewBillingRegistry builds the registry of billing tools over the given store.
func NewBillingRegistry(store recordstore.Store, summaries *billing.Service) (*Registry, error) {
	return NewRegistry(BillingTools(store, summaries)...)
}

func recordsResult[T any](res *recordstore.QueryResult[T], err error) (*types.ToolResult, error) {
	if err != nil {
		return nil, err
	}
	return types.NewRecordsResult(res.Records, res.TotalSize), nil
}
