package types

// ToolResult is the uniform envelope returned by every tool invocation.
// Exactly one of the payload fields (Records/TotalSize or Summary) or Error is populated,
// and Success agrees with which one it is.
// Callers must inspect Success rather than relying on the HTTP status code.
type ToolResult struct {
	Success bool `json:"success"`

	// Records holds the reshaped records of list-returning tools.
	// It is always a slice (possibly empty) when present.
	Records any `json:"records,omitempty"`
	// TotalSize is the number of matching records reported by the record store.
	// It can be larger than len(Records) when the result was capped by a limit.
	TotalSize *int `json:"totalSize,omitempty"`

	Summary *BillingSummary `json:"summary,omitempty"`

	Error string `json:"error,omitempty"`
}

// NewRecordsResult builds a successful result for a list-returning tool.
func NewRecordsResult[T any](records []T, totalSize int) *ToolResult {
	if records == nil {
		records = []T{}
	}
	return &ToolResult{
		Success:   true,
		Records:   records,
		TotalSize: &totalSize,
	}
}

// NewSummaryResult builds a successful result carrying a billing summary.
func NewSummaryResult(s *BillingSummary) *ToolResult {
	return &ToolResult{Success: true, Summary: s}
}

// NewErrorResult builds a failed result with the given message.
func NewErrorResult(msg string) *ToolResult {
	return &ToolResult{Success: false, Error: msg}
}

// RecordCount returns the number of records the result refers to, for logging.
// It prefers the reported total and falls back to 0 for non-list results.
func (r *ToolResult) RecordCount() int {
	if r.TotalSize != nil {
		return *r.TotalSize
	}
	return 0
}

// Period is the optional date range a billing summary covers.
type Period struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// BillingSummary aggregates the invoices, payments and usage of a single account.
// It is derived on every request and never stored.
type BillingSummary struct {
	AccountID string `json:"accountId"`
	Period    Period `json:"period"`

	TotalInvoiced      float64 `json:"totalInvoiced"`
	TotalPaid          float64 `json:"totalPaid"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	TotalUsage         float64 `json:"totalUsage"`

	// The counts are the totals reported by the record store, not the number of records summed.
	InvoiceCount     int `json:"invoiceCount"`
	PaymentCount     int `json:"paymentCount"`
	UsageRecordCount int `json:"usageRecordCount"`

	// Truncated is set when at least one reported count exceeds the number of records
	// that were actually fetched and summed.
	Truncated bool `json:"truncated,omitempty"`
}
