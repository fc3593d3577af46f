package types

// Invoice is the API view of an invoice record.
type Invoice struct {
	ID            string   `json:"id"`
	InvoiceNumber string   `json:"invoiceNumber,omitempty"`
	AccountID     string   `json:"accountId,omitempty"`
	AccountName   string   `json:"accountName,omitempty"`
	Amount        *float64 `json:"amount"`
	Status        string   `json:"status,omitempty"`
	InvoiceDate   string   `json:"invoiceDate,omitempty"`
	DueDate       string   `json:"dueDate,omitempty"`
	CreatedDate   string   `json:"createdDate,omitempty"`
}

// BillingAddress is the flattened billing address of an account.
type BillingAddress struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Account is the API view of a customer account.
type Account struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	BillingAddress BillingAddress `json:"billingAddress"`
	Phone          string         `json:"phone,omitempty"`
	Industry       string         `json:"industry,omitempty"`
	AnnualRevenue  *float64       `json:"annualRevenue"`
	Type           string         `json:"type,omitempty"`
}

// UsageRecord is the API view of a metered AI service usage record.
type UsageRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	AccountID   string   `json:"accountId,omitempty"`
	AccountName string   `json:"accountName,omitempty"`
	ServiceType string   `json:"serviceType,omitempty"`
	UsageAmount *float64 `json:"usageAmount"`
	UnitPrice   *float64 `json:"unitPrice"`
	TotalCost   *float64 `json:"totalCost"`
	UsageDate   string   `json:"usageDate,omitempty"`
	CreatedDate string   `json:"createdDate,omitempty"`
}

// Payment is the API view of a payment record.
type Payment struct {
	ID            string   `json:"id"`
	PaymentNumber string   `json:"paymentNumber,omitempty"`
	InvoiceID     string   `json:"invoiceId,omitempty"`
	InvoiceNumber string   `json:"invoiceNumber,omitempty"`
	AccountID     string   `json:"accountId,omitempty"`
	AccountName   string   `json:"accountName,omitempty"`
	Amount        *float64 `json:"amount"`
	PaymentDate   string   `json:"paymentDate,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	Status        string   `json:"status,omitempty"`
	CreatedDate   string   `json:"createdDate,omitempty"`
}

// InvoiceStatuses are the values accepted by the invoice query.
var InvoiceStatuses = []string{"Paid", "Pending", "Overdue", "Draft"}

// PaymentStatuses are the values accepted by the payment query.
var PaymentStatuses = []string{"Completed", "Pending", "Failed", "Refunded"}

// ServiceTypes are the AI service types a usage record can be filtered by.
var ServiceTypes = []string{"GPT-4", "GPT-3.5", "Claude", "Embeddings", "Fine-tuning", "Other"}
