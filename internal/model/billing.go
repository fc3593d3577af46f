package model

import "github.com/sfbilling/sfbilling/pkg/types"

// Dates are stored as YYYY-MM-DD strings so that range filters compare them
// lexicographically on every supported database.

// Invoice represents an invoice issued to an account.
type Invoice struct {
	Record

	InvoiceNumber string   `json:"invoice_number" gorm:"uniqueIndex;not null"`
	AccountID     string   `json:"account_id" gorm:"type:varchar(18);index;not null"`
	Account       *Account `json:"-" gorm:"foreignKey:AccountID;references:ID"`
	Amount        *float64 `json:"amount"`
	Status        string   `json:"status" gorm:"type:varchar(20);index"`
	InvoiceDate   string   `json:"invoice_date" gorm:"type:varchar(10);index"`
	DueDate       string   `json:"due_date" gorm:"type:varchar(10)"`
}

// ToAPI converts the invoice row to its API representation.
// The account name is only filled in when the Account association was loaded.
func (i *Invoice) ToAPI() types.Invoice {
	return types.Invoice{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		AccountID:     i.AccountID,
		AccountName:   accountName(i.Account),
		Amount:        i.Amount,
		Status:        i.Status,
		InvoiceDate:   i.InvoiceDate,
		DueDate:       i.DueDate,
		CreatedDate:   i.createdDate(),
	}
}

// Payment represents a payment made by an account, optionally against an invoice.
type Payment struct {
	Record

	PaymentNumber string   `json:"payment_number" gorm:"uniqueIndex;not null"`
	InvoiceID     *string  `json:"invoice_id" gorm:"type:varchar(18);index"`
	Invoice       *Invoice `json:"-" gorm:"foreignKey:InvoiceID;references:ID"`
	AccountID     string   `json:"account_id" gorm:"type:varchar(18);index;not null"`
	Account       *Account `json:"-" gorm:"foreignKey:AccountID;references:ID"`
	Amount        *float64 `json:"amount"`
	PaymentDate   string   `json:"payment_date" gorm:"type:varchar(10);index"`
	PaymentMethod string   `json:"payment_method" gorm:"type:varchar(40)"`
	Status        string   `json:"status" gorm:"type:varchar(20);index"`
}

// ToAPI converts the payment row to its API representation.
func (p *Payment) ToAPI() types.Payment {
	out := types.Payment{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		AccountID:     p.AccountID,
		AccountName:   accountName(p.Account),
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		CreatedDate:   p.createdDate(),
	}
	if p.InvoiceID != nil {
		out.InvoiceID = *p.InvoiceID
	}
	if p.Invoice != nil {
		out.InvoiceNumber = p.Invoice.InvoiceNumber
	}
	return out
}

// UsageRecord represents metered usage of an AI service by an account.
type UsageRecord struct {
	Record

	Name        string   `json:"name"`
	AccountID   string   `json:"account_id" gorm:"type:varchar(18);index;not null"`
	Account     *Account `json:"-" gorm:"foreignKey:AccountID;references:ID"`
	ServiceType string   `json:"service_type" gorm:"type:varchar(30);index"`
	UsageAmount *float64 `json:"usage_amount"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalCost   *float64 `json:"total_cost"`
	UsageDate   string   `json:"usage_date" gorm:"type:varchar(10);index"`
}

// ToAPI converts the usage row to its API representation.
func (u *UsageRecord) ToAPI() types.UsageRecord {
	return types.UsageRecord{
		ID:          u.ID,
		Name:        u.Name,
		AccountID:   u.AccountID,
		AccountName: accountName(u.Account),
		ServiceType: u.ServiceType,
		UsageAmount: u.UsageAmount,
		UnitPrice:   u.UnitPrice,
		TotalCost:   u.TotalCost,
		UsageDate:   u.UsageDate,
		CreatedDate: u.createdDate(),
	}
}

func accountName(a *Account) string {
	if a == nil {
		return ""
	}
	return a.Name
}
