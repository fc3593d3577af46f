package sqlstore

import (
	"context"
	"fmt"

	"github.com/sfbilling/sfbilling/internal/model"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedFile is the YAML document accepted by the seed command.
//
//	accounts:
//	  - id: 001000000000001AAA
//	    name: Acme Corp
//	    billing_address: {city: Springfield, country: US}
//	invoices:
//	  - id: a01000000000001AAA
//	    invoice_number: INV-0001
//	    account_id: 001000000000001AAA
//	    amount: 100
//	    invoice_date: 2024-01-15
type SeedFile struct {
	Accounts     []SeedAccount `yaml:"accounts"`
	Invoices     []SeedInvoice `yaml:"invoices"`
	Payments     []SeedPayment `yaml:"payments"`
	UsageRecords []SeedUsage   `yaml:"usage_records"`
}

type SeedAccount struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	BillingAddress model.Address `yaml:"billing_address"`
	Phone          string        `yaml:"phone"`
	Industry       string        `yaml:"industry"`
	AnnualRevenue  *float64      `yaml:"annual_revenue"`
	Type           string        `yaml:"type"`
}

type SeedInvoice struct {
	ID            string   `yaml:"id"`
	InvoiceNumber string   `yaml:"invoice_number"`
	AccountID     string   `yaml:"account_id"`
	Amount        *float64 `yaml:"amount"`
	Status        string   `yaml:"status"`
	InvoiceDate   string   `yaml:"invoice_date"`
	DueDate       string   `yaml:"due_date"`
}

type SeedPayment struct {
	ID            string   `yaml:"id"`
	PaymentNumber string   `yaml:"payment_number"`
	InvoiceID     string   `yaml:"invoice_id"`
	AccountID     string   `yaml:"account_id"`
	Amount        *float64 `yaml:"amount"`
	PaymentDate   string   `yaml:"payment_date"`
	PaymentMethod string   `yaml:"payment_method"`
	Status        string   `yaml:"status"`
}

type SeedUsage struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	AccountID   string   `yaml:"account_id"`
	ServiceType string   `yaml:"service_type"`
	UsageAmount *float64 `yaml:"usage_amount"`
	UnitPrice   *float64 `yaml:"unit_price"`
	TotalCost   *float64 `yaml:"total_cost"`
	UsageDate   string   `yaml:"usage_date"`
}

// SeedCounts reports how many rows of each kind were written.
type SeedCounts struct {
	Accounts     int
	Invoices     int
	Payments     int
	UsageRecords int
}

// LoadSeedFile reads and parses a seed file.
func LoadSeedFile(fs afero.Fs, path string) (*SeedFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Seed writes the records of f into the database in a single transaction.
// Rows are upserted by id, so seeding the same file twice is harmless.
func Seed(ctx context.Context, db *gorm.DB, f *SeedFile) (*SeedCounts, error) {
	accounts := make([]model.Account, len(f.Accounts))
	for i, a := range f.Accounts {
		accounts[i] = model.Account{
			Record:         model.Record{ID: a.ID},
			Name:           a.Name,
			BillingAddress: datatypes.NewJSONType(a.BillingAddress),
			Phone:          a.Phone,
			Industry:       a.Industry,
			AnnualRevenue:  a.AnnualRevenue,
			Type:           a.Type,
		}
	}

	invoices := make([]model.Invoice, len(f.Invoices))
	for i, inv := range f.Invoices {
		invoices[i] = model.Invoice{
			Record:        model.Record{ID: inv.ID},
			InvoiceNumber: inv.InvoiceNumber,
			AccountID:     inv.AccountID,
			Amount:        inv.Amount,
			Status:        inv.Status,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
		}
	}

	payments := make([]model.Payment, len(f.Payments))
	for i, p := range f.Payments {
		payments[i] = model.Payment{
			Record:        model.Record{ID: p.ID},
			PaymentNumber: p.PaymentNumber,
			AccountID:     p.AccountID,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate,
			PaymentMethod: p.PaymentMethod,
			Status:        p.Status,
		}
		if p.InvoiceID != "" {
			invoiceID := p.InvoiceID
			payments[i].InvoiceID = &invoiceID
		}
	}

	usage := make([]model.UsageRecord, len(f.UsageRecords))
	for i, u := range f.UsageRecords {
		usage[i] = model.UsageRecord{
			Record:      model.Record{ID: u.ID},
			Name:        u.Name,
			AccountID:   u.AccountID,
			ServiceType: u.ServiceType,
			UsageAmount: u.UsageAmount,
			UnitPrice:   u.UnitPrice,
			TotalCost:   u.TotalCost,
			UsageDate:   u.UsageDate,
		}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// parents first, so that foreign keys resolve
		if len(accounts) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&accounts).Error; err != nil {
				return fmt.Errorf("failed to seed accounts: %w", err)
			}
		}
		if len(invoices) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&invoices).Error; err != nil {
				return fmt.Errorf("failed to seed invoices: %w", err)
			}
		}
		if len(payments) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&payments).Error; err != nil {
				return fmt.Errorf("failed to seed payments: %w", err)
			}
		}
		if len(usage) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&usage).Error; err != nil {
				return fmt.Errorf("failed to seed usage records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SeedCounts{
		Accounts:     len(accounts),
		Invoices:     len(invoices),
		Payments:     len(payments),
		UsageRecords: len(usage),
	}, nil
}
