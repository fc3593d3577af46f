// Package sqlstore implements the record store on top of a SQL database through gorm.
// It holds the same records as the upstream CRM and is used for local development,
// demos and tests.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/sfbilling/sfbilling/internal/model"
	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/pkg/types"
	"gorm.io/gorm"
)

// Store is a recordstore.Store backed by a gorm database.
type Store struct {
	db *gorm.DB
}

var _ recordstore.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Connect verifies that the database is reachable.
func (s *Store) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to record store database: %w", err)
	}
	return nil
}

// Disconnect closes the underlying database connection pool.
func (s *Store) Disconnect(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) QueryInvoices(ctx context.Context, f recordstore.InvoiceFilter) (*recordstore.QueryResult[types.Invoice], error) {
	if err := validateDateRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	filter := func(db *gorm.DB) *gorm.DB {
		db = whereEq(db, "account_id", f.AccountID)
		db = whereDateRange(db, "invoice_date", f.StartDate, f.EndDate)
		return whereEq(db, "status", f.Status)
	}

	var rows []*model.Invoice
	total, err := s.find(ctx, &model.Invoice{}, &rows, filter, "invoice_date DESC",
		recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit), "Account")
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return toResult(rows, total, (*model.Invoice).ToAPI), nil
}

func (s *Store) QueryAccounts(ctx context.Context, f recordstore.AccountFilter) (*recordstore.QueryResult[types.Account], error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = whereEq(db, "id", f.AccountID)
		if f.AccountName != "" {
			db = db.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(f.AccountName)+"%")
		}
		return db
	}

	var rows []*model.Account
	total, err := s.find(ctx, &model.Account{}, &rows, filter, "name ASC",
		recordstore.LimitOrDefault(f.Limit, recordstore.DefaultAccountLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	return toResult(rows, total, (*model.Account).ToAPI), nil
}

func (s *Store) QueryUsageRecords(ctx context.Context, f recordstore.UsageFilter) (*recordstore.QueryResult[types.UsageRecord], error) {
	if err := validateDateRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	filter := func(db *gorm.DB) *gorm.DB {
		db = whereEq(db, "account_id", f.AccountID)
		db = whereDateRange(db, "usage_date", f.StartDate, f.EndDate)
		return whereEq(db, "service_type", f.ServiceType)
	}

	var rows []*model.UsageRecord
	total, err := s.find(ctx, &model.UsageRecord{}, &rows, filter, "usage_date DESC",
		recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit), "Account")
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	return toResult(rows, total, (*model.UsageRecord).ToAPI), nil
}

func (s *Store) QueryPayments(ctx context.Context, f recordstore.PaymentFilter) (*recordstore.QueryResult[types.Payment], error) {
	if err := validateDateRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	filter := func(db *gorm.DB) *gorm.DB {
		db = whereEq(db, "account_id", f.AccountID)
		db = whereEq(db, "invoice_id", f.InvoiceID)
		db = whereDateRange(db, "payment_date", f.StartDate, f.EndDate)
		return whereEq(db, "status", f.Status)
	}

	var rows []*model.Payment
	total, err := s.find(ctx, &model.Payment{}, &rows, filter, "payment_date DESC",
		recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit), "Account", "Invoice")
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	return toResult(rows, total, (*model.Payment).ToAPI), nil
}

// find counts all rows matching filter, then loads one page of them.
// Every caller value reaches the database as a bound parameter.
func (s *Store) find(
	ctx context.Context,
	m any,
	dest any,
	filter func(*gorm.DB) *gorm.DB,
	order string,
	limit int,
	preloads ...string,
) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(m).Scopes(filter).Count(&total).Error; err != nil {
		return 0, err
	}

	q := s.db.WithContext(ctx).Scopes(filter).Order(order).Limit(limit)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(dest).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func toResult[M any, T any](rows []*M, total int, conv func(*M) T) *recordstore.QueryResult[T] {
	records := make([]T, len(rows))
	for i, r := range rows {
		records[i] = conv(r)
	}
	return &recordstore.QueryResult[T]{TotalSize: total, Records: records}
}

func whereEq(db *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return db
	}
	return db.Where(column+" = ?", value)
}

func whereDateRange(db *gorm.DB, column, start, end string) *gorm.DB {
	if start != "" {
		db = db.Where(column+" >= ?", start)
	}
	if end != "" {
		db = db.Where(column+" <= ?", end)
	}
	return db
}

func validateDateRange(start, end string) error {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if err := recordstore.ValidateDate(d); err != nil {
			return err
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
