package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/pkg/types"
	"go.uber.org/zap"
)

// APIError is an error response returned by the Salesforce REST API.
// Its message is surfaced to tool callers verbatim.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is reports an expired or revoked session as ErrInvalidSession.
func (e *APIError) Is(target error) bool {
	return target == ErrInvalidSession && e.StatusCode == http.StatusUnauthorized
}

// Store is a recordstore.Store backed by the Salesforce REST API.
type Store struct {
	sessions   *SessionManager
	httpClient *http.Client
	apiVersion string
	logger     *zap.Logger
}

var _ recordstore.Store = (*Store)(nil)

// NewStore creates a Salesforce record store that shares the given session manager.
func NewStore(sessions *SessionManager, logger *zap.Logger) *Store {
	return &Store{
		sessions:   sessions,
		httpClient: sessions.httpClient,
		apiVersion: sessions.conf.APIVersion,
		logger:     logger,
	}
}

func (s *Store) Connect(ctx context.Context) error {
	_, err := s.sessions.Get(ctx)
	return err
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.sessions.Close(ctx)
}

func (s *Store) QueryInvoices(ctx context.Context, f recordstore.InvoiceFilter) (*recordstore.QueryResult[types.Invoice], error) {
	q := Select(
		"Id", "Name", "Invoice_Number__c", "Account__c", "Account__r.Name", "Amount__c",
		"Status__c", "Invoice_Date__c", "Due_Date__c", "CreatedDate",
	).From("Invoice__c")

	if f.AccountID != "" {
		q.Where("Account__c", OpEq, ID(f.AccountID))
	}
	if f.StartDate != "" {
		q.Where("Invoice_Date__c", OpGte, Date(f.StartDate))
	}
	if f.EndDate != "" {
		q.Where("Invoice_Date__c", OpLte, Date(f.EndDate))
	}
	if f.Status != "" {
		q.Where("Status__c", OpEq, String(f.Status))
	}
	q.OrderBy("Invoice_Date__c", Desc).Limit(recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit))

	resp, err := runQuery[invoiceSObject](ctx, s, q)
	if err != nil {
		return nil, err
	}
	return convertRecords(resp, invoiceSObject.toAPI), nil
}

func (s *Store) QueryAccounts(ctx context.Context, f recordstore.AccountFilter) (*recordstore.QueryResult[types.Account], error) {
	q := Select(
		"Id", "Name", "BillingStreet", "BillingCity", "BillingState", "BillingPostalCode",
		"BillingCountry", "Phone", "Industry", "AnnualRevenue", "Type",
	).From("Account")

	if f.AccountID != "" {
		q.Where("Id", OpEq, ID(f.AccountID))
	}
	if f.AccountName != "" {
		q.Where("Name", OpLike, Contains(f.AccountName))
	}
	q.OrderBy("Name", Asc).Limit(recordstore.LimitOrDefault(f.Limit, recordstore.DefaultAccountLimit))

	resp, err := runQuery[accountSObject](ctx, s, q)
	if err != nil {
		return nil, err
	}
	return convertRecords(resp, accountSObject.toAPI), nil
}

func (s *Store) QueryUsageRecords(ctx context.Context, f recordstore.UsageFilter) (*recordstore.QueryResult[types.UsageRecord], error) {
	q := Select(
		"Id", "Name", "Account__c", "Account__r.Name", "Service_Type__c", "Usage_Amount__c",
		"Unit_Price__c", "Total_Cost__c", "Usage_Date__c", "CreatedDate",
	).From("Usage_Record__c")

	if f.AccountID != "" {
		q.Where("Account__c", OpEq, ID(f.AccountID))
	}
	if f.StartDate != "" {
		q.Where("Usage_Date__c", OpGte, Date(f.StartDate))
	}
	if f.EndDate != "" {
		q.Where("Usage_Date__c", OpLte, Date(f.EndDate))
	}
	if f.ServiceType != "" {
		q.Where("Service_Type__c", OpEq, String(f.ServiceType))
	}
	q.OrderBy("Usage_Date__c", Desc).Limit(recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit))

	resp, err := runQuery[usageSObject](ctx, s, q)
	if err != nil {
		return nil, err
	}
	return convertRecords(resp, usageSObject.toAPI), nil
}

func (s *Store) QueryPayments(ctx context.Context, f recordstore.PaymentFilter) (*recordstore.QueryResult[types.Payment], error) {
	q := Select(
		"Id", "Name", "Payment_Number__c", "Invoice__c", "Invoice__r.Invoice_Number__c", "Account__c",
		"Account__r.Name", "Amount__c", "Payment_Date__c", "Payment_Method__c", "Status__c", "CreatedDate",
	).From("Payment__c")

	if f.AccountID != "" {
		q.Where("Account__c", OpEq, ID(f.AccountID))
	}
	if f.InvoiceID != "" {
		q.Where("Invoice__c", OpEq, ID(f.InvoiceID))
	}
	if f.StartDate != "" {
		q.Where("Payment_Date__c", OpGte, Date(f.StartDate))
	}
	if f.EndDate != "" {
		q.Where("Payment_Date__c", OpLte, Date(f.EndDate))
	}
	if f.Status != "" {
		q.Where("Status__c", OpEq, String(f.Status))
	}
	q.OrderBy("Payment_Date__c", Desc).Limit(recordstore.LimitOrDefault(f.Limit, recordstore.DefaultLimit))

	resp, err := runQuery[paymentSObject](ctx, s, q)
	if err != nil {
		return nil, err
	}
	return convertRecords(resp, paymentSObject.toAPI), nil
}

// queryResponse is the body of a successful /query call.
type queryResponse[T any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsURL string `json:"nextRecordsUrl"`
	Records        []T    `json:"records"`
}

// runQuery executes a SOQL query with the current session.
// Only the first batch is read; every query here carries a LIMIT well below the batch size.
func runQuery[T any](ctx context.Context, s *Store, q *Query) (*queryResponse[T], error) {
	soql, err := q.Build()
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/services/data/v%s/query?q=%s", sess.InstanceURL, s.apiVersion, url.QueryEscape(soql))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	sess.authorize(req)

	s.logger.Debug("Running SOQL query", zap.String("soql", soql))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send query to Salesforce: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		s.sessions.Invalidate(sess)
		return nil, parseAPIError(resp)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(resp)
		s.logger.Error("Query error", zap.Error(apiErr), zap.String("soql", soql))
		return nil, apiErr
	}

	var body queryResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	return &body, nil
}

func convertRecords[S any, T any](resp *queryResponse[S], conv func(S) T) *recordstore.QueryResult[T] {
	records := make([]T, len(resp.Records))
	for i, r := range resp.Records {
		records[i] = conv(r)
	}
	return &recordstore.QueryResult[T]{TotalSize: resp.TotalSize, Records: records}
}

// parseAPIError reads a Salesforce error body.
// The REST API returns a list of {message, errorCode}; the OAuth endpoints return
// {error, error_description}.
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(resp.Body)

	var restErrs []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(data, &restErrs); err == nil && len(restErrs) > 0 {
		apiErr.Code = restErrs[0].ErrorCode
		apiErr.Message = restErrs[0].Message
		return apiErr
	}

	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &oauthErr); err == nil && oauthErr.Error != "" {
		apiErr.Code = oauthErr.Error
		apiErr.Message = oauthErr.ErrorDescription
		if apiErr.Message == "" {
			apiErr.Message = oauthErr.Error
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status: %d", resp.StatusCode)
	}
	return apiErr
}
