package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSalesforce serves the token, revoke and query endpoints of a Salesforce org.
type fakeSalesforce struct {
	t   *testing.T
	srv *httptest.Server

	logins  atomic.Int32
	revokes atomic.Int32

	mu         sync.Mutex
	queries    []string
	queryReply func(w http.ResponseWriter, soql string)
	loginReply func(w http.ResponseWriter)
}

func newFakeSalesforce(t *testing.T) *fakeSalesforce {
	f := &fakeSalesforce{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "billing@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "pwTOKEN", r.PostForm.Get("password"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		if f.loginReply != nil {
			f.loginReply(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "session-token",
			"token_type":   "Bearer",
			"instance_url": f.srv.URL,
		})
	})
	mux.HandleFunc("/services/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		f.revokes.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "session-token", r.PostForm.Get("token"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/services/data/v58.0/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		soql := r.URL.Query().Get("q")

		f.mu.Lock()
		f.queries = append(f.queries, soql)
		reply := f.queryReply
		f.mu.Unlock()

		if reply == nil {
			writeJSON(w, http.StatusOK, map[string]any{"totalSize": 0, "done": true, "records": []any{}})
			return
		}
		reply(w, soql)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSalesforce) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeSalesforce) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeSalesforce) newStore() *Store {
	sessions := NewSessionManager(Config{
		LoginURL:      f.srv.URL + "/",
		Username:      "billing@example.com",
		Password:      "pw",
		SecurityToken: "TOKEN",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		HTTPClient:    f.srv.Client(),
	}, zap.NewNop())
	return NewStore(sessions, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestQueryInvoicesMapsRecords(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	f.queryReply = func(w http.ResponseWriter, soql string) {
		writeJSON(w, http.StatusOK, map[string]any{
			"totalSize": 7,
			"done":      true,
			"records": []map[string]any{{
				"attributes":        map[string]any{"type": "Invoice__c"},
				"Id":                "a01000000000001AAA",
				"Invoice_Number__c": "INV-0001",
				"Account__c":        "001000000000001AAA",
				"Account__r":        map[string]any{"Name": "Acme Corp"},
				"Amount__c":         1250.5,
				"Status__c":         "Pending",
				"Invoice_Date__c":   "2024-01-15",
				"Due_Date__c":       nil,
				"CreatedDate":       "2024-01-15T10:00:00.000+0000",
			}},
		})
	}
	s := f.newStore()

	res, err := s.QueryInvoices(context.Background(), recordstore.InvoiceFilter{
		AccountID: "001000000000001AAA",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Status:    "Pending",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.TotalSize)
	require.Len(t, res.Records, 1)
	inv := res.Records[0]
	assert.Equal(t, "a01000000000001AAA", inv.ID)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, "Acme Corp", inv.AccountName)
	require.NotNil(t, inv.Amount)
	assert.Equal(t, 1250.5, *inv.Amount)
	assert.Empty(t, inv.DueDate)

	soql := f.lastQuery()
	assert.Contains(t, soql, "FROM Invoice__c")
	assert.Contains(t, soql, "Account__c = '001000000000001AAA'")
	assert.Contains(t, soql, "Invoice_Date__c >= 2024-01-01")
	assert.Contains(t, soql, "Invoice_Date__c <= 2024-01-31")
	assert.Contains(t, soql, "Status__c = 'Pending'")
	assert.Contains(t, soql, "ORDER BY Invoice_Date__c DESC LIMIT 100")
}

func TestQueryAccountsEscapesName(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	res, err := s.QueryAccounts(context.Background(), recordstore.AccountFilter{AccountName: "O'Brien_%", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalSize)
	assert.Empty(t, res.Records)

	soql := f.lastQuery()
	assert.Contains(t, soql, `Name LIKE '%O\'Brien\_\%%'`)
	assert.Contains(t, soql, "ORDER BY Name ASC LIMIT 5")
}

func TestQueryPaymentsMapsRelationships(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	f.queryReply = func(w http.ResponseWriter, soql string) {
		writeJSON(w, http.StatusOK, map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{{
				"Id":                "a02000000000001AAA",
				"Payment_Number__c": "PAY-0001",
				"Invoice__c":        "a01000000000001AAA",
				"Invoice__r":        map[string]any{"Invoice_Number__c": "INV-0001"},
				"Account__c":        "001000000000001AAA",
				"Account__r":        nil,
				"Amount__c":         40,
				"Payment_Date__c":   "2024-01-20",
				"Payment_Method__c": "Credit Card",
				"Status__c":         "Completed",
			}},
		})
	}
	s := f.newStore()

	res, err := s.QueryPayments(context.Background(), recordstore.PaymentFilter{InvoiceID: "a01000000000001AAA"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "INV-0001", res.Records[0].InvoiceNumber)
	assert.Empty(t, res.Records[0].AccountName)
	assert.Contains(t, f.lastQuery(), "Invoice__c = 'a01000000000001AAA'")
}

func TestQueryUsageRecordsFilters(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	_, err := s.QueryUsageRecords(context.Background(), recordstore.UsageFilter{ServiceType: "Storage", Limit: 10})
	require.NoError(t, err)

	soql := f.lastQuery()
	assert.Contains(t, soql, "FROM Usage_Record__c")
	assert.Contains(t, soql, "Service_Type__c = 'Storage'")
	assert.Contains(t, soql, "ORDER BY Usage_Date__c DESC LIMIT 10")
}

func TestInvalidValuesNeverReachSalesforce(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	_, err := s.QueryInvoices(context.Background(), recordstore.InvoiceFilter{AccountID: "001' OR Id != '"})
	assert.ErrorContains(t, err, "invalid Salesforce ID")

	_, err = s.QueryPayments(context.Background(), recordstore.PaymentFilter{StartDate: "2024-13-01"})
	assert.ErrorContains(t, err, "invalid date")

	assert.Equal(t, 0, f.queryCount())
	assert.Equal(t, int32(0), f.logins.Load())
}

func TestConcurrentFirstCallsShareOneLogin(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.QueryAccounts(context.Background(), recordstore.AccountFilter{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.logins.Load())
	assert.Equal(t, 10, f.queryCount())
}

func TestLoginSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	f.loginReply = func(w http.ResponseWriter) {
		started <- struct{}{}
		<-release
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "session-token",
			"token_type":   "Bearer",
			"instance_url": f.srv.URL,
		})
	}
	s := f.newStore()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Connect(firstCtx) }()
	<-started

	secondErr := make(chan error, 1)
	go func() { secondErr <- s.Connect(context.Background()) }()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), f.logins.Load())

	_, err := s.QueryAccounts(context.Background(), recordstore.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestConnectIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)

	var calls atomic.Int32
	f.queryReply = func(w http.ResponseWriter, soql string) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusUnauthorized, []map[string]string{{
				"message":   "Session expired or invalid",
				"errorCode": "INVALID_SESSION_ID",
			}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"totalSize": 0, "done": true, "records": []any{}})
	}
	s := f.newStore()

	_, err := s.QueryAccounts(context.Background(), recordstore.AccountFilter{})
	require.Error(t, err)
	assert.Equal(t, "Session expired or invalid", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidSession))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_SESSION_ID", apiErr.Code)

	// the next call logs in again
	_, err = s.QueryAccounts(context.Background(), recordstore.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.logins.Load())
}

func TestQueryErrorIsSurfacedVerbatim(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	f.queryReply = func(w http.ResponseWriter, soql string) {
		writeJSON(w, http.StatusBadRequest, []map[string]string{{
			"message":   "No such column 'Foo__c' on entity 'Invoice__c'",
			"errorCode": "INVALID_FIELD",
		}})
	}
	s := f.newStore()

	_, err := s.QueryInvoices(context.Background(), recordstore.InvoiceFilter{})
	require.Error(t, err)
	assert.Equal(t, "No such column 'Foo__c' on entity 'Invoice__c'", err.Error())
	assert.False(t, errors.Is(err, ErrInvalidSession))

	// a failed query keeps the session
	_, _ = s.QueryInvoices(context.Background(), recordstore.InvoiceFilter{})
	assert.Equal(t, int32(1), f.logins.Load())
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	f.loginReply = func(w http.ResponseWriter) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
	}
	s := f.newStore()

	err := s.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to connect to Salesforce: authentication failure", err.Error())

	_, err = s.QueryAccounts(context.Background(), recordstore.AccountFilter{})
	assert.Error(t, err)
	assert.Equal(t, 0, f.queryCount())
}

func TestDisconnectRevokesSession(t *testing.T) {
	t.Parallel()
	f := newFakeSalesforce(t)
	s := f.newStore()

	// nothing to revoke before the first login
	require.NoError(t, s.Disconnect(context.Background()))
	assert.Equal(t, int32(0), f.revokes.Load())

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Disconnect(context.Background()))
	assert.Equal(t, int32(1), f.revokes.Load())

	// a later call logs in again
	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, int32(2), f.logins.Load())
}

func TestParseAPIErrorFallsBackToStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusServiceUnavailable)
	err := parseAPIError(rec.Result())
	assert.Equal(t, "request failed with status: 503", err.Error())
}
