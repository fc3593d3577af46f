// Package salesforce implements the record store on top of the Salesforce REST API.
package salesforce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultLoginURL   = "https://login.salesforce.com"
	DefaultAPIVersion = "58.0"

	loginTimeout = 30 * time.Second
)

// ErrInvalidSession is returned when Salesforce rejects the cached session.
// The session is dropped so that the next call logs in again.
var ErrInvalidSession = errors.New("salesforce session is no longer valid")

// Config holds the credentials and endpoints used to log into Salesforce.
type Config struct {
	LoginURL   string
	APIVersion string

	Username      string
	Password      string
	SecurityToken string

	// ClientID and ClientSecret identify the connected app used for the
	// OAuth2 username-password flow.
	ClientID     string
	ClientSecret string

	// HTTPClient is used for all requests to Salesforce. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Session is an authenticated Salesforce session.
type Session struct {
	InstanceURL string
	token       *oauth2.Token
}

// authorize sets the session's credentials on an outgoing request.
func (s *Session) authorize(req *http.Request) {
	s.token.SetAuthHeader(req)
}

// SessionManager owns the single Salesforce session shared by all requests.
// The session is established lazily on first use. Concurrent first requests
// share one login attempt.
type SessionManager struct {
	conf       Config
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	session *Session
}

// NewSessionManager creates a session manager. No network call is made until Get is called.
func NewSessionManager(conf Config, logger *zap.Logger) *SessionManager {
	if conf.LoginURL == "" {
		conf.LoginURL = DefaultLoginURL
	}
	conf.LoginURL = strings.TrimRight(conf.LoginURL, "/")
	if conf.APIVersion == "" {
		conf.APIVersion = DefaultAPIVersion
	}
	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SessionManager{
		conf: conf,
		oauth: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  conf.LoginURL + "/services/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		logger:     logger,
	}
}

// Get returns the current session, logging in if there is none.
// The login is shared by every caller waiting for it and outlives the caller that started it;
// a caller whose context ends stops waiting without aborting the login for the others.
func (m *SessionManager) Get(ctx context.Context) (*Session, error) {
	if s := m.current(); s != nil {
		return s, nil
	}

	ch := m.group.DoChan("login", func() (any, error) {
		// another caller may have finished logging in while we were waiting on the group
		if s := m.current(); s != nil {
			return s, nil
		}
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loginTimeout)
		defer cancel()
		s, err := m.login(loginCtx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.session = s
		m.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the given session if it is still the current one.
func (m *SessionManager) Invalidate(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == s {
		m.session = nil
		m.logger.Warn("Salesforce session invalidated", zap.String("instance_url", s.InstanceURL))
	}
}

// Close revokes the current session, if any.
func (m *SessionManager) Close(ctx context.Context) error {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}

	form := url.Values{"token": {s.token.AccessToken}}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.conf.LoginURL+"/services/oauth2/revoke",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke Salesforce session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	m.logger.Info("Disconnected from Salesforce")
	return nil
}

func (m *SessionManager) current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionManager) login(ctx context.Context) (*Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	tok, err := m.oauth.PasswordCredentialsToken(ctx, m.conf.Username, m.conf.Password+m.conf.SecurityToken)
	if err != nil {
		m.logger.Error("Salesforce connection error", zap.Error(err))
		return nil, fmt.Errorf("Failed to connect to Salesforce: %s", loginErrorMessage(err))
	}

	instanceURL, _ := tok.Extra("instance_url").(string)
	if instanceURL == "" {
		return nil, fmt.Errorf("Failed to connect to Salesforce: token response has no instance_url")
	}

	m.logger.Info("Connected to Salesforce successfully", zap.String("instance_url", instanceURL))
	return &Session{
		InstanceURL: strings.TrimRight(instanceURL, "/"),
		token:       tok,
	}, nil
}

// loginErrorMessage extracts the human-readable part of an OAuth2 token error.
func loginErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return re.ErrorDescription
		}
		if re.ErrorCode != "" {
			return re.ErrorCode
		}
	}
	return err.Error()
}
