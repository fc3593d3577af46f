package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sfbilling/sfbilling/internal/db"
	"github.com/sfbilling/sfbilling/internal/migrations"
	"github.com/sfbilling/sfbilling/internal/recordstore"
	"github.com/sfbilling/sfbilling/internal/recordstore/salesforce"
	"github.com/sfbilling/sfbilling/internal/recordstore/sqlstore"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newRecordStore builds the record store selected by the environment.
func newRecordStore(fs afero.Fs, logger *zap.Logger) (recordstore.Store, recordStoreKind, error) {
	kind, err := getRecordStoreKind()
	if err != nil {
		return nil, "", err
	}

	switch kind {
	case recordStoreSalesforce:
		conf, err := getSalesforceConfig(fs)
		if err != nil {
			return nil, "", err
		}
		sessions := salesforce.NewSessionManager(*conf, logger)
		return salesforce.NewStore(sessions, logger), kind, nil
	default:
		dbConn, err := openRecordDB(fs)
		if err != nil {
			return nil, "", err
		}
		return sqlstore.NewStore(dbConn), kind, nil
	}
}

// openRecordDB connects to the SQL record store and brings its schema up to date.
func openRecordDB(fs afero.Fs) (*gorm.DB, error) {
	dsn, err := getDSN(fs)
	if err != nil {
		return nil, err
	}
	dbConn, err := db.NewDBConnection(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(dbConn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}
	return dbConn, nil
}

// getSalesforceConfig reads the Salesforce credentials from the environment.
func getSalesforceConfig(fs afero.Fs) (*salesforce.Config, error) {
	conf := &salesforce.Config{
		LoginURL:   os.Getenv(SalesforceLoginURLEnvVar),
		APIVersion: os.Getenv(SalesforceAPIVersionEnvVar),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}

	secrets := []struct {
		envVar   string
		dest     *string
		required bool
	}{
		{SalesforceUsernameEnvVar, &conf.Username, true},
		{SalesforcePasswordEnvVar, &conf.Password, true},
		{SalesforceTokenEnvVar, &conf.SecurityToken, false},
		{SalesforceClientIDEnvVar, &conf.ClientID, true},
		{SalesforceSecretEnvVar, &conf.ClientSecret, true},
	}
	for _, s := range secrets {
		v, err := getEnvOrFile(fs, s.envVar)
		if err != nil {
			return nil, err
		}
		if v == "" && s.required {
			return nil, fmt.Errorf("%s (or %s_FILE) must be set to use the Salesforce record store", s.envVar, s.envVar)
		}
		*s.dest = v
	}
	return conf, nil
}
