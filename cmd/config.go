package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const (
	BindHostEnvVar  = "HOST"
	BindPortEnvVar  = "PORT"
	BindPortDefault = "8080"

	APIKeyEnvVar               = "API_KEY"
	LogLevelEnvVar             = "LOG_LEVEL"
	LogFormatEnvVar            = "LOG_FORMAT"
	TelemetryEnabledEnvVar     = "OTEL_ENABLED"
	ParamValidationEnvVar      = "TOOL_PARAM_VALIDATION"
	CORSOriginsEnvVar          = "CORS_ORIGINS"
	TrustedProxiesEnvVar       = "TRUSTED_PROXIES"
	RecordStoreEnvVar          = "RECORD_STORE"
	DBUrlEnvVar                = "DATABASE_URL"
	SalesforceLoginURLEnvVar   = "SALESFORCE_LOGIN_URL"
	SalesforceAPIVersionEnvVar = "SALESFORCE_API_VERSION"
	SalesforceUsernameEnvVar   = "SALESFORCE_USERNAME"
	SalesforcePasswordEnvVar   = "SALESFORCE_PASSWORD"
	SalesforceTokenEnvVar      = "SALESFORCE_SECURITY_TOKEN"
	SalesforceClientIDEnvVar   = "SALESFORCE_CLIENT_ID"
	SalesforceSecretEnvVar     = "SALESFORCE_CLIENT_SECRET"
)

const (
	PostgresHostEnvVar     = "POSTGRES_HOST"
	PostgresPortEnvVar     = "POSTGRES_PORT"
	PostgresUserEnvVar     = "POSTGRES_USER"
	PostgresPasswordEnvVar = "POSTGRES_PASSWORD"
	PostgresDBEnvVar       = "POSTGRES_DB"
)

// recordStoreKind selects the backend the tools query.
type recordStoreKind string

const (
	recordStoreSalesforce recordStoreKind = "salesforce"
	recordStoreSQL        recordStoreKind = "sql"
)

// getEnvOrFile returns the value of the given environment variable.
// If the environment variable is not set, it checks for a corresponding
// _FILE environment variable and reads the value from that file.
// If both are set, the value of the original environment variable takes precedence.
func getEnvOrFile(fs afero.Fs, envVar string) (string, error) {
	val := os.Getenv(envVar)
	if val != "" {
		return val, nil
	}

	fileEnvVar := envVar + "_FILE"
	filePath := os.Getenv(fileEnvVar)
	if filePath != "" {
		data, err := afero.ReadFile(fs, filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", fileEnvVar, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}

// getBoolEnv parses a boolean environment variable, returning def when it is not set.
func getBoolEnv(envVar string, def bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(envVar)))
	switch v {
	case "":
		return def, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf(
			"invalid value for %s environment variable: '%s', valid values are 'true' or 'false'",
			envVar, v,
		)
	}
}

// getListEnv splits a comma-separated environment variable, dropping empty items.
func getListEnv(envVar string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(envVar), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getRecordStoreKind returns the configured record store backend.
// Unless set explicitly, Salesforce is used when Salesforce credentials are present, SQL otherwise.
func getRecordStoreKind() (recordStoreKind, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(RecordStoreEnvVar)))
	switch v {
	case "":
		if os.Getenv(SalesforceUsernameEnvVar) != "" || os.Getenv(SalesforceUsernameEnvVar+"_FILE") != "" {
			return recordStoreSalesforce, nil
		}
		return recordStoreSQL, nil
	case string(recordStoreSalesforce), string(recordStoreSQL):
		return recordStoreKind(v), nil
	default:
		return "", fmt.Errorf(
			"invalid value for %s environment variable: '%s', valid values are '%s' and '%s'",
			RecordStoreEnvVar, v, recordStoreSalesforce, recordStoreSQL,
		)
	}
}

// getDSN returns the DSN of the SQL record store.
// DATABASE_URL wins over the individual Postgres variables; when neither is set, the DSN is empty
// and a local sqlite file is used.
func getDSN(fs afero.Fs) (string, error) {
	if dsn := os.Getenv(DBUrlEnvVar); dsn != "" {
		return dsn, nil
	}
	pgDSN, ok, err := getPostgresDSN(fs)
	if err != nil {
		return "", fmt.Errorf("failed to get postgres DSN: %w", err)
	}
	if ok {
		return pgDSN, nil
	}
	return "", nil
}

// getPostgresDSN constructs a Postgres DSN from individual Postgres-specific environment variables & files.
// If POSTGRES_HOST is not set, this function assumes that Postgres-specific env vars are not being used
// and returns ok=false.
func getPostgresDSN(fs afero.Fs) (string, bool, error) {
	host := os.Getenv(PostgresHostEnvVar)
	if host == "" {
		return "", false, nil
	}
	port := os.Getenv(PostgresPortEnvVar)
	if port == "" {
		port = "5432"
	}
	dbName, err := getEnvOrFile(fs, PostgresDBEnvVar)
	if err != nil {
		return "", false, fmt.Errorf("failed to get postgres DB name: %w", err)
	}
	if dbName == "" {
		dbName = "postgres"
	}
	pgUser, err := getEnvOrFile(fs, PostgresUserEnvVar)
	if err != nil {
		return "", false, fmt.Errorf("failed to get postgres user: %w", err)
	}
	if pgUser == "" {
		pgUser = "postgres"
	}
	password, err := getEnvOrFile(fs, PostgresPasswordEnvVar)
	if err != nil {
		return "", false, fmt.Errorf("failed to get postgres password: %w", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(pgUser),
		url.QueryEscape(password),
		host,
		port,
		url.QueryEscape(dbName),
	)
	return dsn, true, nil
}
