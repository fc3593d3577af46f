package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/secrets/password", []byte("s3cret\n"), 0o600))

	t.Run("env var wins", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "from-env")
		t.Setenv("TEST_SECRET_FILE", "/run/secrets/password")

		v, err := getEnvOrFile(fs, "TEST_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "from-env", v)
	})

	t.Run("file is read and trimmed", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "")
		t.Setenv("TEST_SECRET_FILE", "/run/secrets/password")

		v, err := getEnvOrFile(fs, "TEST_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", v)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "")
		t.Setenv("TEST_SECRET_FILE", "/run/secrets/nope")

		_, err := getEnvOrFile(fs, "TEST_SECRET")
		assert.ErrorContains(t, err, "TEST_SECRET_FILE")
	})

	t.Run("neither set", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "")
		t.Setenv("TEST_SECRET_FILE", "")

		v, err := getEnvOrFile(fs, "TEST_SECRET")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestGetBoolEnv(t *testing.T) {
	cases := []struct {
		value   string
		def     bool
		want    bool
		wantErr bool
	}{
		{"", true, true, false},
		{"", false, false, false},
		{"true", false, true, false},
		{"ON", false, true, false},
		{"0", true, false, false},
		{"no", true, false, false},
		{"maybe", true, false, true},
	}
	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", c.value)
			got, err := getBoolEnv("TEST_BOOL", c.def)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("TEST_LIST", " https://a.example.com, ,https://b.example.com ,")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, getListEnv("TEST_LIST"))

	t.Setenv("TEST_LIST", "")
	assert.Empty(t, getListEnv("TEST_LIST"))
}

func TestGetRecordStoreKind(t *testing.T) {
	t.Run("sql when nothing is configured", func(t *testing.T) {
		t.Setenv(RecordStoreEnvVar, "")
		t.Setenv(SalesforceUsernameEnvVar, "")
		t.Setenv(SalesforceUsernameEnvVar+"_FILE", "")

		kind, err := getRecordStoreKind()
		require.NoError(t, err)
		assert.Equal(t, recordStoreSQL, kind)
	})

	t.Run("salesforce when a username is present", func(t *testing.T) {
		t.Setenv(RecordStoreEnvVar, "")
		t.Setenv(SalesforceUsernameEnvVar, "billing@example.com")

		kind, err := getRecordStoreKind()
		require.NoError(t, err)
		assert.Equal(t, recordStoreSalesforce, kind)
	})

	t.Run("explicit choice wins", func(t *testing.T) {
		t.Setenv(RecordStoreEnvVar, "SQL")
		t.Setenv(SalesforceUsernameEnvVar, "billing@example.com")

		kind, err := getRecordStoreKind()
		require.NoError(t, err)
		assert.Equal(t, recordStoreSQL, kind)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv(RecordStoreEnvVar, "mongo")

		_, err := getRecordStoreKind()
		assert.ErrorContains(t, err, RecordStoreEnvVar)
	})
}

func TestGetDSN(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("database url wins", func(t *testing.T) {
		t.Setenv(DBUrlEnvVar, "postgres://u:p@db:5432/billing")
		t.Setenv(PostgresHostEnvVar, "other")

		dsn, err := getDSN(fs)
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db:5432/billing", dsn)
	})

	t.Run("postgres variables with defaults", func(t *testing.T) {
		t.Setenv(DBUrlEnvVar, "")
		t.Setenv(PostgresHostEnvVar, "db")
		t.Setenv(PostgresPortEnvVar, "")
		t.Setenv(PostgresUserEnvVar, "")
		t.Setenv(PostgresPasswordEnvVar, "p@ss word")
		t.Setenv(PostgresDBEnvVar, "")

		dsn, err := getDSN(fs)
		require.NoError(t, err)
		assert.Equal(t, "postgres://postgres:p%40ss+word@db:5432/postgres", dsn)
	})

	t.Run("empty means sqlite", func(t *testing.T) {
		t.Setenv(DBUrlEnvVar, "")
		t.Setenv(PostgresHostEnvVar, "")

		dsn, err := getDSN(fs)
		require.NoError(t, err)
		assert.Empty(t, dsn)
	})
}

func TestGetSalesforceConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/secrets/client_secret", []byte("shh"), 0o600))

	setAll := func(t *testing.T) {
		t.Setenv(SalesforceLoginURLEnvVar, "https://test.salesforce.com")
		t.Setenv(SalesforceAPIVersionEnvVar, "")
		t.Setenv(SalesforceUsernameEnvVar, "billing@example.com")
		t.Setenv(SalesforcePasswordEnvVar, "pw")
		t.Setenv(SalesforceTokenEnvVar, "")
		t.Setenv(SalesforceClientIDEnvVar, "client-id")
		t.Setenv(SalesforceSecretEnvVar, "")
		t.Setenv(SalesforceSecretEnvVar+"_FILE", "/secrets/client_secret")
	}

	t.Run("complete", func(t *testing.T) {
		setAll(t)

		conf, err := getSalesforceConfig(fs)
		require.NoError(t, err)
		assert.Equal(t, "https://test.salesforce.com", conf.LoginURL)
		assert.Equal(t, "billing@example.com", conf.Username)
		assert.Equal(t, "pw", conf.Password)
		assert.Empty(t, conf.SecurityToken)
		assert.Equal(t, "client-id", conf.ClientID)
		assert.Equal(t, "shh", conf.ClientSecret)
		assert.NotNil(t, conf.HTTPClient)
	})

	t.Run("missing password", func(t *testing.T) {
		setAll(t)
		t.Setenv(SalesforcePasswordEnvVar, "")

		_, err := getSalesforceConfig(fs)
		assert.ErrorContains(t, err, SalesforcePasswordEnvVar)
	})
}
