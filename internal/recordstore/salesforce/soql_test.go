package salesforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringLiteralEscaping(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Acme":            `'Acme'`,
		"O'Brien":         `'O\'Brien'`,
		`back\slash`:      `'back\\slash'`,
		`say "hi"`:        `'say \"hi\"'`,
		"line\nbreak\tx":  `'line\nbreak\tx'`,
		"' OR Id != null": `'\' OR Id != null'`,
	}
	for in, want := range cases {
		got, err := String(in).literal()
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestContainsLiteralEscapesWildcards(t *testing.T) {
	t.Parallel()

	got, err := Contains("50%_off").literal()
	require.NoError(t, err)
	assert.Equal(t, `'%50\%\_off%'`, got)

	got, err = Contains("Acme's").literal()
	require.NoError(t, err)
	assert.Equal(t, `'%Acme\'s%'`, got)
}

func TestIDLiteral(t *testing.T) {
	t.Parallel()

	got, err := ID("001000000000001").literal()
	require.NoError(t, err)
	assert.Equal(t, "'001000000000001'", got)

	got, err = ID("001000000000001AAA").literal()
	require.NoError(t, err)
	assert.Equal(t, "'001000000000001AAA'", got)

	for _, bad := range []string{"", "short", "001000000000001AA", "001000000000001AA'", "001' OR Id != '"} {
		_, err := ID(bad).literal()
		assert.Error(t, err, "id %q", bad)
	}
}

func TestDateLiteral(t *testing.T) {
	t.Parallel()

	got, err := Date("2024-01-31").literal()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", got)

	for _, bad := range []string{"2024-1-31", "2024-02-30", "yesterday", "2024-01-01 OR Id != null"} {
		_, err := Date(bad).literal()
		assert.Error(t, err, "date %q", bad)
	}
}

func TestQueryBuild(t *testing.T) {
	t.Parallel()

	t.Run("full query", func(t *testing.T) {
		soql, err := Select("Id", "Name").
			From("Invoice__c").
			Where("Account__c", OpEq, ID("001000000000001AAA")).
			Where("Invoice_Date__c", OpGte, Date("2024-01-01")).
			Where("Status__c", OpEq, String("Paid")).
			OrderBy("Invoice_Date__c", Desc).
			Limit(100).
			Build()
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT Id, Name FROM Invoice__c WHERE Account__c = '001000000000001AAA' "+
				"AND Invoice_Date__c >= 2024-01-01 AND Status__c = 'Paid' ORDER BY Invoice_Date__c DESC LIMIT 100",
			soql,
		)
	})

	t.Run("no conditions", func(t *testing.T) {
		soql, err := Select("Id").From("Account").OrderBy("Name", Asc).Build()
		require.NoError(t, err)
		assert.Equal(t, "SELECT Id FROM Account ORDER BY Name ASC", soql)
	})

	t.Run("invalid value fails the whole query", func(t *testing.T) {
		_, err := Select("Id").From("Account").Where("Id", OpEq, ID("nope")).Build()
		assert.ErrorContains(t, err, "invalid Salesforce ID")
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := Select("Id").Build()
		assert.Error(t, err)
	})
}
