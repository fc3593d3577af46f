package salesforce

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sfbilling/sfbilling/internal/recordstore"
)

// Caller-supplied values never reach a SOQL string unescaped.
// Every value is typed and rendered by its own literal rules: ids and dates are validated,
// strings are quoted and escaped, LIKE patterns additionally escape their wildcards.

var validID = regexp.MustCompile(`^[a-zA-Z0-9]{15}([a-zA-Z0-9]{3})?$`)

// Value is a SOQL literal that knows how to render itself safely.
type Value interface {
	literal() (string, error)
}

// String is a SOQL string literal.
type String string

func (s String) literal() (string, error) {
	return "'" + escapeString(string(s)) + "'", nil
}

// ID is a Salesforce record id (15 or 18 alphanumeric characters).
type ID string

func (id ID) literal() (string, error) {
	if !validID.MatchString(string(id)) {
		return "", fmt.Errorf("invalid Salesforce ID '%s': must be 15 or 18 alphanumeric characters", string(id))
	}
	return "'" + string(id) + "'", nil
}

// Date is a SOQL date literal in YYYY-MM-DD format.
type Date string

func (d Date) literal() (string, error) {
	if err := recordstore.ValidateDate(string(d)); err != nil {
		return "", err
	}
	return string(d), nil
}

// Contains matches any string containing the value, for use with LIKE.
type Contains string

func (c Contains) literal() (string, error) {
	escaped := escapeString(string(c))
	escaped = strings.ReplaceAll(escaped, "%", `\%`)
	escaped = strings.ReplaceAll(escaped, "_", `\_`)
	return "'%" + escaped + "%'", nil
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

func escapeString(s string) string {
	return stringEscaper.Replace(s)
}

// Op is a SOQL comparison operator.
type Op string

const (
	OpEq   Op = "="
	OpGte  Op = ">="
	OpLte  Op = "<="
	OpLike Op = "LIKE"
)

type condition struct {
	field string
	op    Op
	value Value
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// Query builds a single-object SOQL SELECT statement.
// Field and object names are trusted (they are constants in this package);
// values are always passed as typed Values.
type Query struct {
	fields  []string
	object  string
	conds   []condition
	orderBy string
	order   Order
	limit   int
}

// Select starts a new query selecting the given fields.
func Select(fields ...string) *Query {
	return &Query{fields: fields}
}

// From sets the queried object.
func (q *Query) From(object string) *Query {
	q.object = object
	return q
}

// Where adds a condition. Conditions are joined with AND.
func (q *Query) Where(field string, op Op, v Value) *Query {
	q.conds = append(q.conds, condition{field: field, op: op, value: v})
	return q
}

// OrderBy sets the sort field and direction.
func (q *Query) OrderBy(field string, o Order) *Query {
	q.orderBy = field
	q.order = o
	return q
}

// Limit caps the number of returned rows. Non-positive values mean no limit.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Build renders the query. It fails if any value is not a valid literal.
func (q *Query) Build() (string, error) {
	if len(q.fields) == 0 || q.object == "" {
		return "", fmt.Errorf("query must select at least one field from an object")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.object)

	for i, c := range q.conds {
		lit, err := c.value.literal()
		if err != nil {
			return "", err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(c.field)
		b.WriteString(" ")
		b.WriteString(string(c.op))
		b.WriteString(" ")
		b.WriteString(lit)
	}

	if q.orderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s %s", q.orderBy, q.order)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	return b.String(), nil
}
