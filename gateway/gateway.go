// Package gateway is the uniform access layer over the remote tables of the
// hosted database: select with filters, ordering and embedded child rows,
// insert, update and delete. Two backends exist, PostgREST over HTTP and gorm
// over a direct SQL connection.
package gateway

import "context"

// Row maps column names to values for insert and update calls
type Row map[string]any

type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// In matches any of values. An empty list matches nothing.
func In(column string, values ...string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

type Order struct {
	Column     string
	Descending bool
}

func Asc(column string) Order {
	return Order{Column: column}
}

func Desc(column string) Order {
	return Order{Column: column, Descending: true}
}

// Embed describes a child collection returned inline with every parent row.
// Table is also the JSON key of the embedded array, Field is the struct field
// the SQL backend preloads into.
type Embed struct {
	Table      string
	ForeignKey string
	Field      string
	Order      []Order
}

type Query struct {
	Table   string
	Columns []string // empty selects every column
	Embeds  []Embed
	Filters []Filter
	Order   []Order
	Limit   int
}

// Gateway is implemented by every backend. dest passed to Select must be a
// pointer to a slice.
type Gateway interface {
	Select(ctx context.Context, q Query, dest any) error
	// Insert stores one row and returns the id assigned by the backend
	Insert(ctx context.Context, table string, row Row) (string, error)
	// Append inserts without reading the row back, as required by
	// insert-only tables
	Append(ctx context.Context, table string, row Row) error
	Update(ctx context.Context, table string, patch Row, filters ...Filter) error
	Delete(ctx context.Context, table string, filters ...Filter) error
}
