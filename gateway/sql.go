package gateway

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLGateway runs gateway calls directly against the database with gorm.
// With a nil Policy it has privileged access, otherwise it behaves like the
// anonymous role of the hosted service.
type SQLGateway struct {
	DB     *gorm.DB
	Policy Policy
}

func NewSQLGateway(db *gorm.DB) *SQLGateway {
	return &SQLGateway{DB: db}
}

func NewRestrictedSQLGateway(db *gorm.DB, policy Policy) *SQLGateway {
	if policy == nil {
		policy = Policy{}
	}
	return &SQLGateway{DB: db, Policy: policy}
}

func (g *SQLGateway) restricted() bool {
	return g.Policy != nil
}

func (g *SQLGateway) Select(ctx context.Context, q Query, dest any) error {
	filters := q.Filters
	tx := g.DB.WithContext(ctx).Table(q.Table)
	if g.restricted() {
		rule := g.Policy.rule(q.Table)
		if !rule.Read {
			return emptySlice(dest)
		}
		filters = append(append([]Filter{}, filters...), rule.ReadFilters...)
		if len(rule.HiddenColumns) > 0 {
			tx = tx.Omit(rule.HiddenColumns...)
		}
	}
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	tx = where(tx, filters)
	for _, o := range q.Order {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Descending})
	}
	for _, e := range q.Embeds {
		order := e.Order
		tx = tx.Preload(e.Field, func(db *gorm.DB) *gorm.DB {
			for _, o := range order {
				db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Descending})
			}
			return db
		})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return translate(tx.Find(dest).Error)
}

func (g *SQLGateway) Insert(ctx context.Context, table string, row Row) (string, error) {
	if g.restricted() && !g.Policy.rule(table).Insert {
		return "", policyViolation(table)
	}
	values := make(map[string]any, len(row)+2)
	for k, v := range row {
		values[k] = v
	}
	id, _ := values["id"].(string)
	if id == "" {
		id = uuid.NewString()
		values["id"] = id
	}
	if _, ok := values["created_at"]; !ok {
		values["created_at"] = time.Now().UTC()
	}
	if err := g.DB.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		return "", translate(err)
	}
	return id, nil
}

func (g *SQLGateway) Append(ctx context.Context, table string, row Row) error {
	_, err := g.Insert(ctx, table, row)
	return err
}

func (g *SQLGateway) Update(ctx context.Context, table string, patch Row, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if g.restricted() {
		return policyViolation(table)
	}
	tx := where(g.DB.WithContext(ctx).Table(table), filters)
	return translate(tx.Updates(map[string]any(patch)).Error)
}

func (g *SQLGateway) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if g.restricted() {
		return policyViolation(table)
	}
	tx := where(g.DB.WithContext(ctx).Table(table), filters)
	return translate(tx.Delete(map[string]any{}).Error)
}

func where(tx *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		column := clause.Column{Name: f.Column}
		if values, ok := f.Value.([]string); ok && f.Op == OpIn {
			in := make([]any, 0, len(values))
			for _, v := range values {
				in = append(in, v)
			}
			tx = tx.Where(clause.IN{Column: column, Values: in})
		} else {
			tx = tx.Where(clause.Eq{Column: column, Value: f.Value})
		}
	}
	return tx
}

func emptySlice(dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return errors.New("gateway: select destination must be a pointer to a slice")
	}
	v.Elem().Set(reflect.MakeSlice(v.Elem().Type(), 0, 0))
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Status: http.StatusConflict, Code: CodeUniqueViolation, Message: "duplicate key value violates unique constraint", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Message: "request cancelled", Err: err}
	}
	return &Error{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}
