// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"cozyvile/gateway"
)

type Call struct {
	Op    string
	Table string
}

// Child declares a cascading foreign key: deleting a parent row removes the
// child rows referencing it.
type Child struct {
	Table      string
	ForeignKey string
}

// Memory stores rows as JSON-normalised maps. Fail* maps inject an error for
// every call of that kind against the given table.
type Memory struct {
	FailSelect map[string]error
	FailInsert map[string]error
	FailUpdate map[string]error
	FailDelete map[string]error
	Cascade    map[string][]Child
	Unique     map[string]string // table -> column

	mutex  sync.Mutex
	tables map[string][]map[string]any
	seq    int
	calls  []Call
}

func NewMemory() *Memory {
	return &Memory{
		FailSelect: map[string]error{},
		FailInsert: map[string]error{},
		FailUpdate: map[string]error{},
		FailDelete: map[string]error{},
		Cascade:    map[string][]Child{},
		Unique:     map[string]string{},
		tables:     map[string][]map[string]any{},
	}
}

// Seed stores row without recording a call and returns its id
func (m *Memory) Seed(table string, row gateway.Row) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.insert(table, row)
}

func (m *Memory) Rows(table string) []map[string]any {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	result := make([]map[string]any, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		result = append(result, copyRow(r))
	}
	return result
}

func (m *Memory) Calls() []Call {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]Call{}, m.calls...)
}

// Count returns how many calls of op ("select", "insert", "update", "delete")
// hit table. An empty table counts every table.
func (m *Memory) Count(op, table string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Op == op && (table == "" || c.Table == table) {
			n++
		}
	}
	return n
}

func (m *Memory) record(op, table string) {
	m.calls = append(m.calls, Call{Op: op, Table: table})
}

func (m *Memory) Select(ctx context.Context, q gateway.Query, dest any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.record("select", q.Table)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.FailSelect[q.Table]; err != nil {
		return err
	}
	rows := m.match(q.Table, q.Filters)
	sortRows(rows, q.Order)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	for _, row := range rows {
		for _, e := range q.Embeds {
			children := m.match(e.Table, []gateway.Filter{gateway.Eq(e.ForeignKey, row["id"])})
			sortRows(children, e.Order)
			row[e.Table] = children
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (m *Memory) Insert(ctx context.Context, table string, row gateway.Row) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.record("insert", table)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.FailInsert[table]; err != nil {
		return "", err
	}
	if column, ok := m.Unique[table]; ok {
		if len(m.match(table, []gateway.Filter{gateway.Eq(column, row[column])})) > 0 {
			return "", &gateway.Error{Status: 409, Code: gateway.CodeUniqueViolation, Message: "duplicate key value violates unique constraint"}
		}
	}
	return m.insert(table, row), nil
}

func (m *Memory) Append(ctx context.Context, table string, row gateway.Row) error {
	_, err := m.Insert(ctx, table, row)
	return err
}

func (m *Memory) Update(ctx context.Context, table string, patch gateway.Row, filters ...gateway.Filter) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.record("update", table)
	if len(filters) == 0 {
		return gateway.ErrMissingFilter
	}
	if err := m.FailUpdate[table]; err != nil {
		return err
	}
	normalized := normalize(patch)
	for _, row := range m.tables[table] {
		if matches(row, filters) {
			for k, v := range normalized {
				row[k] = v
			}
		}
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, table string, filters ...gateway.Filter) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.record("delete", table)
	if len(filters) == 0 {
		return gateway.ErrMissingFilter
	}
	if err := m.FailDelete[table]; err != nil {
		return err
	}
	m.delete(table, filters)
	return nil
}

func (m *Memory) delete(table string, filters []gateway.Filter) {
	kept := m.tables[table][:0]
	var removed []map[string]any
	for _, row := range m.tables[table] {
		if matches(row, filters) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	for _, row := range removed {
		for _, child := range m.Cascade[table] {
			m.delete(child.Table, []gateway.Filter{gateway.Eq(child.ForeignKey, row["id"])})
		}
	}
}

func (m *Memory) insert(table string, row gateway.Row) string {
	stored := normalize(row)
	id, _ := stored["id"].(string)
	if id == "" {
		m.seq++
		id = fmt.Sprintf("%s-%d", table, m.seq)
		stored["id"] = id
	}
	m.tables[table] = append(m.tables[table], stored)
	return id
}

func (m *Memory) match(table string, filters []gateway.Filter) []map[string]any {
	var result []map[string]any
	for _, row := range m.tables[table] {
		if matches(row, filters) {
			result = append(result, copyRow(row))
		}
	}
	return result
}

func matches(row map[string]any, filters []gateway.Filter) bool {
	for _, f := range filters {
		if values, ok := f.Value.([]string); ok && f.Op == gateway.OpIn {
			if !contains(values, fmt.Sprint(row[f.Column])) {
				return false
			}
			continue
		}
		if fmt.Sprint(row[f.Column]) != fmt.Sprint(normalizeValue(f.Value)) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

func sortRows(rows []map[string]any, order []gateway.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compare(rows[i][o.Column], rows[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	fa, okA := a.(float64)
	fb, okB := b.(float64)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func normalize(row gateway.Row) map[string]any {
	result := map[string]any{}
	data, err := json.Marshal(row)
	if err != nil {
		panic(err)
	}
	if err = json.Unmarshal(data, &result); err != nil {
		panic(err)
	}
	return result
}

func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var result any
	if json.Unmarshal(data, &result) != nil {
		return v
	}
	return result
}

func copyRow(row map[string]any) map[string]any {
	result := make(map[string]any, len(row))
	for k, v := range row {
		result[k] = v
	}
	return result
}
