// Package query builds parameterized SQL statements from typed
// descriptors. Values are always bound as positional parameters and
// never interpolated into statement text; identifiers are validated
// against a strict pattern before use.
package query

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	ErrEmptyPatch    = errors.New("patch contains no fields to update")
	ErrBadIdentifier = errors.New("invalid SQL identifier")
	ErrBadOperator   = errors.New("unsupported filter operator")
	ErrEmptyIn       = errors.New("IN condition requires at least one value")
)

// identifier covers plain columns and alias-qualified columns.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// projection additionally allows an output alias.
var projection = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?( AS [A-Za-z_][A-Za-z0-9_]*)?$`)

var operators = map[string]bool{
	"=":    true,
	"!=":   true,
	"<":    true,
	"<=":   true,
	">":    true,
	">=":   true,
	"LIKE": true,
	"IN":   true,
}

// Condition is a single predicate; conditions are AND-combined.
// For the IN operator, Value must be a []interface{}.
type Condition struct {
	Column string
	Op     string
	Value  interface{}
}

// Sort is one ORDER BY key.
type Sort struct {
	Column string
	Desc   bool
}

// Page describes pagination; the offset is (Number-1)*Limit.
type Page struct {
	Limit  int
	Number int
}

// SelectSpec describes a filtered, sorted, paginated SELECT.
// An empty Columns list selects the caller's default projection.
type SelectSpec struct {
	Columns    []string
	Conditions []Condition
	Sorts      []Sort
	Page       *Page
}

// BuildSelect emits a SELECT statement with bound parameters. The table
// and join fragments come from server code, never from request input.
func BuildSelect(table string, joins []string, defaultColumns []string, spec SelectSpec) (string, []interface{}, error) {
	columns := spec.Columns
	if len(columns) == 0 {
		columns = defaultColumns
	}
	for _, col := range columns {
		if !projection.MatchString(col) {
			return "", nil, fmt.Errorf("%w: %q", ErrBadIdentifier, col)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)
	for _, join := range joins {
		b.WriteString(" ")
		b.WriteString(join)
	}

	var args []interface{}
	next := 1

	if len(spec.Conditions) > 0 {
		b.WriteString(" WHERE ")
		for i, cond := range spec.Conditions {
			if i > 0 {
				b.WriteString(" AND ")
			}
			fragment, condArgs, n, err := buildCondition(cond, next)
			if err != nil {
				return "", nil, err
			}
			b.WriteString(fragment)
			args = append(args, condArgs...)
			next = n
		}
	}

	if len(spec.Sorts) > 0 {
		b.WriteString(" ORDER BY ")
		for i, sort := range spec.Sorts {
			if !identifier.MatchString(sort.Column) {
				return "", nil, fmt.Errorf("%w: %q", ErrBadIdentifier, sort.Column)
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sort.Column)
			if sort.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	if spec.Page != nil {
		limit := spec.Page.Limit
		number := spec.Page.Number
		if limit < 1 {
			return "", nil, fmt.Errorf("page limit must be positive, got %d", limit)
		}
		if number < 1 {
			number = 1
		}
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", limit, (number-1)*limit)
	}

	return b.String(), args, nil
}

func buildCondition(cond Condition, next int) (string, []interface{}, int, error) {
	if !identifier.MatchString(cond.Column) {
		return "", nil, 0, fmt.Errorf("%w: %q", ErrBadIdentifier, cond.Column)
	}
	op := strings.ToUpper(strings.TrimSpace(cond.Op))
	if op == "" {
		op = "="
	}
	if !operators[op] {
		return "", nil, 0, fmt.Errorf("%w: %q", ErrBadOperator, cond.Op)
	}

	if op == "IN" {
		values, ok := cond.Value.([]interface{})
		if !ok || len(values) == 0 {
			return "", nil, 0, ErrEmptyIn
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = fmt.Sprintf("$%d", next)
			next++
		}
		fragment := fmt.Sprintf("%s IN (%s)", cond.Column, strings.Join(placeholders, ", "))
		return fragment, values, next, nil
	}

	fragment := fmt.Sprintf("%s %s $%d", cond.Column, op, next)
	return fragment, []interface{}{cond.Value}, next + 1, nil
}

// BuildInsert emits an INSERT with positional parameters in column
// order, returning the full inserted row.
func BuildInsert(table string, columns []string, values []interface{}) (string, []interface{}, error) {
	if len(columns) == 0 {
		return "", nil, errors.New("insert requires at least one column")
	}
	if len(columns) != len(values) {
		return "", nil, fmt.Errorf("insert column/value count mismatch: %d != %d", len(columns), len(values))
	}

	placeholders := make([]string, len(columns))
	for i, col := range columns {
		if !identifier.MatchString(col) {
			return "", nil, fmt.Errorf("%w: %q", ErrBadIdentifier, col)
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	statement := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return statement, values, nil
}

// Patch is an ordered sparse update: entries whose value is nil mean
// "leave unchanged" and produce no SET clause.
type Patch struct {
	fields []patchField
}

type patchField struct {
	column string
	value  interface{}
}

// Set records a field to update. A nil value (including a typed nil
// pointer) marks the field as unchanged.
func (p *Patch) Set(column string, value interface{}) *Patch {
	p.fields = append(p.fields, patchField{column: column, value: value})
	return p
}

// IsEmpty reports whether no entry carries a value.
func (p *Patch) IsEmpty() bool {
	for _, f := range p.fields {
		if !isNil(f.value) {
			return false
		}
	}
	return true
}

// BuildSparseUpdate emits an UPDATE that sets only the non-nil patch
// entries. It returns ErrEmptyPatch instead of an invalid statement
// when every entry is nil.
func BuildSparseUpdate(table string, patch *Patch, keyColumn string, keyValue interface{}) (string, []interface{}, error) {
	if !identifier.MatchString(keyColumn) {
		return "", nil, fmt.Errorf("%w: %q", ErrBadIdentifier, keyColumn)
	}

	var sets []string
	var args []interface{}
	next := 1

	for _, f := range patch.fields {
		if isNil(f.value) {
			continue
		}
		if !identifier.MatchString(f.column) {
			return "", nil, fmt.Errorf("%w: %q", ErrBadIdentifier, f.column)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, next))
		args = append(args, deref(f.value))
		next++
	}

	if len(sets) == 0 {
		return "", nil, ErrEmptyPatch
	}

	statement := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		table,
		strings.Join(sets, ", "),
		keyColumn,
		next,
	)
	return statement, append(args, keyValue), nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}
