package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errMissingTable   = errors.New("table is required")
	errMissingColumns = errors.New("columns are required")
)

type join struct {
	kind  string
	table string
	on    string
}

type SelectBuilder struct {
	columns   []string
	table     string
	joins     []join
	where     []Condition
	groupBy   []string
	orderBy   []string
	limit     int
	offset    int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Join(table, on string) *SelectBuilder {
	b.joins = append(b.joins, join{kind: "JOIN", table: table, on: on})
	return b
}

func (b *SelectBuilder) LeftJoin(table, on string) *SelectBuilder {
	b.joins = append(b.joins, join{kind: "LEFT JOIN", table: table, on: on})
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

// ForUpdate appends a row lock; only meaningful inside a transaction.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select: %w", errMissingColumns)
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select: %w", errMissingTable)
	}

	w := &writer{}
	w.WriteString("SELECT ")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(" FROM ")
	w.WriteString(b.table)
	for _, j := range b.joins {
		w.WriteString(" ")
		w.WriteString(j.kind)
		w.WriteString(" ")
		w.WriteString(j.table)
		w.WriteString(" ON ")
		w.WriteString(j.on)
	}
	w.where(b.where)
	w.list(" GROUP BY ", b.groupBy)
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		w.WriteString(" OFFSET ")
		w.WriteString(strconv.Itoa(b.offset))
	}
	if b.forUpdate {
		w.WriteString(" FOR UPDATE")
	}

	return w.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
	args    []any
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends trailing SQL such as ON CONFLICT or RETURNING. Any ? in sql
// binds to args.
func (b *InsertBuilder) Suffix(sql string, args ...any) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	b.args = args
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert: %w", errMissingTable)
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert: %w", errMissingColumns)
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &writer{}
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.WriteString(", ")
		}
		w.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.WriteString(", ")
			}
			w.bind(value)
		}
		w.WriteString(")")
	}
	w.suffix(b.suffix, b.args)

	return w.String(), w.args, nil
}

type assignment struct {
	column string
	value  any
	expr   *exprCondition
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update: %w", errMissingTable)
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &writer{}
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	w.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(s.column)
		w.WriteString(" = ")
		if s.expr != nil {
			s.expr.appendSQL(w)
			continue
		}
		w.bind(s.value)
	}
	w.where(b.where)
	w.suffix(b.suffix, nil)

	return w.String(), w.args, nil
}

type DeleteBuilder struct {
	table  string
	where  []Condition
	suffix string
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) Suffix(sql string) *DeleteBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete: %w", errMissingTable)
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete from %s requires a where clause", b.table)
	}

	w := &writer{}
	w.WriteString("DELETE FROM ")
	w.WriteString(b.table)
	w.where(b.where)
	w.suffix(b.suffix, nil)

	return w.String(), w.args, nil
}
