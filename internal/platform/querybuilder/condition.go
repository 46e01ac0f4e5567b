package querybuilder

import "strings"

// Condition renders one predicate of a WHERE clause. Placeholders are
// numbered as the condition is appended.
type Condition interface {
	appendSQL(w *writer)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition  { return compareCondition{column, "=", value} }
func Neq(column string, value any) Condition { return compareCondition{column, "<>", value} }
func Gt(column string, value any) Condition  { return compareCondition{column, ">", value} }
func Gte(column string, value any) Condition { return compareCondition{column, ">=", value} }
func Lt(column string, value any) Condition  { return compareCondition{column, "<", value} }
func Lte(column string, value any) Condition { return compareCondition{column, "<=", value} }

func (c compareCondition) appendSQL(w *writer) {
	w.WriteString(c.column)
	w.WriteString(" ")
	w.WriteString(c.op)
	w.WriteString(" ")
	w.bind(c.value)
}

type inCondition struct {
	column string
	values []any
	negate bool
}

// In matches nothing when values is empty.
func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

// NotIn matches everything when values is empty.
func NotIn(column string, values []any) Condition {
	return inCondition{column: column, values: values, negate: true}
}

func (c inCondition) appendSQL(w *writer) {
	if len(c.values) == 0 {
		if c.negate {
			w.WriteString("1=1")
		} else {
			w.WriteString("1=0")
		}
		return
	}

	w.WriteString(c.column)
	if c.negate {
		w.WriteString(" NOT IN (")
	} else {
		w.WriteString(" IN (")
	}
	for i, v := range c.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")
}

type nullCondition struct {
	column string
	not    bool
}

func IsNull(column string) Condition    { return nullCondition{column: column} }
func IsNotNull(column string) Condition { return nullCondition{column: column, not: true} }

func (c nullCondition) appendSQL(w *writer) {
	w.WriteString(c.column)
	if c.not {
		w.WriteString(" IS NOT NULL")
		return
	}
	w.WriteString(" IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

// Expr embeds raw SQL; each ? is replaced by the next numbered placeholder.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(w *writer) {
	w.expr(c.expr, c.args)
}

type eqLiteralCondition struct {
	column string
	value  string
}

func EqLiteral(column, value string) Condition {
	return eqLiteralCondition{column: column, value: value}
}

func (c eqLiteralCondition) appendSQL(w *writer) {
	w.WriteString(c.column)
	w.WriteString(" = ")
	w.WriteString(quoteLiteral(c.value))
}

type groupCondition struct {
	op    string
	parts []Condition
}

// And groups conditions in parentheses. Empty groups render as true.
func And(conditions ...Condition) Condition { return groupCondition{op: " AND ", parts: conditions} }

// Or groups conditions in parentheses. Empty groups render as false.
func Or(conditions ...Condition) Condition { return groupCondition{op: " OR ", parts: conditions} }

func (c groupCondition) appendSQL(w *writer) {
	if len(c.parts) == 0 {
		if c.op == " OR " {
			w.WriteString("1=0")
		} else {
			w.WriteString("1=1")
		}
		return
	}
	w.WriteString("(")
	for i, part := range c.parts {
		if i > 0 {
			w.WriteString(c.op)
		}
		part.appendSQL(w)
	}
	w.WriteString(")")
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
