package querybuilder

import (
	"strconv"
	"strings"
)

type writer struct {
	strings.Builder
	args []any
}

func (w *writer) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *writer) expr(expr string, exprArgs []any) {
	if len(exprArgs) == 0 {
		w.WriteString(expr)
		return
	}

	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.WriteByte(expr[i])
	}
}

func (w *writer) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.WriteString(" AND ")
		}
		c.appendSQL(w)
	}
}

func (w *writer) list(keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.WriteString(keyword)
	w.WriteString(strings.Join(parts, ", "))
}

func (w *writer) suffix(sql string, args []any) {
	if sql == "" {
		return
	}
	w.WriteString(" ")
	w.expr(sql, args)
}
