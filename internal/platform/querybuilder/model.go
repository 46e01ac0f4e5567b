package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds a single-row insert from the db tags of model.
func InsertModel(table string, model any, suffix string, suffixArgs ...any) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix, suffixArgs...)
}

// InsertModels builds a multi-row insert. Every model must expose the same
// tagged columns in the same order.
func InsertModels(table string, models []any, suffix string, suffixArgs ...any) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert models: at least one model is required")
	}

	builder := InsertInto(table)
	var firstCols []string
	for i, model := range models {
		cols, vals, err := columnsAndValues(model)
		if err != nil {
			return "", nil, fmt.Errorf("insert model %d: %w", i, err)
		}
		if i == 0 {
			firstCols = cols
			builder.Columns(cols...)
		} else if strings.Join(cols, ",") != strings.Join(firstCols, ",") {
			return "", nil, fmt.Errorf("insert model %d: column set differs from first model", i)
		}
		builder.Values(vals...)
	}

	return builder.Suffix(suffix, suffixArgs...).ToSQL()
}

// Columns lists the db-tagged column names of model, in field order.
func Columns(model any) []string {
	cols, _, err := columnsAndValues(model)
	if err != nil {
		return nil
	}
	return cols
}

func columnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
