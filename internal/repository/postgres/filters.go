package postgres

import (
	"fmt"
	"strings"
)

// whereBuilder accumulates AND-ed SQL conditions with positional args.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// add appends a condition; every %s in cond is replaced with the next
// placeholder ($n) and consumes one value.
func (w *whereBuilder) add(cond string, values ...interface{}) {
	placeholders := make([]interface{}, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf(cond, placeholders...))
}

func (w *whereBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// next returns the placeholder for an extra argument appended after the
// conditions (LIMIT, OFFSET).
func (w *whereBuilder) next(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}
