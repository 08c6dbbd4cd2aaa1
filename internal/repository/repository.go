package repository

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = eris.New("repository: not found")

// Dialect selects the placeholder syntax of the driver behind *sql.DB.
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return fmt.Sprintf("?%d", n)
	}
	return fmt.Sprintf("$%d", n)
}

// query accumulates WHERE conditions and their positional arguments.
type query struct {
	dialect Dialect
	where   []string
	args    []any
}

func newQuery(d Dialect) *query {
	return &query{dialect: d, where: []string{"1=1"}}
}

// arg registers v and returns its placeholder.
func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return q.dialect.placeholder(len(q.args))
}

func (q *query) and(format string, v any) {
	q.where = append(q.where, fmt.Sprintf(format, q.arg(v)))
}

func (q *query) whereClause() string {
	return " WHERE " + strings.Join(q.where, " AND ")
}
