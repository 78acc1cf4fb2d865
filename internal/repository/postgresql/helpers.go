package postgresql

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation    = "23505"
	exclusionViolation = "23P01"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// isUniqueViolation reports whether err violates the named unique constraint
// (any unique constraint when name is empty).
func isUniqueViolation(err error, name string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return name == "" || pgErr.ConstraintName == name
}

func isExclusionViolation(err error, name string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation && pgErr.ConstraintName == name
}

// buildUpdate renders "UPDATE table SET ... WHERE id = $n" for the given
// columns, in a stable column order, stamping updated_at.
func buildUpdate(table string, updates map[string]interface{}, id string, extraWhere string) (string, []interface{}) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	setClauses := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	i := 1
	for _, col := range cols {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, updates[col])
		i++
	}
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d%s RETURNING id", table, strings.Join(setClauses, ", "), i, extraWhere)
	args = append(args, id)
	return sql, args
}
