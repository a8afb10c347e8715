package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgreSQL error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// placeholder returns a placeholder for PostgreSQL (uses $1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n placeholders for PostgreSQL
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeForeignKeyViolation
	}
	return false
}

// escapeLike escapes LIKE special characters to prevent pattern injection.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// pqInt32Array adapts an int32 slice for a Postgres array parameter.
func pqInt32Array(ids []int32) any {
	arr := make([]int64, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return pq.Array(arr)
}
