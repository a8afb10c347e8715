package sqlite

import (
	"strings"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
)

// SQLite extended result codes.
const (
	codeConstraintUnique     = 2067 // SQLITE_CONSTRAINT_UNIQUE
	codeConstraintPrimaryKey = 1555 // SQLITE_CONSTRAINT_PRIMARYKEY
	codeConstraintForeignKey = 787  // SQLITE_CONSTRAINT_FOREIGNKEY
)

// placeholder returns a placeholder for SQLite (uses ?)
func placeholder(n int) string {
	return "?"
}

// placeholders returns n placeholders for SQLite
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == codeConstraintUnique || code == codeConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == codeConstraintForeignKey
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
