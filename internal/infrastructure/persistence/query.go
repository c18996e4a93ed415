package persistence

import (
	"fmt"
	"strings"

	"github.com/gestor/backend/internal/domain/shared"
)

// allowedOrderColumns whitelists columns usable in ORDER BY to keep user
// input out of raw SQL
var allowedOrderColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"first_due_date": true,
	"total_amount":   true,
	"status":         true,
	"name":           true,
	"code":           true,
}

// orderClause builds a safe ORDER BY clause from the filter
func orderClause(filter shared.Filter) string {
	column := filter.OrderBy
	if !allowedOrderColumns[column] {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", column, dir)
}

// searchPattern builds a case-insensitive LIKE pattern
func searchPattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
