package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortable is the set of columns a list endpoint may order by
type sortable map[string]struct{}

func columns(names ...string) sortable {
	s := sortable{"id": {}, "created_at": {}, "updated_at": {}}
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s sortable) allows(col string) bool {
	_, ok := s[col]
	return ok
}

var (
	PurchaseOrderSortFields = columns("order_number", "order_date", "delivery_date", "status",
		"payment_status", "total_amount", "total_with_tax", "counterparty_name")
	ProductSortFields     = columns("code", "name", "status", "total_raw_amount", "usage_count")
	RawMaterialSortFields = columns("code", "name", "estimated_price", "actual_price", "quantity", "usage_count")
	CompanySortFields     = columns("name", "legal_name")
	UsageLogSortFields    = columns("type", "quantity", "total")
)

// ValidateSortOrder maps user input to ASC or DESC. Anything but "asc" is DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it names an allowed column and
// fallback otherwise. Column names are matched exactly.
func ValidateSortField(sortField string, allowed sortable, fallback string) string {
	if col := strings.TrimSpace(sortField); allowed.allows(col) {
		return col
	}
	return fallback
}

// orderClause builds a quoted ORDER BY column from user input. Unknown
// columns fall back to created_at; the column name never reaches SQL unquoted.
func orderClause(orderBy, orderDir string, allowed sortable) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: ValidateSortField(orderBy, allowed, "created_at")},
		Desc:   ValidateSortOrder(orderDir) == "DESC",
	}
}
