package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SharedHelpers holds query helpers used by every repository.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// DB returns tx when set, otherwise the default connection, bound to ctx.
func (h *SharedHelpers) DB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

// ApplyPaginationAndSort orders by sortBy when it is one of allowed, falling
// back to the first allowed column.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed ...string) *gorm.DB {
	column := ""
	for _, a := range allowed {
		if a == sortBy {
			column = a
			break
		}
	}
	if column == "" && len(allowed) > 0 {
		column = allowed[0]
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	if column != "" {
		query = query.Order(fmt.Sprintf("%s %s", column, direction))
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
