package dataquery

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"ai-bizops-be/pkg/errs"
)

// IExecutor runs generated SQL against the business tables and returns
// column-name-keyed rows.
type IExecutor interface {
	Execute(ctx context.Context, sqlQuery string) ([]map[string]any, error)
}

type GormExecutor struct {
	db *gorm.DB
}

func NewGormExecutor(db *gorm.DB) IExecutor {
	return &GormExecutor{db: db}
}

func (e *GormExecutor) Execute(ctx context.Context, sqlQuery string) ([]map[string]any, error) {
	if !isSelect(sqlQuery) {
		return nil, errs.New(errs.KindDataQuery, "only SELECT statements are allowed")
	}

	var rows []map[string]any
	if err := e.db.WithContext(ctx).Raw(sqlQuery).Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(errs.KindDataQuery, "execute query", err)
	}

	for _, row := range rows {
		for key, val := range row {
			if t, ok := val.(time.Time); ok {
				row[key] = t.Format("2006-01-02 15:04:05")
			}
		}
	}

	return rows, nil
}

func isSelect(sqlQuery string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(sqlQuery))
	return strings.HasPrefix(trimmed, "SELECT") || strings.HasPrefix(trimmed, "WITH")
}
