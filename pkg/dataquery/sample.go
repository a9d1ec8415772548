package dataquery

import (
	"context"
	"strings"
	"time"
)

// SampleExecutor serves canned business data keyed off the query text,
// used when no database is attached (demo and test deployments).
type SampleExecutor struct{}

func NewSampleExecutor() IExecutor {
	return &SampleExecutor{}
}

func (e *SampleExecutor) Execute(ctx context.Context, sqlQuery string) ([]map[string]any, error) {
	return SampleForQuery(sqlQuery), nil
}

// SampleForQuery picks a sample dataset matching the query keywords.
func SampleForQuery(query string) []map[string]any {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "sales") || strings.Contains(lower, "revenue"):
		return sampleSalesData()
	case strings.Contains(lower, "ticket") || strings.Contains(lower, "support"):
		return sampleTicketData()
	case strings.Contains(lower, "customer"):
		return sampleCustomerData()
	default:
		return sampleGenericData()
	}
}

func sampleSalesData() []map[string]any {
	baseDate := time.Now().AddDate(0, 0, -7)
	rows := make([]map[string]any, 0, 7)
	for i := 0; i < 7; i++ {
		swing := 2000
		if i%2 == 1 {
			swing = -2000
		}
		rows = append(rows, map[string]any{
			"date":   baseDate.AddDate(0, 0, i).Format("2006-01-02"),
			"amount": 10000 + i*1000 + swing,
			"orders": 50 + i*5,
		})
	}
	return rows
}

func sampleTicketData() []map[string]any {
	return []map[string]any{
		{"date": "2024-01-23", "open": 47, "resolved": 32, "new": 15},
		{"date": "2024-01-22", "open": 64, "resolved": 28, "new": 42},
		{"date": "2024-01-21", "open": 50, "resolved": 35, "new": 22},
	}
}

func sampleCustomerData() []map[string]any {
	return []map[string]any{
		{"segment": "Enterprise", "count": 45, "revenue": 450000},
		{"segment": "SMB", "count": 320, "revenue": 280000},
		{"segment": "Startup", "count": 890, "revenue": 120000},
	}
}

func sampleGenericData() []map[string]any {
	return []map[string]any{
		{"category": "A", "value": 100},
		{"category": "B", "value": 150},
		{"category": "C", "value": 80},
	}
}
