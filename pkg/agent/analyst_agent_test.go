package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPatternsTrend(t *testing.T) {
	tests := []struct {
		name      string
		data      []map[string]any
		direction string
		change    float64
	}{
		{
			name: "increasing amounts",
			data: []map[string]any{
				{"amount": 100},
				{"amount": 150},
			},
			direction: "increasing",
			change:    50.0,
		},
		{
			name: "decreasing values",
			data: []map[string]any{
				{"value": 200.0},
				{"value": 150.0},
			},
			direction: "decreasing",
			change:    -25.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := detectPatterns(tt.data)
			require.Len(t, patterns, 1)
			assert.Equal(t, "trend", patterns[0].Type)
			assert.Equal(t, tt.direction, patterns[0].Direction)
			assert.InDelta(t, tt.change, patterns[0].ChangePercent, 1e-9)
		})
	}
}

func TestDetectPatternsNoTrendWhenFlat(t *testing.T) {
	patterns := detectPatterns([]map[string]any{
		{"value": 100},
		{"value": 100},
	})
	assert.Empty(t, patterns)
}

func TestDetectPatternsFirstAnomalyOnly(t *testing.T) {
	// mean is 100; both 300 and 10 deviate more than 50%, only the first
	// is reported
	data := []map[string]any{
		{"value": 90},
		{"value": 300},
		{"value": 10},
		{"value": 0},
	}

	patterns := detectPatterns(data)

	var anomalies []Pattern
	for _, p := range patterns {
		if p.Type == "anomaly" {
			anomalies = append(anomalies, p)
		}
	}
	require.Len(t, anomalies, 1)
	assert.Equal(t, 1, anomalies[0].Index)
	assert.Equal(t, 300.0, anomalies[0].Value)
	assert.Equal(t, 100.0, anomalies[0].Expected)
}

func TestDetectPatternsSkipsAnomalyForSmallSets(t *testing.T) {
	// three rows: trend only, anomaly detection needs more than three
	patterns := detectPatterns([]map[string]any{
		{"value": 10},
		{"value": 500},
		{"value": 20},
	})

	require.Len(t, patterns, 1)
	assert.Equal(t, "trend", patterns[0].Type)
}

func TestDetectPatternsEmptyData(t *testing.T) {
	assert.Empty(t, detectPatterns(nil))
	assert.Empty(t, detectPatterns([]map[string]any{}))
}

func TestBuildChartSpecKindHeuristic(t *testing.T) {
	data := []map[string]any{{"date": "2024-01-01", "amount": 100}}

	tests := []struct {
		query    string
		expected string
	}{
		{"compare sales by region", "bar"},
		{"revenue breakdown by product", "bar"},
		{"market share distribution", "pie"},
		{"revenue over time", "line"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			chart := buildChartSpec(data, tt.query)
			require.NotNil(t, chart)
			assert.Equal(t, tt.expected, chart.ChartType)
		})
	}
}

func TestBuildChartSpecAxes(t *testing.T) {
	chart := buildChartSpec([]map[string]any{
		{"date": "2024-01-01", "amount": 100, "orders": 5},
	}, "revenue over time")

	require.NotNil(t, chart)
	assert.Equal(t, "date", chart.XAxis)
	assert.Equal(t, "amount", chart.YAxis)
	assert.Equal(t, "Analysis: revenue over time", chart.Title)
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 5.0, toFloat(5))
	assert.Equal(t, 5.5, toFloat(5.5))
	assert.Equal(t, 7.0, toFloat(int64(7)))
	assert.Equal(t, 0.0, toFloat("not a number"))
	assert.Equal(t, 0.0, toFloat(nil))
}
