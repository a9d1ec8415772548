package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"ai-bizops-be/pkg/dataquery"
	"ai-bizops-be/pkg/llm"
	"ai-bizops-be/pkg/rag/vectorstore"
)

// Schema presented to the model for SQL generation.
const analystSchema = `
Tables:
- sales (id, product_id, customer_id, amount, quantity, date, region)
- customers (id, name, email, segment, created_at, last_purchase)
- products (id, name, category, price, cost, inventory)
- support_tickets (id, customer_id, subject, status, priority, created_at, resolved_at)
- metrics (id, metric_name, value, recorded_at)
`

// AnalysisResult is what the analyst stage contributes to the state.
type AnalysisResult struct {
	Data     []map[string]any
	Patterns []Pattern
	Chart    *ChartSpec
	Summary  string
	Action   string
	SQLQuery string
}

type analysisType struct {
	NeedsSQL           bool     `json:"needs_sql"`
	NeedsVisualization bool     `json:"needs_visualization"`
	Metrics            []string `json:"metrics"`
	TimeRange          string   `json:"time_range"`
	Aggregation        string   `json:"aggregation"`
	Grouping           string   `json:"grouping"`
}

// AnalystAgent turns natural language into data queries and inspects the
// results for trends and anomalies.
type AnalystAgent struct {
	llm      llm.LLMProvider
	executor dataquery.IExecutor
}

func NewAnalystAgent(provider llm.LLMProvider, executor dataquery.IExecutor) *AnalystAgent {
	return &AnalystAgent{
		llm:      provider,
		executor: executor,
	}
}

func (a *AnalystAgent) Analyze(ctx context.Context, query string, documents []vectorstore.SearchResult) (*AnalysisResult, error) {
	kind := a.determineAnalysisType(ctx, query)

	var data []map[string]any
	var sqlQuery string

	if kind.NeedsSQL {
		generated, err := a.generateSQL(ctx, query)
		if err != nil {
			return nil, err
		}
		sqlQuery = generated

		// A failing generated query degrades to an empty result set so
		// the stage can still report what it attempted.
		rows, err := a.executor.Execute(ctx, sqlQuery)
		if err != nil {
			rows = []map[string]any{}
		}
		data = rows
	} else {
		data = dataquery.SampleForQuery(query)
	}

	patterns := detectPatterns(data)

	var chart *ChartSpec
	if kind.NeedsVisualization && len(data) > 0 {
		chart = buildChartSpec(data, query)
	}

	summary, err := a.summarize(ctx, query, data, patterns)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Data:     data,
		Patterns: patterns,
		Chart:    chart,
		Summary:  summary,
		Action:   fmt.Sprintf("Analyzed %d data points", len(data)),
		SQLQuery: sqlQuery,
	}, nil
}

func (a *AnalystAgent) determineAnalysisType(ctx context.Context, query string) analysisType {
	prompt := fmt.Sprintf(`
Analyze this query and determine the type of data analysis needed.

Query: %s

Return JSON:
{
    "needs_sql": true/false,
    "needs_visualization": true/false,
    "metrics": ["list of metrics to analyze"],
    "time_range": "today/week/month/quarter/year/all",
    "aggregation": "sum/avg/count/max/min/none",
    "grouping": "field name or null"
}
`, query)

	var kind analysisType
	schema := `{"needs_sql": "boolean", "needs_visualization": "boolean", "metrics": ["list"], "time_range": "string", "aggregation": "string", "grouping": "string or null"}`
	if err := llm.GenerateJSON(ctx, a.llm, prompt, schema, &kind, llm.WithSystemPrompt(analystSystemPrompt)); err != nil {
		return analysisType{
			NeedsSQL:           false,
			NeedsVisualization: true,
			Metrics:            []string{"general"},
			TimeRange:          "week",
		}
	}
	return kind
}

func (a *AnalystAgent) generateSQL(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`
Generate a SQL query for the following request.

Database Schema:
%s

User Request: %s

Rules:
- Use standard SQL syntax
- Include appropriate WHERE clauses
- Use aggregations when asking for totals/averages
- Limit results to 1000 rows
- Add ORDER BY for meaningful ordering

Return only the SQL query, no explanation.
`, analystSchema, query)

	raw, err := a.llm.Generate(ctx, prompt, llm.WithSystemPrompt(analystSystemPrompt))
	if err != nil {
		return "", err
	}
	return llm.StripCodeFences(raw), nil
}

func (a *AnalystAgent) summarize(ctx context.Context, query string, data []map[string]any, patterns []Pattern) (string, error) {
	if len(data) == 0 {
		return "No data available for analysis.", nil
	}

	patternText := "No significant patterns detected."
	if len(patterns) > 0 {
		lines := make([]string, 0, len(patterns))
		for _, p := range patterns {
			lines = append(lines, p.Description)
		}
		patternText = strings.Join(lines, "\n")
	}

	sample := data
	if len(sample) > 3 {
		sample = sample[:3]
	}
	sampleJSON, _ := json.Marshal(sample)

	prompt := fmt.Sprintf(`
Summarize this data analysis in 2-3 sentences.

Query: %s
Data Points: %d
Patterns Found: %s

Sample Data:
%s

Keep the summary concise and actionable.
`, query, len(data), patternText, string(sampleJSON))

	return a.llm.Generate(ctx, prompt, llm.WithSystemPrompt(analystSystemPrompt))
}

// detectPatterns reports at most one trend (first-vs-last comparison) and
// the first anomaly deviating more than 50% from the mean.
func detectPatterns(data []map[string]any) []Pattern {
	patterns := []Pattern{}
	if len(data) == 0 {
		return patterns
	}

	values := numericValues(data)

	if len(data) > 1 {
		first, last := values[0], values[len(values)-1]
		if last > first {
			var change float64
			if first != 0 {
				change = (last - first) / first * 100
			}
			change = round1(change)
			patterns = append(patterns, Pattern{
				Type:          "trend",
				Direction:     "increasing",
				ChangePercent: change,
				Description:   fmt.Sprintf("Values increased by %v%%", change),
			})
		} else if last < first {
			var change float64
			if first != 0 {
				change = (first - last) / first * 100
			}
			change = round1(change)
			patterns = append(patterns, Pattern{
				Type:          "trend",
				Direction:     "decreasing",
				ChangePercent: -change,
				Description:   fmt.Sprintf("Values decreased by %v%%", change),
			})
		}
	}

	if len(data) > 3 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg := sum / float64(len(values))

		for i, v := range values {
			if math.Abs(v-avg) > avg*0.5 {
				patterns = append(patterns, Pattern{
					Type:        "anomaly",
					Index:       i,
					Value:       v,
					Expected:    round2(avg),
					Description: fmt.Sprintf("Unusual value detected: %v (expected ~%v)", v, round2(avg)),
				})
				break // report first anomaly only
			}
		}
	}

	return patterns
}

var (
	chartXKeys = []string{"date", "month", "week", "name", "category"}
	chartYKeys = []string{"value", "amount", "count", "total"}
)

func buildChartSpec(data []map[string]any, query string) *ChartSpec {
	lower := strings.ToLower(query)

	chartType := "line"
	if strings.Contains(lower, "compare") || strings.Contains(lower, "breakdown") {
		chartType = "bar"
	} else if strings.Contains(lower, "distribution") || strings.Contains(lower, "share") {
		chartType = "pie"
	}

	sample := data[0]

	xKey := ""
	for _, key := range chartXKeys {
		if _, ok := sample[key]; ok {
			xKey = key
			break
		}
	}
	yKey := ""
	for _, key := range chartYKeys {
		if _, ok := sample[key]; ok {
			yKey = key
			break
		}
	}

	keys := make([]string, 0, len(sample))
	for key := range sample {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if xKey == "" && len(keys) > 0 {
		xKey = keys[0]
	}
	if yKey == "" && len(keys) > 0 {
		yKey = keys[len(keys)-1]
	}

	title := query
	if len(title) > 50 {
		title = title[:50]
	}

	return &ChartSpec{
		ChartType: chartType,
		Title:     "Analysis: " + title,
		Data:      data,
		XAxis:     xKey,
		YAxis:     yKey,
	}
}

// numericValues pulls the value or amount column from each row, zero when
// neither is present.
func numericValues(data []map[string]any) []float64 {
	values := make([]float64, len(data))
	for i, row := range data {
		if v, ok := row["value"]; ok {
			values[i] = toFloat(v)
		} else if v, ok := row["amount"]; ok {
			values[i] = toFloat(v)
		}
	}
	return values
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
