package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	err  error
	sent int
}

func (f *fakeMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	return nil
}

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) Publish(ctx context.Context, subject string, payload any) error {
	f.published = append(f.published, subject)
	return nil
}

func planningLLM(plan string) *fakeLLM {
	return &fakeLLM{rules: []llmRule{
		{"determine what actions should be taken", plan},
	}}
}

func TestActionAgentExecutesPlan(t *testing.T) {
	plan := `{
		"actions": [
			{"action": "create_alert", "reason": "threshold breached", "parameters": {"message": "revenue dip", "priority": "high"}},
			{"action": "generate_report", "reason": "user asked", "parameters": {"title": "Weekly Summary"}}
		],
		"no_action_reason": ""
	}`
	events := &fakeEvents{}
	a := NewActionAgent(planningLLM(plan), nil, events)

	result, err := a.Execute(context.Background(), "alert me about the revenue dip", "Revenue dipped 20%.")
	require.NoError(t, err)

	assert.Equal(t, []string{"create_alert: success", "generate_report: success"}, result.Actions)
	assert.Equal(t, []string{"alerts.created"}, events.published)
}

func TestActionAgentFailureDoesNotStopOthers(t *testing.T) {
	plan := `{
		"actions": [
			{"action": "send_email", "reason": "notify", "parameters": {"recipients": ["ops@example.com"], "subject": "Alert"}},
			{"action": "export_data", "reason": "archive", "parameters": {"format": "csv"}}
		],
		"no_action_reason": ""
	}`
	mailer := &fakeMailer{err: errors.New("smtp down")}
	a := NewActionAgent(planningLLM(plan), mailer, nil)

	result, err := a.Execute(context.Background(), "email the team", "done")
	require.NoError(t, err)

	require.Len(t, result.Actions, 2)
	assert.Equal(t, "send_email: failed - smtp down", result.Actions[0])
	assert.Equal(t, "export_data: success", result.Actions[1])
	assert.Equal(t, "failed", result.Results[0].Status)
	assert.Equal(t, "success", result.Results[1].Status)
}

func TestActionAgentSkipsUnknownActions(t *testing.T) {
	plan := `{
		"actions": [
			{"action": "launch_rocket", "reason": "n/a", "parameters": {}},
			{"action": "update_dashboard", "reason": "refresh", "parameters": {"metrics": ["mrr"]}}
		],
		"no_action_reason": ""
	}`
	a := NewActionAgent(planningLLM(plan), nil, nil)

	result, err := a.Execute(context.Background(), "do things", "ok")
	require.NoError(t, err)

	assert.Equal(t, []string{"update_dashboard: success"}, result.Actions)
}

func TestActionAgentPlanFailure(t *testing.T) {
	a := NewActionAgent(&fakeLLM{err: errors.New("down")}, nil, nil)

	result, err := a.Execute(context.Background(), "anything", "ok")
	require.NoError(t, err)
	assert.Empty(t, result.Actions)
}
