package deck

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeRunner returns canned results keyed by the joined argument string and
// records every invocation.
type fakeRunner struct {
	results map[string]Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, args ...string) Result {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if r, ok := f.results[key]; ok {
		return r
	}
	return Result{ExitCode: 1, Stderr: "not found"}
}

func newFakeClient(results map[string]Result) (*Client, *fakeRunner) {
	runner := &fakeRunner{results: results}
	return NewClient(runner), runner
}

func TestSessionStatus(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   Status
	}{
		{"running", Result{Stdout: `{"status": "running"}`}, StatusRunning},
		{"waiting", Result{Stdout: `{"status": "waiting"}`}, StatusWaiting},
		{"reported error", Result{Stdout: `{"status": "error"}`}, StatusError},
		{"non-zero exit", Result{ExitCode: 1, Stderr: "no such session"}, StatusError},
		{"malformed json", Result{Stdout: "not json"}, StatusError},
		{"missing status key", Result{Stdout: `{"title": "x"}`}, StatusError},
		{"unknown status value", Result{Stdout: `{"status": "sleeping"}`}, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeClient(map[string]Result{
				"-p work session show conductor-work --json": tt.result,
			})
			got := client.SessionStatus(context.Background(), "conductor-work", "work")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionStatus_ProfileFlagPrepended(t *testing.T) {
	client, runner := newFakeClient(nil)
	client.SessionStatus(context.Background(), "s", "work")
	assert.Equal(t, []string{"-p work session show s --json"}, runner.calls)

	runner.calls = nil
	client.SessionStatus(context.Background(), "s", "")
	assert.Equal(t, []string{"session show s --json"}, runner.calls)
}

func TestSessionOutput(t *testing.T) {
	client, _ := newFakeClient(map[string]Result{
		"session output build-1 -q": {Stdout: "done\n"},
	})
	assert.Equal(t, "done", client.SessionOutput(context.Background(), "build-1", ""))
}

func TestSessionOutput_FailureIsBracketedDiagnostic(t *testing.T) {
	client, _ := newFakeClient(map[string]Result{
		"session output build-1 -q": {ExitCode: 1, Stderr: "session not found\n"},
	})
	got := client.SessionOutput(context.Background(), "build-1", "")
	assert.Equal(t, "[Error getting output: session not found]", got)
}

func TestSend_Wait(t *testing.T) {
	client, runner := newFakeClient(map[string]Result{
		"-p ops session send conductor-ops hello --wait --timeout 300s -q": {Stdout: "hi there\n"},
	})
	ok, text := client.Send(context.Background(), "conductor-ops", "hello", "ops", true, 300*time.Second)
	assert.True(t, ok)
	assert.Equal(t, "hi there", text)
	assert.Len(t, runner.calls, 1)
}

func TestSend_NoWait(t *testing.T) {
	client, runner := newFakeClient(map[string]Result{
		"session send conductor-ops hello --no-wait": {},
	})
	ok, text := client.Send(context.Background(), "conductor-ops", "hello", "", false, 300*time.Second)
	assert.True(t, ok)
	assert.Equal(t, "", text)
	assert.Equal(t, []string{"session send conductor-ops hello --no-wait"}, runner.calls)
}

func TestSend_Failure(t *testing.T) {
	client, _ := newFakeClient(nil)
	ok, text := client.Send(context.Background(), "s", "m", "", true, time.Second)
	assert.False(t, ok)
	assert.Equal(t, "", text)
}

func TestStatusSummary(t *testing.T) {
	client, _ := newFakeClient(map[string]Result{
		"-p work status --json": {Stdout: `{"waiting": 2, "running": 1, "idle": 0, "error": 1, "total": 4}`},
	})
	summary := client.StatusSummary(context.Background(), "work")
	assert.Equal(t, Summary{Waiting: 2, Running: 1, Idle: 0, Error: 1, Total: 4}, summary)
}

func TestStatusSummary_FailureIsZero(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{"non-zero exit", Result{ExitCode: 1, Stderr: "timeout"}},
		{"malformed json", Result{Stdout: "garbage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeClient(map[string]Result{"status --json": tt.result})
			assert.Equal(t, Summary{}, client.StatusSummary(context.Background(), ""))
		})
	}
}

func TestListSessions_Wrapped(t *testing.T) {
	client, _ := newFakeClient(map[string]Result{
		"list --json": {Stdout: `{"sessions": [{"title": "build-1", "status": "waiting", "tool": "claude", "path": "/repo"}]}`},
	})
	sessions := client.ListSessions(context.Background(), "")
	assert.Len(t, sessions, 1)
	assert.Equal(t, "build-1", sessions[0].Title)
	assert.Equal(t, "/repo", sessions[0].Path)
}

func TestListSessions_BareArray(t *testing.T) {
	client, _ := newFakeClient(map[string]Result{
		"list --json": {Stdout: `[{"title": "build-1", "status": "idle", "tool": "claude", "path": "/repo"}]`},
	})
	sessions := client.ListSessions(context.Background(), "")
	assert.Len(t, sessions, 1)
	assert.Equal(t, "idle", sessions[0].Status)
}

func TestListSessions_FailureIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{"non-zero exit", Result{ExitCode: 1}},
		{"malformed json", Result{Stdout: "garbage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeClient(map[string]Result{"list --json": tt.result})
			assert.Empty(t, client.ListSessions(context.Background(), ""))
		})
	}
}

func TestAddSession_Args(t *testing.T) {
	client, runner := newFakeClient(map[string]Result{
		"-p ops add /home/u/.agent-deck/conductor/ops -t conductor-ops -c claude -g infra": {},
	})
	result := client.AddSession(context.Background(), "/home/u/.agent-deck/conductor/ops", "conductor-ops", "ops")
	assert.True(t, result.Ok())
	assert.Len(t, runner.calls, 1)
}
