package main

import (
	"errors"
	"strings"
	"testing"

	"wayfarer/pkg/agent"
	"wayfarer/pkg/prompt"

	tea "github.com/charmbracelet/bubbletea"
)

// TestStatusBar verifies the status bar shows database health and per-status counts.
func TestStatusBar(t *testing.T) {
	tests := []struct {
		name         string
		dbOK         bool
		counts       map[prompt.SyncStatus]int
		wantContains []string
	}{
		{
			name:         "missing database shows init hint",
			dbOK:         false,
			wantContains: []string{"wayfarer init"},
		},
		{
			name:         "counts for every status",
			dbOK:         true,
			counts:       map[prompt.SyncStatus]int{prompt.StatusPending: 2, prompt.StatusSynced: 7, prompt.StatusFailed: 1},
			wantContains: []string{"2 pending", "7 synced", "1 failed"},
		},
		{
			name:         "zero counts still render",
			dbOK:         true,
			counts:       map[prompt.SyncStatus]int{},
			wantContains: []string{"0 pending", "0 synced", "0 failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel()
			m.dbOK = tt.dbOK
			m.counts = tt.counts

			statusBar := m.renderStatusBar()

			for _, want := range tt.wantContains {
				if !strings.Contains(statusBar, want) {
					t.Errorf("renderStatusBar() missing %q, got: %s", want, statusBar)
				}
			}
		})
	}
}

func TestUpdate_PromptsMsgClampsCursor(t *testing.T) {
	m := newModel()
	m.cursor = 5

	updated, _ := m.Update(promptsMsg{records: []prompt.Record{{ID: 1, Text: "one"}}})
	got := updated.(Model)

	if got.cursor != 0 {
		t.Errorf("cursor = %d, want 0", got.cursor)
	}
	if !got.dbOK {
		t.Error("dbOK should be true after a successful fetch")
	}
}

func TestUpdate_FetchErrorMarksDatabaseUnavailable(t *testing.T) {
	m := newModel()
	m.dbOK = true

	updated, _ := m.Update(promptsMsg{err: errors.New("prompt database not found")})
	got := updated.(Model)

	if got.dbOK {
		t.Error("dbOK should be false when the fetch fails")
	}
}

// An existing database with zero rows is healthy, not missing. The status
// bar must show counts, not the init hint.
func TestUpdate_EmptyDatabaseIsHealthy(t *testing.T) {
	path := seedPromptDB(t, nil)
	records, err := FetchPrompts(path)
	if err != nil {
		t.Fatalf("FetchPrompts: %v", err)
	}

	m := newModel()
	updated, _ := m.Update(promptsMsg{records: records, err: err})
	got := updated.(Model)

	if !got.dbOK {
		t.Fatal("dbOK should be true for an existing empty database")
	}
	if bar := got.renderStatusBar(); strings.Contains(bar, "wayfarer init") {
		t.Errorf("status bar shows init hint for a healthy database: %s", bar)
	}
}

func TestUpdate_PlanEventsReduceIntoState(t *testing.T) {
	m := newModel()
	m.plan = newPlanState("goal")
	m.activeView = PlanView
	m.inv = &agent.Invocation{}

	updated, cmdNext := m.Update(planEventMsg{ev: agent.Thinking{Message: "searching"}})
	got := updated.(Model)
	if len(got.plan.steps) != 1 {
		t.Fatalf("steps = %v", got.plan.steps)
	}
	if cmdNext == nil {
		t.Error("expected a command to keep draining events mid-run")
	}

	updated, cmd := got.Update(planEventMsg{ev: agent.Complete{Result: "itinerary"}})
	got = updated.(Model)
	if got.plan.phase != planDone || got.plan.result != "itinerary" {
		t.Errorf("plan = %+v, want done with itinerary", got.plan)
	}
	// Once terminal, there is no further event to wait for and the
	// invocation handle is released.
	if cmd != nil {
		t.Error("expected no follow-up command after terminal event")
	}
	if got.inv != nil {
		t.Error("invocation handle should be cleared after terminal event")
	}
}

func TestUpdate_PlanUnavailableFailsRun(t *testing.T) {
	m := newModel()
	m.plan = newPlanState("goal")

	updated, _ := m.Update(planUnavailableMsg{reason: "missing API key"})
	got := updated.(Model)

	if got.plan.phase != planFailed || got.plan.errMsg != "missing API key" {
		t.Errorf("plan = %+v, want failed with reason", got.plan)
	}
}

func TestHandleKeys_EnterRePlansSelectedPrompt(t *testing.T) {
	m := newModel()
	m.records = []prompt.Record{{ID: 1, Text: "ski trip in March"}}
	m.cursor = 0

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := updated.(Model)

	if got.activeView != PlanView {
		t.Errorf("activeView = %d, want PlanView", got.activeView)
	}
	if got.plan.goal != "ski trip in March" {
		t.Errorf("goal = %q", got.plan.goal)
	}
	if cmd == nil {
		t.Error("expected a command to start the run")
	}
}

func TestHandleKeys_NewPlanResetsPreviousRun(t *testing.T) {
	m := newModel()
	m.records = []prompt.Record{{ID: 1, Text: "second trip"}}
	m.plan = newPlanState("first trip")
	m.plan = m.plan.apply(agent.Complete{Result: "old plan"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := updated.(Model)

	if got.plan.goal != "second trip" {
		t.Errorf("goal = %q, want second trip", got.plan.goal)
	}
	if got.plan.result != "" || got.plan.phase != planRunning {
		t.Errorf("old run state leaked into new run: %+v", got.plan)
	}
}

func TestView_PlanPhases(t *testing.T) {
	m := newModel()
	m.activeView = PlanView
	m.plan = newPlanState("goal")
	m.plan.steps = []string{"searching"}

	if v := m.View(); !strings.Contains(v, "working") {
		t.Errorf("running view missing progress indicator: %s", v)
	}

	m.plan = m.plan.apply(agent.Complete{Result: "itinerary text"})
	if v := m.View(); !strings.Contains(v, "itinerary text") {
		t.Errorf("done view missing plan: %s", v)
	}

	m.plan = newPlanState("goal")
	m.plan = m.plan.apply(agent.Error{Message: "boom"})
	if v := m.View(); !strings.Contains(v, "boom") {
		t.Errorf("failed view missing error: %s", v)
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := newModel()
	m.records = []prompt.Record{{ID: 1}, {ID: 2}, {ID: 3}}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	got := updated.(Model)
	if got.cursor != 1 {
		t.Errorf("cursor = %d after j, want 1", got.cursor)
	}

	updated, _ = got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	got = updated.(Model)
	if got.cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", got.cursor)
	}

	// Cursor never goes negative.
	updated, _ = got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	got = updated.(Model)
	if got.cursor != 0 {
		t.Errorf("cursor = %d, want clamped at 0", got.cursor)
	}
}
