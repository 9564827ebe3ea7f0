package main

import (
	"context"
	"os"

	"wayfarer/pkg/agent"

	tea "github.com/charmbracelet/bubbletea"
)

// planPhase tracks where a planning run is in its lifecycle.
type planPhase int

const (
	// planIdle means no run has started yet.
	planIdle planPhase = iota
	// planRunning means events are still arriving.
	planRunning
	// planDone means the run finished with a plan.
	planDone
	// planFailed means the run finished with an error.
	planFailed
)

// planState is the dashboard's view of one planning run. It is reduced
// from the agent event stream one event at a time; once a terminal event
// lands the state never changes again.
type planState struct {
	phase  planPhase
	goal   string
	steps  []string
	result string
	errMsg string
}

// newPlanState returns the state for a freshly started run. Starting a
// new run discards everything from the previous one.
func newPlanState(goal string) planState {
	return planState{phase: planRunning, goal: goal}
}

// terminal reports whether the run has finished.
func (s planState) terminal() bool {
	return s.phase == planDone || s.phase == planFailed
}

// apply folds one agent event into the state. Events arriving after a
// terminal event are ignored so the finished plan can never regress.
func (s planState) apply(ev agent.Event) planState {
	if s.terminal() {
		return s
	}

	switch e := ev.(type) {
	case agent.Thinking:
		s.steps = append(s.steps, e.Message)
	case agent.ToolCalling:
		s.steps = append(s.steps, e.Tool+": "+e.Summary)
	case agent.ToolResult:
		s.steps = append(s.steps, e.Tool+" -> "+e.Summary)
	case agent.Complete:
		s.phase = planDone
		s.result = e.Result
	case agent.Error:
		s.phase = planFailed
		s.errMsg = e.Message
	}

	return s
}

// planStartedMsg carries a new invocation into the model.
type planStartedMsg struct {
	goal string
	inv  *agent.Invocation
}

// planEventMsg carries one agent event off the invocation channel.
type planEventMsg struct {
	ev agent.Event
}

// planClosedMsg signals that the invocation channel closed.
type planClosedMsg struct{}

// planUnavailableMsg signals that the agent backend could not be built.
type planUnavailableMsg struct {
	reason string
}

// startPlanCmd builds the agent client and kicks off an invocation.
// Failures surface as planUnavailableMsg rather than killing the program.
func startPlanCmd(goal string) tea.Cmd {
	return func() tea.Msg {
		client, err := agent.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("WAYFARER_MODEL"), nil)
		if err != nil {
			return planUnavailableMsg{reason: err.Error()}
		}
		inv := agent.NewPipeline(client).Invoke(context.Background(), agent.Request{Goal: goal})
		return planStartedMsg{goal: goal, inv: inv}
	}
}

// waitForEvent blocks on the invocation channel and hands the next event
// to the model. Channel close maps to planClosedMsg.
func waitForEvent(inv *agent.Invocation) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-inv.Events
		if !ok {
			return planClosedMsg{}
		}
		return planEventMsg{ev: ev}
	}
}
