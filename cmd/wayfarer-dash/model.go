package main

import (
	"fmt"
	"strings"
	"time"

	"wayfarer/pkg/agent"
	"wayfarer/pkg/prompt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickMsg is sent by Bubble Tea on every tick interval.
// Used to trigger periodic refresh of the prompt list.
type tickMsg time.Time

// promptsMsg carries fetched prompt records. err is set when the
// database could not be read; an empty slice with a nil err is a
// healthy, empty store.
type promptsMsg struct {
	records []prompt.Record
	err     error
}

// countsMsg carries per-status record counts for the status bar.
type countsMsg map[prompt.SyncStatus]int

// tickCmd returns a command that sends a tickMsg after 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchPromptsCmd returns a tea.Cmd that reads the prompt list.
func fetchPromptsCmd() tea.Cmd {
	return func() tea.Msg {
		records, err := FetchPrompts(promptDBPath())
		return promptsMsg{records: records, err: err}
	}
}

// fetchCountsCmd returns a tea.Cmd that reads the status counts.
func fetchCountsCmd() tea.Cmd {
	return func() tea.Msg {
		counts, _ := FetchCounts(promptDBPath())
		return countsMsg(counts)
	}
}

// ViewType represents different views in the dashboard.
type ViewType int

const (
	// HistoryView shows the prompt history list.
	HistoryView ViewType = iota
	// GoalView shows the goal input for a new planning run.
	GoalView
	// PlanView shows the active or finished planning run.
	PlanView
)

// Model is the Bubble Tea model for the wayfarer dashboard.
type Model struct {
	activeView ViewType
	theme      Theme

	// Data fetched from the prompt database
	records []prompt.Record
	counts  map[prompt.SyncStatus]int
	dbOK    bool

	// UI state
	width    int
	height   int
	cursor   int
	spinner  spinner.Model
	goalArea textarea.Model

	// Planning run state
	plan planState
	inv  *agent.Invocation
}

// newModel creates a new Model initialized with HistoryView active.
func newModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ta := textarea.New()
	ta.Placeholder = "Where do you want to go?"
	ta.SetHeight(3)
	ta.CharLimit = 500

	return Model{
		activeView: HistoryView,
		theme:      DefaultTheme(),
		spinner:    sp,
		goalArea:   ta,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchPromptsCmd(), fetchCountsCmd(), tickCmd()}
	if watch := watchStateDir(stateDir()); watch != nil {
		cmds = append(cmds, watch)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.goalArea.SetWidth(msg.Width - 4)

	case promptsMsg:
		m.dbOK = msg.err == nil
		m.records = msg.records
		if m.cursor >= len(m.records) {
			m.cursor = max(0, len(m.records)-1)
		}

	case countsMsg:
		m.counts = map[prompt.SyncStatus]int(msg)

	case fsChangeMsg:
		// Refresh immediately and re-arm the watcher.
		cmds := []tea.Cmd{fetchPromptsCmd(), fetchCountsCmd()}
		if watch := watchStateDir(stateDir()); watch != nil {
			cmds = append(cmds, watch)
		}
		return m, tea.Batch(cmds...)

	case tickMsg:
		return m, tea.Batch(fetchPromptsCmd(), fetchCountsCmd(), tickCmd())

	case planStartedMsg:
		// The reducer state was already reset when the run was requested;
		// just hook up the event channel.
		m.inv = msg.inv
		return m, tea.Batch(waitForEvent(msg.inv), m.spinner.Tick)

	case planEventMsg:
		m.plan = m.plan.apply(msg.ev)
		if m.plan.terminal() {
			// The pipeline closes the channel after a terminal event;
			// drop the handle so the run is visibly over.
			m.inv = nil
			return m, nil
		}
		if m.inv != nil {
			return m, waitForEvent(m.inv)
		}
		return m, nil

	case planClosedMsg:
		m.inv = nil
		return m, nil

	case planUnavailableMsg:
		m.plan.phase = planFailed
		m.plan.errMsg = msg.reason
		return m, nil

	case spinner.TickMsg:
		if m.plan.phase == planRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// handleKeyPress processes keyboard input and returns updated model with optional command.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if m.inv != nil {
			m.inv.Cancel()
		}
		return m, tea.Quit
	}
	if key == "q" && m.activeView != GoalView {
		if m.inv != nil {
			m.inv.Cancel()
		}
		return m, tea.Quit
	}

	switch m.activeView {
	case GoalView:
		return m.handleGoalViewKeys(key, msg)
	case PlanView:
		return m.handlePlanViewKeys(key)
	default:
		return m.handleHistoryViewKeys(key)
	}
}

// handleHistoryViewKeys processes keyboard input in HistoryView.
func (m Model) handleHistoryViewKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "n":
		m.activeView = GoalView
		m.goalArea.Reset()
		m.goalArea.Focus()
	case "enter":
		// Re-run the selected prompt through the planner.
		if m.cursor < len(m.records) {
			goal := m.records[m.cursor].Text
			m.plan = newPlanState(goal)
			m.activeView = PlanView
			return m, tea.Batch(startPlanCmd(goal), m.spinner.Tick)
		}
	}
	return m, nil
}

// handleGoalViewKeys processes keyboard input in GoalView.
func (m Model) handleGoalViewKeys(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.activeView = HistoryView
		m.goalArea.Blur()
		return m, nil
	case "enter":
		goal := strings.TrimSpace(m.goalArea.Value())
		if goal == "" {
			return m, nil
		}
		m.goalArea.Blur()
		m.plan = newPlanState(goal)
		m.activeView = PlanView
		return m, tea.Batch(startPlanCmd(goal), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.goalArea, cmd = m.goalArea.Update(msg)
	return m, cmd
}

// handlePlanViewKeys processes keyboard input in PlanView.
func (m Model) handlePlanViewKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "backspace":
		// Leaving the view abandons the run; the pipeline cleans up.
		if m.inv != nil && !m.plan.terminal() {
			m.inv.Cancel()
			m.inv = nil
		}
		m.activeView = HistoryView
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	statusBar := m.renderStatusBar()

	switch m.activeView {
	case GoalView:
		return statusBar + "\n\n" + m.goalArea.View() + "\n\n(enter to plan, esc to cancel)"
	case PlanView:
		return statusBar + "\n" + m.renderPlan()
	default:
		return statusBar + "\n" + m.renderHistory()
	}
}

// renderStatusBar renders the one-line summary of prompt sync state.
func (m Model) renderStatusBar() string {
	title := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("wayfarer")

	if !m.dbOK {
		offline := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("no prompt database, run 'wayfarer init'")
		return title + "  " + offline
	}

	parts := make([]string, 0, 3)
	for _, status := range []prompt.SyncStatus{prompt.StatusPending, prompt.StatusSynced, prompt.StatusFailed} {
		n := m.counts[status]
		style := lipgloss.NewStyle().Foreground(m.theme.statusColor(string(status)))
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", n, status)))
	}

	return title + "  " + strings.Join(parts, "  ")
}

// renderHistory renders the prompt list with the cursor row highlighted.
func (m Model) renderHistory() string {
	if len(m.records) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("no prompts yet, press n to plan a trip")
	}

	var b strings.Builder
	for i, r := range m.records {
		marker := "  "
		if i == m.cursor {
			marker = lipgloss.NewStyle().Foreground(m.theme.Secondary).Render("> ")
		}
		status := lipgloss.NewStyle().Foreground(m.theme.statusColor(string(r.Status))).Render(string(r.Status))
		fmt.Fprintf(&b, "%s%-4d %s  %s\n", marker, r.ID, status, r.Text)
	}
	b.WriteString("\n(n new plan, enter re-plan selected, q quit)")
	return b.String()
}

// renderPlan renders the active or finished planning run.
func (m Model) renderPlan() string {
	var b strings.Builder

	goal := lipgloss.NewStyle().Foreground(m.theme.Secondary).Render(m.plan.goal)
	b.WriteString("plan: " + goal + "\n\n")

	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	for _, step := range m.plan.steps {
		b.WriteString(muted.Render("  "+step) + "\n")
	}

	switch m.plan.phase {
	case planRunning:
		b.WriteString("\n" + m.spinner.View() + " working\n")
	case planDone:
		done := lipgloss.NewStyle().Foreground(m.theme.Success).Bold(true)
		b.WriteString("\n" + done.Render("plan ready") + "\n\n" + m.plan.result + "\n")
	case planFailed:
		failed := lipgloss.NewStyle().Foreground(m.theme.Error)
		b.WriteString("\n" + failed.Render("error: "+m.plan.errMsg) + "\n")
	}

	b.WriteString("\n(esc back, q quit)")
	return b.String()
}
