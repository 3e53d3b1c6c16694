package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// maxLogLines caps the activity log shown under the agent list.
const maxLogLines = 8

// EventMsg wraps an engine event for the bubbletea update loop.
type EventMsg struct {
	Event orchestrator.Event
}

// ApprovalMsg carries a pending phase approval request.
type ApprovalMsg struct {
	Request orchestrator.ApprovalRequest
}

// eventsClosedMsg signals that the engine has finished and closed its emitter.
type eventsClosedMsg struct{}

type agentStatus int

const (
	agentRunning agentStatus = iota
	agentDone
	agentFailed
	agentMissing
)

type agentRow struct {
	id         string
	name       string
	capability models.Capability
	phase      int
	status     agentStatus
	tokens     int
	duration   time.Duration
	err        string
}

// PhaseView shows live progress of a plan: the current phase, every
// dispatched agent and an activity log. Phase approvals are answered inline
// with y/n when an ApprovalManager is attached.
type PhaseView struct {
	task      string
	spinner   spinner.Model
	events    <-chan orchestrator.Event
	approvals *orchestrator.ApprovalManager
	cancel    func()

	phase       int
	totalPhases int
	phaseDesc   string
	agents      []agentRow
	index       map[string]int
	logs        []string
	tokens      int
	pending     *orchestrator.ApprovalRequest
	done        bool
	interrupted bool
	width       int

	// Styles
	titleStyle   lipgloss.Style
	phaseStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	promptStyle  lipgloss.Style
}

// NewPhaseView creates a view that consumes events until the channel closes.
// approvals may be nil when phases are approved without a prompt. cancel is
// called when the user interrupts with ctrl+c.
func NewPhaseView(task string, events <-chan orchestrator.Event, approvals *orchestrator.ApprovalManager, cancel func()) *PhaseView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &PhaseView{
		task:      task,
		spinner:   s,
		events:    events,
		approvals: approvals,
		cancel:    cancel,
		index:     make(map[string]int),
		width:     80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		phaseStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		mutedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		promptStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
	}
}

// NewPhaseProgram creates a bubbletea program around a PhaseView.
func NewPhaseProgram(view *PhaseView, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(view, opts...)
}

func waitForEvent(ch <-chan orchestrator.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

func waitForApproval(m *orchestrator.ApprovalManager) tea.Cmd {
	if m == nil {
		return nil
	}
	return func() tea.Msg {
		return ApprovalMsg{Request: <-m.RequestCh()}
	}
}

// Init implements tea.Model.
func (v *PhaseView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, waitForEvent(v.events), waitForApproval(v.approvals))
}

// Update implements tea.Model.
func (v *PhaseView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case tea.WindowSizeMsg:
		v.width = msg.Width
		return v, nil

	case ApprovalMsg:
		req := msg.Request
		// Requests whose Approve call already gave up stay buffered.
		if v.approvals != nil && !v.approvals.HasPending(req.ID) {
			return v, waitForApproval(v.approvals)
		}
		v.pending = &req
		return v, nil

	case EventMsg:
		v.apply(msg.Event)
		return v, waitForEvent(v.events)

	case eventsClosedMsg:
		v.done = true
		return v, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *PhaseView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		v.interrupted = true
		if v.pending != nil {
			v.answer(false)
		}
		if v.cancel != nil {
			v.cancel()
		}
		return v, tea.Quit
	}

	if v.pending == nil {
		return v, nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		v.answer(true)
		return v, waitForApproval(v.approvals)
	case "n", "N", "esc":
		v.answer(false)
		return v, waitForApproval(v.approvals)
	}
	return v, nil
}

func (v *PhaseView) answer(approved bool) {
	verb := "declined"
	if approved {
		verb = "approved"
	}
	v.log(fmt.Sprintf("%s: %s", verb, v.pending.Phase))
	if v.approvals != nil {
		v.approvals.SubmitResponse(orchestrator.ApprovalResponse{ID: v.pending.ID, Approved: approved})
	}
	v.pending = nil
}

func (v *PhaseView) apply(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventPhaseStarted:
		v.phase = ev.Phase
		v.totalPhases = ev.TotalPhases
		v.phaseDesc = ev.PhaseDescription
		v.log(fmt.Sprintf("phase %d/%d started: %s", ev.Phase, ev.TotalPhases, ev.PhaseDescription))

	case orchestrator.EventPhaseSkipped:
		v.log(fmt.Sprintf("phase %d skipped: %s", ev.Phase, ev.PhaseDescription))

	case orchestrator.EventPhaseCompleted:
		v.log(fmt.Sprintf("phase %d completed", ev.Phase))

	case orchestrator.EventAgentStarted:
		v.upsert(ev, agentRunning)

	case orchestrator.EventAgentCompleted:
		row := v.upsert(ev, agentDone)
		row.tokens = ev.TokensUsed
		row.duration = ev.Duration
		v.tokens += ev.TokensUsed

	case orchestrator.EventAgentFailed:
		row := v.upsert(ev, agentFailed)
		row.duration = ev.Duration
		if ev.Error != nil {
			row.err = ev.Error.Error()
		}

	case orchestrator.EventAgentMissing:
		v.upsert(ev, agentMissing)
		v.log("no worker for " + ev.AgentID)

	case orchestrator.EventBudgetWarning, orchestrator.EventCriticalFailure:
		v.log(ev.Message)

	case orchestrator.EventRunDone:
		v.tokens = ev.TokensUsed
		v.log(fmt.Sprintf("run finished in %s", ev.Duration.Round(time.Millisecond)))
	}
}

func (v *PhaseView) upsert(ev orchestrator.Event, status agentStatus) *agentRow {
	i, ok := v.index[ev.AgentID]
	if !ok {
		v.agents = append(v.agents, agentRow{
			id:         ev.AgentID,
			name:       ev.AgentName,
			capability: ev.Capability,
			phase:      ev.Phase,
		})
		i = len(v.agents) - 1
		v.index[ev.AgentID] = i
	}
	v.agents[i].status = status
	return &v.agents[i]
}

func (v *PhaseView) log(line string) {
	v.logs = append(v.logs, line)
	if len(v.logs) > maxLogLines {
		v.logs = v.logs[len(v.logs)-maxLogLines:]
	}
}

// Interrupted reports whether the user quit with ctrl+c.
func (v *PhaseView) Interrupted() bool {
	return v.interrupted
}

// Done reports whether the engine finished.
func (v *PhaseView) Done() bool {
	return v.done
}

// View implements tea.Model.
func (v *PhaseView) View() string {
	var b strings.Builder

	b.WriteString(v.titleStyle.Render("mastercoder"))
	b.WriteString(" ")
	b.WriteString(v.mutedStyle.Render(truncate(v.task, max(20, v.width-14))))
	b.WriteString("\n\n")

	if v.phase > 0 {
		b.WriteString(v.phaseStyle.Render(fmt.Sprintf("Phase %d/%d", v.phase, v.totalPhases)))
		b.WriteString(" ")
		b.WriteString(v.phaseDesc)
		b.WriteString("\n")
	}

	for _, a := range v.agents {
		b.WriteString(v.renderAgent(a))
		b.WriteString("\n")
	}

	b.WriteString(v.mutedStyle.Render(fmt.Sprintf("tokens: %d", v.tokens)))
	b.WriteString("\n")

	if len(v.logs) > 0 {
		b.WriteString("\n")
		for _, l := range v.logs {
			b.WriteString(v.mutedStyle.Render("  " + truncate(l, max(20, v.width-2))))
			b.WriteString("\n")
		}
	}

	if v.pending != nil {
		b.WriteString("\n")
		b.WriteString(v.promptStyle.Render(fmt.Sprintf("Run %s? [y/n]", v.pending.Phase)))
		b.WriteString("\n")
	}

	if !v.done {
		b.WriteString(v.mutedStyle.Render("ctrl+c to stop"))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *PhaseView) renderAgent(a agentRow) string {
	var mark string
	switch a.status {
	case agentRunning:
		mark = v.spinner.View()
	case agentDone:
		mark = v.successStyle.Render("✓")
	case agentFailed:
		mark = v.errorStyle.Render("✗")
	case agentMissing:
		mark = v.mutedStyle.Render("?")
	}

	line := fmt.Sprintf("%s %s %s", mark, a.capability.Emoji(), a.name)
	switch a.status {
	case agentDone:
		line += v.mutedStyle.Render(fmt.Sprintf("  %d tokens  %s", a.tokens, a.duration.Round(time.Millisecond)))
	case agentFailed:
		line += " " + v.errorStyle.Render(truncate(a.err, max(20, v.width-len(a.name)-8)))
	case agentMissing:
		line += v.mutedStyle.Render("  no worker")
	}
	return line
}
