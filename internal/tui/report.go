package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/mastercoder/internal/state"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// Report renders analyses, plans, results and stats as static text blocks.
type Report struct {
	width int

	// Styles
	headerStyle  lipgloss.Style
	labelStyle   lipgloss.Style
	valueStyle   lipgloss.Style
	phaseStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	boxStyle     lipgloss.Style
}

// NewReport creates a Report with the default styles.
func NewReport() *Report {
	return &Report{
		width: 80,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		phaseStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		mutedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		warningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// SetWidth sets the maximum render width.
func (r *Report) SetWidth(width int) {
	r.width = width
}

func (r *Report) row(b *strings.Builder, label, value string) {
	b.WriteString(r.labelStyle.Render(label))
	b.WriteString(r.valueStyle.Render(value))
	b.WriteString("\n")
}

// unstaffedCapabilities are detected but never planned into a spec.
var unstaffedCapabilities = []models.Capability{
	models.CapabilityDebugging,
	models.CapabilityPerformance,
	models.CapabilityReview,
}

// Analysis renders a task analysis.
func (r *Report) Analysis(a *models.TaskAnalysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(r.headerStyle.Render("Task Analysis"))
	b.WriteString("\n")

	r.row(&b, "Complexity:", fmt.Sprintf("%d/10 (%s)", a.Complexity, a.ComplexityLabel()))
	r.row(&b, "Estimated files:", fmt.Sprintf("%d", a.EstimatedFiles))
	r.row(&b, "Estimated tokens:", fmt.Sprintf("%d", a.EstimatedTokens))
	r.row(&b, "Estimated time:", fmt.Sprintf("%d-%d min", a.EstimatedTimeMin, a.EstimatedTimeMax))

	caps := make([]string, len(a.RequiredCapabilities))
	for i, c := range a.RequiredCapabilities {
		caps[i] = c.Emoji() + " " + string(c)
	}
	r.row(&b, "Capabilities:", strings.Join(caps, ", "))

	var unstaffed []string
	for _, c := range unstaffedCapabilities {
		if a.HasCapability(c) {
			unstaffed = append(unstaffed, string(c))
		}
	}
	if len(unstaffed) > 0 {
		b.WriteString(r.warningStyle.Render("No agent for: " + strings.Join(unstaffed, ", ")))
		b.WriteString("\n")
	}

	if len(a.Keywords) > 0 {
		b.WriteString(r.labelStyle.Render("Keywords:"))
		b.WriteString(r.mutedStyle.Render(strings.Join(a.Keywords, " ")))
		b.WriteString("\n")
	}

	return b.String()
}

// Plan renders an execution plan phase by phase.
func (r *Report) Plan(plan *models.ExecutionPlan) string {
	var b strings.Builder
	b.WriteString(r.headerStyle.Render(fmt.Sprintf("Execution Plan (%d agents)", plan.TotalAgents())))
	b.WriteString("\n")

	if plan == nil || len(plan.Phases) == 0 {
		b.WriteString(r.mutedStyle.Render("No agents planned for this task."))
		b.WriteString("\n")
		return b.String()
	}

	for _, phase := range plan.Phases {
		b.WriteString(r.phaseStyle.Render(phase.Description))
		b.WriteString("\n")
		for _, spec := range phase.Agents {
			line := fmt.Sprintf("  %s %s  %s", spec.Capability.Emoji(), spec.Name, r.mutedStyle.Render("["+spec.ID+"]"))
			b.WriteString(line)
			b.WriteString("\n")
			b.WriteString("     ")
			b.WriteString(truncate(spec.Task, max(20, r.width-6)))
			b.WriteString("\n")
			if len(spec.Dependencies) > 0 {
				b.WriteString(r.mutedStyle.Render("     after: " + strings.Join(spec.Dependencies, ", ")))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// Warnings renders scheduling or execution warnings. Empty input renders nothing.
func (r *Report) Warnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(r.warningStyle.Render("⚠ " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// Result renders the outcome of a run in a bordered box.
func (r *Report) Result(res *models.ExecutionResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	status := r.successStyle.Render("✓ Success")
	if !res.Success {
		status = r.errorStyle.Render("✗ Failed")
	}
	b.WriteString(status)
	b.WriteString("\n")

	r.row(&b, "Agents executed:", fmt.Sprintf("%d", res.AgentsExecuted))
	r.row(&b, "Tokens used:", fmt.Sprintf("%d", res.TokensUsed))
	r.row(&b, "Time:", fmt.Sprintf("%.1fs", res.ExecutionTimeSecs))

	for _, e := range res.Errors {
		b.WriteString(r.errorStyle.Render("✗ " + e))
		b.WriteString("\n")
	}
	b.WriteString(r.Warnings(res.Warnings))

	return r.boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Stats renders aggregated agent statistics.
func (r *Report) Stats(s *state.AgentStats) string {
	var b strings.Builder
	b.WriteString(r.headerStyle.Render("Agent Statistics"))
	b.WriteString("\n")

	if s == nil || s.TotalExecutions == 0 {
		b.WriteString(r.mutedStyle.Render("No agent executions recorded yet."))
		b.WriteString("\n")
		return b.String()
	}

	r.row(&b, "Executions:", fmt.Sprintf("%d", s.TotalExecutions))
	r.row(&b, "Successful:", fmt.Sprintf("%d (%.0f%%)", s.SuccessfulExecutions, s.SuccessRate()*100))
	r.row(&b, "Total tokens:", fmt.Sprintf("%d", s.TotalTokens))
	r.row(&b, "Avg tokens/agent:", fmt.Sprintf("%d", s.AvgTokensPerAgent))
	r.row(&b, "Total time:", fmt.Sprintf("%.1fs", s.TotalTimeSecs))
	r.row(&b, "Avg time/agent:", fmt.Sprintf("%.1fs", s.AvgTimePerAgentSecs))

	if len(s.ByCapability) > 0 {
		b.WriteString("\n")
		caps := make([]models.Capability, 0, len(s.ByCapability))
		for c := range s.ByCapability {
			caps = append(caps, c)
		}
		sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })

		for _, c := range caps {
			cs := s.ByCapability[c]
			b.WriteString(fmt.Sprintf("  %s %-14s %3d runs  %3d ok  %7d tokens\n",
				c.Emoji(), c, cs.Executions, cs.Successes, cs.Tokens))
		}
	}

	return b.String()
}

// History renders recent agent executions, newest first.
func (r *Report) History(execs []state.AgentExecution) string {
	var b strings.Builder
	b.WriteString(r.headerStyle.Render("Recent Agent Executions"))
	b.WriteString("\n")

	if len(execs) == 0 {
		b.WriteString(r.mutedStyle.Render("No agent executions recorded yet."))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range execs {
		mark := r.successStyle.Render("✓")
		if !e.Success {
			mark = r.errorStyle.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %s %s  %s  %d tokens  %dms\n",
			mark,
			r.mutedStyle.Render(e.CreatedAt.Format("2006-01-02 15:04")),
			e.Capability.Emoji(),
			e.AgentName,
			e.TokensUsed,
			e.ExecutionTimeMs))
		if e.Error != "" {
			b.WriteString(r.errorStyle.Render("    " + truncate(e.Error, max(20, r.width-4))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
