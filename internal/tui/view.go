package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"caselens/internal/prompt"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	percentStyle = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("caselens — refund case analysis"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Case notes"))
	b.WriteString("\n")
	b.WriteString(m.notes.View())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Issue type:"), m.issue.View())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Booking total:"), m.total.View())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Refunded amount:"), m.refunded.View())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Agent id:"), m.agent.View())

	b.WriteString("\n")
	b.WriteString(m.refundLine())
	b.WriteString("\n")

	switch m.state {
	case stateSubmitting:
		fmt.Fprintf(&b, "\n%s analyzing...\n", m.spin.View())
	case stateError:
		fmt.Fprintf(&b, "\n%s\n", errorStyle.Render("analysis failed: "+m.errText))
	case stateDisplaying:
		b.WriteString("\n")
		b.WriteString(m.resultView())
		b.WriteString("\n")
		b.WriteString(m.auditLine())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • ctrl+s: analyze • ctrl+r: clear • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// refundLine shows the locally computed percentage and the cap-proximity
// hint: above the encouraged cap means escalation required, within the
// caution margin below it means caution.
func (m Model) refundLine() string {
	facts := m.localFacts()
	line := labelStyle.Render("Refund: ") + percentStyle.Render(prompt.FormatPercent(facts.RefundPercent))
	if facts.RefundPercent == nil {
		return line
	}
	pct := *facts.RefundPercent
	switch {
	case facts.HardCapExceeded:
		line += "  " + errorStyle.Render(fmt.Sprintf("policy violation: above the %g%% maximum cap — escalate now", facts.MaxCapPercent))
	case facts.SoftCapExceeded:
		line += "  " + errorStyle.Render(fmt.Sprintf("above the %g%% encouraged cap — escalation required", facts.EncouragedCapPercent))
	case pct >= facts.EncouragedCapPercent-cautionMargin:
		line += "  " + warnStyle.Render(fmt.Sprintf("caution: close to the %g%% encouraged cap", facts.EncouragedCapPercent))
	}
	return line
}

func (m Model) resultView() string {
	res := m.result
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  (score %.0f, confidence %.2f)\n",
		labelStyle.Render("Risk:"), riskStyle(res.RiskLevel).Render(strings.ToUpper(res.RiskLevel)),
		res.RiskScore, res.Confidence)

	if len(res.Signals) > 0 {
		b.WriteString(labelStyle.Render("Signals") + "\n")
		for _, sig := range res.Signals {
			fmt.Fprintf(&b, "  • %s (%.1f): %q\n", sig.Name, sig.Weight, sig.EvidenceQuote)
		}
	}
	writeList(&b, "Warnings", res.Warnings)
	writeList(&b, "Suggested script", res.RecommendedScript)
	writeList(&b, "Next steps", res.NextSteps)
	writeList(&b, "Missing info", res.MissingInfo)

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(labelStyle.Render(title) + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", it)
	}
}

// auditLine is the persistence status banner. An audit failure is visible
// but never invalidates the displayed result.
func (m Model) auditLine() string {
	switch m.auditState {
	case auditSaving:
		return m.spin.View() + " saving audit record..."
	case auditSaved:
		return okStyle.Render("audit record saved: " + m.auditID)
	case auditFailed:
		return warnStyle.Render("audit save failed: " + m.auditErr + " (result above remains valid)")
	default:
		return ""
	}
}

func riskStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return errorStyle
	case "medium":
		return warnStyle
	default:
		return okStyle
	}
}
