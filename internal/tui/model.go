// Package tui is the interactive agent-facing workflow: compose case inputs,
// submit, await, display, persist the audit record, report audit status.
// The refund percentage shown while typing is recomputed locally through the
// same policy functions the server uses, so the instant feedback can never
// disagree with the served result.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"caselens/internal/analysis"
	"caselens/internal/audit"
	"caselens/internal/client"
	"caselens/internal/policy"
)

// workflow states
type state int

const (
	stateIdle state = iota
	stateSubmitting
	stateDisplaying
	stateError
)

// audit persistence states; entered only from stateDisplaying.
type auditState int

const (
	auditNone auditState = iota
	auditSaving
	auditSaved
	auditFailed
)

// cautionMargin is how close (in percentage points) to the encouraged cap a
// refund may get before the caution hint appears.
const cautionMargin = 3.0

var errAuditUnavailable = errors.New("audit store not configured")

// Model is the bubbletea model for the analysis workflow.
type Model struct {
	api          *client.Client
	store        audit.Store
	log          *zap.Logger
	auditTimeout time.Duration

	notes    textarea.Model
	issue    textinput.Model
	total    textinput.Model
	refunded textinput.Model
	agent    textinput.Model
	spin     spinner.Model

	focus      int
	state      state
	auditState auditState

	result   *analysis.Result
	lastReq  *analysis.Request
	errText  string
	auditID  string
	auditErr string
	width    int
}

// messages
type analyzeDoneMsg struct{ res *analysis.Result }
type analyzeFailedMsg struct{ err error }
type auditDoneMsg struct{ id string }
type auditFailedMsg struct{ err error }

const inputCount = 5

// New builds the workflow model. The audit store may be nil, in which case
// persistence is skipped and reported as unavailable.
func New(api *client.Client, store audit.Store, auditTimeout time.Duration, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	notes := textarea.New()
	notes.Placeholder = "Case notes (what happened, what the customer asked for, what was offered)..."
	notes.SetHeight(6)
	notes.Focus()

	issue := textinput.New()
	issue.Placeholder = "e.g. delayed refund, cancellation dispute"

	total := textinput.New()
	total.Placeholder = "e.g. 560"

	refunded := textinput.New()
	refunded.Placeholder = "e.g. 85.06"

	agent := textinput.New()
	agent.Placeholder = "optional, defaults to unknown"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		api:          api,
		store:        store,
		log:          log,
		auditTimeout: auditTimeout,
		notes:        notes,
		issue:        issue,
		total:        total,
		refunded:     refunded,
		agent:        agent,
		spin:         sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.notes.SetWidth(min(msg.Width-4, 100))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.setFocus((m.focus + 1) % inputCount)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + inputCount - 1) % inputCount)
			return m, nil
		case "ctrl+s":
			if !m.canSubmit() {
				return m, nil
			}
			return m.submit()
		case "ctrl+r":
			m.clear()
			return m, nil
		}

	case spinner.TickMsg:
		if m.state == stateSubmitting || m.auditState == auditSaving {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case analyzeDoneMsg:
		m.state = stateDisplaying
		m.result = msg.res
		// Persist strictly after the result is on screen; a failed write
		// never invalidates the displayed analysis.
		m.auditState = auditSaving
		return m, tea.Batch(m.spin.Tick, m.saveAuditCmd())

	case analyzeFailedMsg:
		m.state = stateError
		m.errText = msg.err.Error()
		return m, nil

	case auditDoneMsg:
		m.auditState = auditSaved
		m.auditID = msg.id
		return m, nil

	case auditFailedMsg:
		m.auditState = auditFailed
		m.auditErr = msg.err.Error()
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	cmds = append(cmds, cmd)
	m.issue, cmd = m.issue.Update(msg)
	cmds = append(cmds, cmd)
	m.total, cmd = m.total.Update(msg)
	cmds = append(cmds, cmd)
	m.refunded, cmd = m.refunded.Update(msg)
	cmds = append(cmds, cmd)
	m.agent, cmd = m.agent.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	m.focus = i
	m.notes.Blur()
	m.issue.Blur()
	m.total.Blur()
	m.refunded.Blur()
	m.agent.Blur()
	switch i {
	case 0:
		m.notes.Focus()
	case 1:
		m.issue.Focus()
	case 2:
		m.total.Focus()
	case 3:
		m.refunded.Focus()
	case 4:
		m.agent.Focus()
	}
}

// canSubmit blocks submission while a prior one is in flight or when the
// notes are empty or whitespace-only.
func (m Model) canSubmit() bool {
	if m.state == stateSubmitting {
		return false
	}
	return strings.TrimSpace(m.notes.Value()) != ""
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req := &analysis.Request{
		RawNotes:       m.notes.Value(),
		IssueType:      strings.TrimSpace(m.issue.Value()),
		BookingTotal:   parseAmount(m.total.Value()),
		RefundedAmount: parseAmount(m.refunded.Value()),
	}
	m.state = stateSubmitting
	m.auditState = auditNone
	m.result = nil
	m.errText = ""
	m.auditErr = ""
	m.auditID = ""
	m.lastReq = req

	api := m.api
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		res, err := api.Analyze(context.Background(), req)
		if err != nil {
			return analyzeFailedMsg{err: err}
		}
		return analyzeDoneMsg{res: res}
	})
}

func (m Model) saveAuditCmd() tea.Cmd {
	store := m.store
	timeout := m.auditTimeout
	agent := strings.TrimSpace(m.agent.Value())
	req := m.lastReq
	res := m.result
	return func() tea.Msg {
		if store == nil {
			return auditFailedMsg{err: errAuditUnavailable}
		}
		var pct *float64
		if p, ok := res.Policy["refund_percent"].(float64); ok {
			pct = &p
		}
		rec := analysis.NewAuditRecord(agent, req, pct, res)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := store.Append(ctx, rec)
		if err != nil {
			return auditFailedMsg{err: err}
		}
		return auditDoneMsg{id: id}
	}
}

// clear resets every field, including the optional agent identifier.
func (m *Model) clear() {
	m.notes.Reset()
	m.issue.Reset()
	m.total.Reset()
	m.refunded.Reset()
	m.agent.Reset()
	m.state = stateIdle
	m.auditState = auditNone
	m.result = nil
	m.lastReq = nil
	m.errText = ""
	m.auditErr = ""
	m.auditID = ""
	m.setFocus(0)
}

// localFacts recomputes the policy facts from the current inputs, using the
// same formula as the server, for instant display feedback.
func (m Model) localFacts() policy.RefundFacts {
	return policy.Evaluate(
		parseAmount(m.total.Value()),
		parseAmount(m.refunded.Value()),
		policy.DefaultEncouragedCapPercent,
		policy.DefaultMaxCapPercent,
	)
}

func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
