// Package tui is the terminal swipe client. Cards are dragged with the mouse
// and interpreted by gesture.Interpreter; the arrow keys act as the accept and
// reject buttons.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"swipe-quiz/internal/gesture"
	"swipe-quiz/internal/quiz"
	"swipe-quiz/internal/userclient"
)

const (
	cardWidth     = 44
	defaultMargin = 12
)

// Client is the part of the quiz API the swipe screens use.
// *userclient.HTTPClient satisfies it.
type Client interface {
	StartSession(ctx context.Context, contact quiz.Contact) (quiz.SessionView, error)
	Decide(ctx context.Context, sessionID string, promptID int, accepted bool) (userclient.DecisionResult, error)
	Reset(ctx context.Context, sessionID string) (quiz.SessionView, error)
	Result(ctx context.Context, sessionID string) (quiz.Outcome, error)
}

type Options struct {
	Gesture gesture.Config
	// PixelsPerCell converts terminal columns into gesture pixels.
	PixelsPerCell float64
	MatchOverlay  time.Duration
	Logger        *zap.Logger
}

type screen int

const (
	screenForm screen = iota
	screenSwipe
	screenResult
)

var formFields = []struct {
	name  string
	label string
}{
	{"first_name", "Voornaam"},
	{"last_name", "Achternaam"},
	{"email", "E-mail"},
	{"phone_number", "Telefoonnummer"},
	{"company_name", "Bedrijfsnaam"},
}

type (
	sessionStartedMsg struct{ view quiz.SessionView }
	sessionResetMsg   struct{ view quiz.SessionView }
	committedMsg      struct {
		promptID  int
		direction gesture.Direction
		err       error
	}
	decidedMsg     struct{ result userclient.DecisionResult }
	overlayDoneMsg struct{ seq int }
	resultMsg      struct{ outcome quiz.Outcome }
	errMsg         struct{ err error }
)

type Model struct {
	ctx    context.Context
	client Client
	opts   Options
	logger *zap.Logger

	screen screen
	width  int

	inputs      []textinput.Model
	focus       int
	fieldErrors map[string]string

	sessionID   string
	progress    quiz.Progress
	interpreter *gesture.Interpreter
	hint        gesture.Hint
	pending     *gesture.Commit
	busy        bool
	matchShown  bool
	overlaySeq  int

	outcome quiz.Outcome
	status  string
}

func New(ctx context.Context, client Client, opts Options) Model {
	if opts.PixelsPerCell <= 0 {
		opts.PixelsPerCell = 8
	}
	if opts.MatchOverlay < 0 {
		opts.MatchOverlay = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	inputs := make([]textinput.Model, len(formFields))
	for idx, field := range formFields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = field.label
		input.CharLimit = 120
		input.Width = 32
		inputs[idx] = input
	}
	inputs[0].Focus()

	// The interpreter has no sink: commits are awaited from a command so the
	// decision reaches Update as a message.
	interpreter := gesture.New(opts.Gesture, nil)

	return Model{
		ctx:         ctx,
		client:      client,
		opts:        opts,
		logger:      logger,
		inputs:      inputs,
		interpreter: interpreter,
		hint:        interpreter.Config().HintFor(0),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelPending()
			return m, tea.Quit
		}
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenSwipe:
			return m.updateSwipeKey(msg)
		default:
			return m.updateResultKey(msg)
		}

	case tea.MouseMsg:
		if m.screen != screenSwipe {
			return m, nil
		}
		return m.updateMouse(msg)

	case sessionStartedMsg:
		m.busy = false
		m.sessionID = msg.view.SessionID
		m.progress = msg.view.Progress
		m.fieldErrors = nil
		m.status = ""
		m.screen = screenSwipe
		m.logger.Info("session started", zap.String("session_id", m.sessionID))
		return m, nil

	case sessionResetMsg:
		m.busy = false
		m.progress = msg.view.Progress
		m.outcome = quiz.Outcome{}
		m.status = ""
		m.screen = screenSwipe
		m.logger.Info("session reset", zap.String("session_id", m.sessionID))
		return m, nil

	case committedMsg:
		m.pending = nil
		m.hint = m.interpreter.Config().HintFor(0)
		if msg.err != nil {
			return m, nil
		}
		m.busy = true
		return m, m.decideCmd(msg.promptID, msg.direction.Accepted())

	case decidedMsg:
		m.busy = false
		m.progress = msg.result.Progress
		if msg.result.Match {
			m.matchShown = true
			m.overlaySeq++
			return m, overlayCmd(m.opts.MatchOverlay, m.overlaySeq)
		}
		cmd := m.afterDecision()
		return m, cmd

	case overlayDoneMsg:
		if !m.matchShown || msg.seq != m.overlaySeq {
			return m, nil
		}
		m.matchShown = false
		cmd := m.afterDecision()
		return m, cmd

	case resultMsg:
		m.busy = false
		m.outcome = msg.outcome
		m.screen = screenResult
		m.logger.Info("profile matched",
			zap.String("session_id", m.sessionID),
			zap.String("winner", string(msg.outcome.Winner)),
		)
		return m, nil

	case errMsg:
		return m.handleError(msg.err)
	}

	if m.screen == screenForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		cmd := m.focusField((m.focus + 1) % len(m.inputs))
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		return m, cmd
	case "enter":
		if m.focus < len(m.inputs)-1 {
			cmd := m.focusField(m.focus + 1)
			return m, cmd
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, m.startCmd(m.contact())
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateSwipeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.matchShown {
		m.matchShown = false
		cmd := m.afterDecision()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.cancelPending()
		return m, tea.Quit
	case "esc":
		m.interpreter.Cancel()
		m.hint = m.interpreter.Config().HintFor(0)
		return m, nil
	case "left", "h":
		return m.force(gesture.Reject)
	case "right", "l":
		return m.force(gesture.Accept)
	}
	return m, nil
}

func (m Model) updateResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r", "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.resetCmd()
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.canSwipe() {
		return m, nil
	}

	x := float64(msg.X) * m.opts.PixelsPerCell
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if err := m.interpreter.Begin(x); err != nil {
			return m, nil
		}
		m.hint = m.interpreter.Config().HintFor(0)
	case tea.MouseActionMotion:
		if m.interpreter.State() == gesture.Dragging {
			m.hint = m.interpreter.Move(x)
		}
	case tea.MouseActionRelease:
		if m.interpreter.State() != gesture.Dragging {
			return m, nil
		}
		m.interpreter.Move(x)
		if commit := m.interpreter.Release(); commit != nil {
			return m.await(commit)
		}
		m.hint = m.interpreter.Config().HintFor(0)
	}
	return m, nil
}

func (m Model) force(direction gesture.Direction) (tea.Model, tea.Cmd) {
	if !m.canSwipe() {
		return m, nil
	}
	commit, err := m.interpreter.Force(direction)
	if err != nil {
		return m, nil
	}
	return m.await(commit)
}

func (m Model) await(commit *gesture.Commit) (tea.Model, tea.Cmd) {
	m.pending = commit
	m.hint = m.interpreter.Config().HintFor(commit.Offset())
	return m, waitCommit(m.ctx, commit, m.progress.Next.ID)
}

// canSwipe is false while a decision is in flight so a swipe can never be
// sent for a prompt the server has already moved past.
func (m Model) canSwipe() bool {
	return !m.busy && !m.matchShown && m.pending == nil && m.progress.Next != nil
}

func (m Model) handleError(err error) (tea.Model, tea.Cmd) {
	m.busy = false

	var apiErr *userclient.APIError
	if m.screen == screenForm && errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		m.fieldErrors = apiErr.Fields
		m.status = "Controleer de gemarkeerde velden."
		for idx, field := range formFields {
			if _, ok := apiErr.Fields[field.name]; ok {
				cmd := m.focusField(idx)
				return m, cmd
			}
		}
		return m, nil
	}

	m.logger.Warn("quiz request failed", zap.Error(err))
	m.status = err.Error()
	return m, nil
}

func (m *Model) focusField(idx int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = idx
	return m.inputs[idx].Focus()
}

func (m *Model) afterDecision() tea.Cmd {
	if !m.progress.Complete {
		return nil
	}
	m.busy = true
	return m.resultCmd()
}

func (m *Model) cancelPending() {
	if m.pending != nil {
		m.pending.Cancel()
		m.pending = nil
	}
}

func (m Model) contact() quiz.Contact {
	value := func(idx int) string {
		return strings.TrimSpace(m.inputs[idx].Value())
	}
	return quiz.Contact{
		FirstName:   value(0),
		LastName:    value(1),
		Email:       value(2),
		PhoneNumber: value(3),
		CompanyName: value(4),
	}
}

func (m Model) startCmd(contact quiz.Contact) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		view, err := client.StartSession(ctx, contact)
		if err != nil {
			return errMsg{err}
		}
		return sessionStartedMsg{view}
	}
}

func (m Model) decideCmd(promptID int, accepted bool) tea.Cmd {
	ctx, client, sessionID := m.ctx, m.client, m.sessionID
	return func() tea.Msg {
		result, err := client.Decide(ctx, sessionID, promptID, accepted)
		if err != nil {
			return errMsg{err}
		}
		return decidedMsg{result}
	}
}

func (m Model) resetCmd() tea.Cmd {
	ctx, client, sessionID := m.ctx, m.client, m.sessionID
	return func() tea.Msg {
		view, err := client.Reset(ctx, sessionID)
		if err != nil {
			return errMsg{err}
		}
		return sessionResetMsg{view}
	}
}

func (m Model) resultCmd() tea.Cmd {
	ctx, client, sessionID := m.ctx, m.client, m.sessionID
	return func() tea.Msg {
		outcome, err := client.Result(ctx, sessionID)
		if err != nil {
			return errMsg{err}
		}
		return resultMsg{outcome}
	}
}

func waitCommit(ctx context.Context, commit *gesture.Commit, promptID int) tea.Cmd {
	return func() tea.Msg {
		direction, err := commit.Wait(ctx)
		return committedMsg{promptID: promptID, direction: direction, err: err}
	}
}

func overlayCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return overlayDoneMsg{seq: seq}
	})
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Jouw BI-match"))
	b.WriteString("\n\n")

	switch m.screen {
	case screenForm:
		b.WriteString(m.viewForm())
	case screenSwipe:
		b.WriteString(m.viewSwipe())
	default:
		b.WriteString(m.viewResult())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	for idx, field := range formFields {
		style := labelStyle
		if idx == m.focus {
			style = focusedLabelStyle
		}
		b.WriteString(style.Render(field.label))
		b.WriteString(m.inputs[idx].View())
		if message, ok := m.fieldErrors[field.name]; ok {
			b.WriteString("  ")
			b.WriteString(errorStyle.Render(message))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("tab: next field • enter: start • esc: quit"))
	return b.String()
}

func (m Model) viewSwipe() string {
	if m.matchShown {
		return matchStyle.Render("It's a match!") + "\n\n" +
			subtleStyle.Render("press any key to continue")
	}
	if m.progress.Next == nil {
		return subtleStyle.Render("Fetching your match...")
	}

	prompt := *m.progress.Next
	header := subtleStyle.Render(fmt.Sprintf("[%d/%d]", m.progress.Decided+1, m.progress.Total))

	style := cardStyle
	if m.hint.Opacity < 0.75 {
		style = fadedCardStyle
	}
	card := style.Render(prompt.Text)

	direction, strength := m.hint.Indicator, m.hint.IndicatorOpacity
	if m.pending != nil {
		direction, strength = m.pending.Direction(), 1
	}
	parts := []string{badge(direction, strength), card}
	if m.hint.RotationDeg != 0 {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("tilt %+.1f°", m.hint.RotationDeg)))
	}

	cells := int(math.Round(m.hint.OffsetX / m.opts.PixelsPerCell))
	margin := max(m.baseMargin()+cells, 0)
	body := lipgloss.NewStyle().MarginLeft(margin).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	footer := subtleStyle.Render("drag the card • ←/h: nope • →/l: like • q: quit")
	return header + "\n" + body + "\n\n" + footer
}

func (m Model) baseMargin() int {
	if m.width <= cardWidth {
		return defaultMargin
	}
	return (m.width - cardWidth) / 2
}

func badge(direction gesture.Direction, strength float64) string {
	var style lipgloss.Style
	var text string
	switch direction {
	case gesture.Accept:
		style, text = likeBadge, "LIKE"
	case gesture.Reject:
		style, text = nopeBadge, "NOPE"
	default:
		return ""
	}
	if strength < 0.5 {
		style = style.Faint(true)
	}
	return style.Render(text)
}

func (m Model) viewResult() string {
	profile := m.outcome.Profile
	title := profile.Title
	if title == "" {
		title = string(m.outcome.Winner)
	}

	var b strings.Builder
	b.WriteString(winnerStyle.Render("Jouw BI-match: " + title))
	b.WriteString("\n")
	if description := strings.TrimSpace(profile.Description); description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(cardWidth + 16).Render(description))
		b.WriteString("\n")
	}
	if tip := strings.TrimSpace(profile.Tip); tip != "" {
		b.WriteString("\nTip: ")
		b.WriteString(tip)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, ranked := range m.outcome.Ranked {
		bar := strings.Repeat("█", max(int(math.Round(ranked.Score*4)), 0))
		fmt.Fprintf(&b, "%s %s %g\n", labelStyle.Render(string(ranked.Label)), barStyle.Render(bar), ranked.Score)
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("r: start over • q: quit"))
	return b.String()
}

// Run shows the swipe client until the visitor quits or ctx is cancelled.
func Run(ctx context.Context, client Client, opts Options) error {
	program := tea.NewProgram(
		New(ctx, client, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if model, ok := final.(Model); ok {
		model.cancelPending()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
