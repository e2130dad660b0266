package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "distracted/internal/modules/session/dto"
	apperrors "distracted/internal/platform/errors"
	"distracted/internal/ui/components"
	"distracted/internal/ui/theme"
	gameview "distracted/internal/ui/views/game"
	historyview "distracted/internal/ui/views/history"
)

const snapshotInterval = 250 * time.Millisecond

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error)
	Observe(ctx context.Context, input sessiondto.ObserveInput) (sessiondto.ObserveOutput, error)
	Dismiss(ctx context.Context) error
	Escape(ctx context.Context) error
	Recover(ctx context.Context) error
	Distract(ctx context.Context, input sessiondto.DistractInput) (sessiondto.DistractOutput, error)
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error)
	History(ctx context.Context, limit int) ([]sessiondto.ReportSummaryOutput, error)
	GetReport(ctx context.Context, sessionID string) (sessiondto.ReportOutput, error)
	Subscribe() (<-chan sessiondto.CueOutput, func())
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabGame tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Game", "History"}

// ─── async messages ──────────────────────────────────────────────────────────

type snapshotTickMsg struct{}

type snapshotMsg struct {
	snapshot sessiondto.SnapshotOutput
	err      error
}

type cueMsg struct{ cue sessiondto.CueOutput }

type actionDoneMsg struct {
	label string
	err   error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Start    key.Binding
	Reset    key.Binding
	Dismiss  key.Binding
	Escape   key.Binding
	Recover  key.Binding
	Distract key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset")),
		Dismiss:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		Escape:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "escape rabbit hole")),
		Recover:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recover memory")),
		Distract: key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "fire a distraction")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Reset, k.Distract},
		{k.Dismiss, k.Escape, k.Recover},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Options carry the chapter and seed the s key starts with.
type Options struct {
	ChapterID string
	Seed      int64
	FeedName  string
}

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; the session itself lives behind sessionPort.
type Model struct {
	session sessionPort
	opts    Options
	cues    <-chan sessiondto.CueOutput
	stop    func()

	gameView    gameview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(session sessionPort, opts Options) Model {
	cues, stop := session.Subscribe()
	return Model{
		session:     session,
		opts:        opts,
		cues:        cues,
		stop:        stop,
		gameView:    gameview.New(),
		historyView: historyview.New(session),
		activeTab:   tabGame,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready: press s to start",
	}
}

// Close ends the cue subscription.
func (m Model) Close() {
	if m.stop != nil {
		m.stop()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.historyView.Init(),
		m.snapshotCmd(),
		m.waitForCue(),
		tickSnapshot(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette owns the keyboard while open; timers keep running.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case snapshotTickMsg:
		cmds = append(cmds, m.snapshotCmd(), tickSnapshot())
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		if msg.err == nil {
			m.gameView.SetSnapshot(msg.snapshot)
		}
		return m, tea.Batch(cmds...)

	case cueMsg:
		m.gameView.AppendCue(msg.cue)
		cmds = append(cmds, m.waitForCue(), m.snapshotCmd())
		if msg.cue.Terminal() {
			m.status = msg.cue.Message
			cmds = append(cmds, m.historyView.Reload())
		}
		return m, tea.Batch(cmds...)

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.label + ": " + describe(msg.err)
		} else {
			m.status = msg.label
		}
		cmds = append(cmds, m.snapshotCmd())
		return m, tea.Batch(cmds...)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHistory && m.historyView.Filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			return m, m.startCmd(m.opts.ChapterID, m.opts.Seed)
		case "x":
			return m, m.actionCmd("reset", m.session.Reset)
		case "d":
			return m, m.actionCmd("dismissed", m.session.Dismiss)
		case "e":
			return m, m.actionCmd("escaped", m.session.Escape)
		case "r":
			return m, m.actionCmd("recovered", m.session.Recover)
		case "!":
			return m, m.distractCmd("")
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabGame:
		m.gameView, tabCmd = m.gameView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	// History results can arrive while the Game tab is showing.
	if m.activeTab != tabHistory {
		switch msg.(type) {
		case historyview.ReportsLoadedMsg, historyview.DetailLoadedMsg:
			var cmd tea.Cmd
			m.historyView, cmd = m.historyView.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.historyView.View()
	default:
		content = m.gameView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "distracted  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if snap, ok := m.gameView.Snapshot(); ok && snap.State == "running" {
		left = theme.Hot.Render("● "+gameview.Clock(snap.RemainingSeconds)) + "  " + left
	}
	if m.opts.FeedName != "" {
		left = theme.Muted.Render("["+m.opts.FeedName+"]") + " " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "start":
		chapter := m.opts.ChapterID
		seed := m.opts.Seed
		if len(parts) >= 2 {
			chapter = parts[1]
		}
		if len(parts) >= 3 {
			v, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				m.status = "invalid seed: " + parts[2]
				return m, nil
			}
			seed = v
		}
		return m, m.startCmd(chapter, seed)
	case "see":
		if len(parts) < 2 {
			m.status = "usage: see <label> [label...]"
			return m, nil
		}
		return m, m.observeCmd(parts[1:])
	case "distract":
		id := ""
		if len(parts) >= 2 {
			id = parts[1]
		}
		return m, m.distractCmd(id)
	case "dismiss":
		return m, m.actionCmd("dismissed", m.session.Dismiss)
	case "escape":
		return m, m.actionCmd("escaped", m.session.Escape)
	case "recover":
		return m, m.actionCmd("recovered", m.session.Recover)
	case "reset":
		return m, m.actionCmd("reset", m.session.Reset)
	case "history":
		m.activeTab = tabHistory
		return m, m.historyView.Reload()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.gameView, _ = m.gameView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

// describe turns engine refusals into short player-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotRunning):
		return "no session running"
	case errors.Is(err, apperrors.ErrSessionActive):
		return "a session is already running"
	case errors.Is(err, apperrors.ErrNoActiveDistraction):
		return "nothing to clear"
	case errors.Is(err, apperrors.ErrWrongInterruption):
		return "that does not work on this distraction"
	case errors.Is(err, apperrors.ErrRecoveryNotReady):
		return "wait for the recovery prompt"
	default:
		return err.Error()
	}
}

// ─── async commands ──────────────────────────────────────────────────────────

func tickSnapshot() tea.Cmd {
	return tea.Tick(snapshotInterval, func(time.Time) tea.Msg { return snapshotTickMsg{} })
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Snapshot(context.Background())
		return snapshotMsg{snapshot: snap, err: err}
	}
}

func (m Model) waitForCue() tea.Cmd {
	ch := m.cues
	return func() tea.Msg {
		cue, ok := <-ch
		if !ok {
			return nil
		}
		return cueMsg{cue: cue}
	}
}

func (m Model) startCmd(chapterID string, seed int64) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Start(context.Background(), sessiondto.StartInput{ChapterID: chapterID, Seed: seed})
		if err != nil {
			return actionDoneMsg{label: "start", err: err}
		}
		return actionDoneMsg{label: fmt.Sprintf("started %s (%d tasks)", snap.ChapterTitle, snap.TaskCount)}
	}
}

func (m Model) observeCmd(labels []string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Observe(context.Background(), sessiondto.ObserveInput{Labels: labels})
		if err != nil {
			return actionDoneMsg{label: "see", err: err}
		}
		return actionDoneMsg{label: "saw " + strings.Join(labels, ", ") + ": " + out.Result}
	}
}

func (m Model) distractCmd(id string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Distract(context.Background(), sessiondto.DistractInput{DistractionID: id})
		if err != nil {
			return actionDoneMsg{label: "distract", err: err}
		}
		if !out.Fired {
			return actionDoneMsg{label: "distraction held back: one is already active"}
		}
		return actionDoneMsg{label: "distraction: " + out.Distraction.Title}
	}
}

func (m Model) actionCmd(label string, action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{label: label, err: action(context.Background())}
	}
}
