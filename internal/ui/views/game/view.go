package game

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "distracted/internal/modules/session/dto"
	"distracted/internal/ui/theme"
)

const maxLogLines = 200

// Model renders the heads-up display: meters, the current task, the active
// interruption and a scrolling cue log. It holds no session state of its
// own; the app model feeds it snapshots and cues.
type Model struct {
	snapshot sessiondto.SnapshotOutput
	hasSnap  bool
	lines    []string
	log      viewport.Model
	width    int
	height   int
}

func New() Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text)
	return Model{log: vp}
}

func (m *Model) SetSnapshot(s sessiondto.SnapshotOutput) {
	m.snapshot = s
	m.hasSnap = s.SessionID != ""
}

func (m Model) Snapshot() (sessiondto.SnapshotOutput, bool) {
	return m.snapshot, m.hasSnap
}

// AppendCue adds one line to the cue log and keeps it scrolled to the end.
func (m *Model) AppendCue(cue sessiondto.CueOutput) {
	stamp := theme.Muted.Render(Clock(cue.ElapsedSeconds))
	m.lines = append(m.lines, stamp+" "+cueStyle(cue.Kind).Render(cue.Message))
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	leftW := m.width / 2
	rightW := m.width - leftW

	left := theme.Pane.Width(max(leftW-4, 10)).Render(m.renderHUD())
	activeStyle := theme.Pane
	if m.snapshot.Active != nil {
		activeStyle = theme.PaneAlert
	}
	active := activeStyle.Width(max(rightW-4, 10)).Render(m.renderActive())
	logPane := theme.Pane.Width(max(rightW-4, 10)).Render(theme.Title.Render("Cues") + "\n" + m.log.View())
	right := lipgloss.JoinVertical(lipgloss.Left, active, logPane)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) resize() {
	rightW := m.width - m.width/2
	m.log.Width = max(rightW-6, 10)
	m.log.Height = max(m.height-14, 3)
}

func (m Model) renderHUD() string {
	s := m.snapshot
	var sb strings.Builder
	if !m.hasSnap {
		sb.WriteString(theme.Title.Render("No session") + "\n\n")
		sb.WriteString(theme.Muted.Render("s: start  : palette  ?: help"))
		return sb.String()
	}
	title := s.ChapterTitle
	if title == "" {
		title = s.ChapterID
	}
	sb.WriteString(theme.Title.Render(title) + "  " + stateStyle(s.State).Render(strings.ToUpper(s.State)) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		theme.Muted.Render("elapsed"), Clock(s.ElapsedSeconds),
		theme.Muted.Render("left"), Clock(s.RemainingSeconds)))
	sb.WriteString(fmt.Sprintf("%s %s %3d\n", theme.Muted.Render("score"), theme.Level(s.Score).Render(Bar(s.Score, 24)), s.Score))
	sb.WriteString(fmt.Sprintf("%s %s %3d\n\n", theme.Muted.Render("focus"), theme.Level(s.Focus).Render(Bar(s.Focus, 24)), s.Focus))
	if s.Task != nil && s.State == "running" {
		sb.WriteString(theme.Hot.Render(fmt.Sprintf("Task %d/%d", s.TaskIndex+1, s.TaskCount)) + "\n")
		sb.WriteString(s.Task.Title + "\n")
		sb.WriteString(theme.Muted.Render("look for ") + s.Task.TargetLabel + "\n")
		sb.WriteString(theme.Level(s.TaskRemainingSeconds*5).Render(fmt.Sprintf("%ds left", s.TaskRemainingSeconds)) + "\n\n")
	}
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("tasks %d done, %d timed out", s.TasksCompleted, s.TasksSkipped)) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("distractions %d fired, %d resolved, %d held back", s.Triggered, s.Resolved, s.Suppressed)))
	return sb.String()
}

func (m Model) renderActive() string {
	a := m.snapshot.Active
	if a == nil {
		return theme.Good.Render("No interruption")
	}
	d := a.Distraction
	var sb strings.Builder
	sb.WriteString(theme.Bad.Render(d.Title) + "  " + theme.Muted.Render(d.Category) + "\n")
	if d.Description != "" {
		sb.WriteString(d.Description + "\n")
	}
	switch a.Kind {
	case "rabbit-hole":
		sb.WriteString(theme.Warn.Render(fmt.Sprintf("Rabbit hole: escape within %ds", a.ExpiresInSeconds)) + "\n")
		sb.WriteString(theme.Muted.Render("e: escape"))
	case "working-memory-failure":
		sb.WriteString(theme.Warn.Render("Working memory: "+a.Stage) + "\n")
		if a.Stage == "recovery" {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("r: recover (%ds)", a.ExpiresInSeconds)))
		} else {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("next stage in %ds", a.StageEndsInSeconds)))
		}
	default:
		sb.WriteString(theme.Muted.Render("show ") + d.TargetLabel + theme.Muted.Render(" or press d to dismiss"))
	}
	return sb.String()
}

// Bar draws a 0..100 meter.
func Bar(value, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	filled := value * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Clock formats seconds as m:ss.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func stateStyle(state string) lipgloss.Style {
	switch state {
	case "running":
		return theme.Good
	case "failed":
		return theme.Bad
	case "completed":
		return theme.Title
	default:
		return theme.Muted
	}
}

func cueStyle(kind string) lipgloss.Style {
	switch kind {
	case "task-completed", "distraction-resolved":
		return theme.Good
	case "task-timeout", "score-depleted":
		return theme.Bad
	case "distraction-activated", "distraction-stage":
		return theme.Warn
	case "session-started", "session-completed":
		return theme.Title
	default:
		return lipgloss.NewStyle().Foreground(theme.Text)
	}
}
