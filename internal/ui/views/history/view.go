package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "distracted/internal/modules/session/dto"
	"distracted/internal/ui/theme"
)

const pageSize = 100

type HistoryPort interface {
	History(ctx context.Context, limit int) ([]sessiondto.ReportSummaryOutput, error)
	GetReport(ctx context.Context, sessionID string) (sessiondto.ReportOutput, error)
}

type ReportsLoadedMsg struct {
	Reports []sessiondto.ReportSummaryOutput
	Err     error
}

type DetailLoadedMsg struct {
	Report sessiondto.ReportOutput
	Err    error
}

type reportItem struct {
	summary sessiondto.ReportSummaryOutput
}

func (i reportItem) Title() string {
	return fmt.Sprintf("%s  %s", i.summary.StartedAt.Local().Format("2006-01-02 15:04"), i.summary.ChapterTitle)
}

func (i reportItem) Description() string {
	return fmt.Sprintf("%s  score %d  focus %d  %d/%d tasks", i.summary.State, i.summary.FinalScore, i.summary.FinalFocus,
		i.summary.TasksCompleted, i.summary.TasksCompleted+i.summary.TasksSkipped)
}

func (i reportItem) FilterValue() string { return i.summary.ChapterTitle + " " + i.summary.State }

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  sessiondto.ReportOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the saved reports again, newest first.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return ReportsLoadedMsg{}
		}
		reports, err := m.port.History(context.Background(), pageSize)
		return ReportsLoadedMsg{Reports: reports, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ReportsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "History: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "History"
		items := make([]list.Item, len(msg.Reports))
		for i, r := range msg.Reports {
			items[i] = reportItem{summary: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Reports) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Reports[0].SessionID))
		} else {
			m.detail = sessiondto.ReportOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Report
			m.preview.SetContent(m.renderDetail())
			m.preview.GotoTop()
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(reportItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.summary.SessionID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is open.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	r := m.detail
	if r.SessionID == "" {
		return theme.Muted.Render("No saved sessions yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.ChapterTitle) + "  " + r.State + "\n\n")
	sb.WriteString(theme.Muted.Render("id:      ") + r.SessionID + "\n")
	sb.WriteString(theme.Muted.Render("seed:    ") + fmt.Sprint(r.Seed) + "\n")
	sb.WriteString(theme.Muted.Render("started: ") + r.StartedAt.Local().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(fmt.Sprintf("%s%ds\n", theme.Muted.Render("played:  "), r.ElapsedSeconds))
	sb.WriteString(fmt.Sprintf("%sscore %d, focus %d\n", theme.Muted.Render("final:   "), r.FinalScore, r.FinalFocus))
	sb.WriteString(fmt.Sprintf("%s%d done, %d timed out\n", theme.Muted.Render("tasks:   "), r.TasksCompleted, r.TasksSkipped))
	sb.WriteString(fmt.Sprintf("%s%d fired, %d resolved, %d held back\n",
		theme.Muted.Render("distract:"), r.DistractionsTriggered, r.DistractionsResolved, r.DistractionsSuppressed))
	if r.NotePath != "" {
		sb.WriteString(theme.Muted.Render("note:    ") + r.NotePath + "\n")
	}
	if len(r.Tasks) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Tasks") + "\n")
		for _, t := range r.Tasks {
			mark := theme.Good.Render("✓")
			if t.Outcome != "completed" {
				mark = theme.Bad.Render("✗")
			}
			sb.WriteString(fmt.Sprintf("%s %s (%s) %.1fs\n", mark, t.Title, t.TargetLabel, t.TookSeconds))
		}
	}
	if len(r.Distractions) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Distractions") + "\n")
		for _, d := range r.Distractions {
			sb.WriteString(fmt.Sprintf("%s %s  %s\n", d.Title, theme.Muted.Render(d.Source), d.Resolution))
		}
	}
	return sb.String()
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		report, err := m.port.GetReport(context.Background(), id)
		return DetailLoadedMsg{Report: report, Err: err}
	}
}
