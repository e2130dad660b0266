package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"distracted/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed line. The first word is the command
// name, already expanded when it was typed as a unique prefix.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the player presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle   = lipgloss.NewStyle().Foreground(theme.Text)
	summaryStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

const maxPaletteMatches = 5

// PaletteCommand describes one game action reachable from the palette.
type PaletteCommand struct {
	Name    string
	Args    string
	Summary string
}

func (c PaletteCommand) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// PaletteCommands must stay in sync with the switch in app/model.go
// executePalette.
var PaletteCommands = []PaletteCommand{
	{Name: "start", Args: "[chapter] [seed]", Summary: "begin a session"},
	{Name: "see", Args: "<label> [label...]", Summary: "report labels as recognised"},
	{Name: "distract", Args: "[distraction-id]", Summary: "fire a distraction now"},
	{Name: "dismiss", Summary: "wave off an ordinary distraction"},
	{Name: "escape", Summary: "climb out of a rabbit hole"},
	{Name: "recover", Summary: "answer the working memory prompt"},
	{Name: "reset", Summary: "abandon the session and stop every timer"},
	{Name: "history", Summary: "show saved sessions"},
}

// MatchPaletteCommands returns the commands whose name starts with the first
// word of input, all of them for an empty input.
func MatchPaletteCommands(input string) []PaletteCommand {
	word := firstWord(input)
	var out []PaletteCommand
	for _, c := range PaletteCommands {
		if word == "" || strings.HasPrefix(c.Name, word) {
			out = append(out, c)
		}
	}
	return out
}

// ExpandPaletteInput replaces a unique command prefix with the full name and
// leaves anything else untouched.
func ExpandPaletteInput(input string) string {
	input = strings.TrimSpace(input)
	word := firstWord(input)
	if word == "" {
		return input
	}
	matches := MatchPaletteCommands(word)
	if len(matches) != 1 {
		return input
	}
	fields := strings.Fields(input)
	return strings.Join(append([]string{matches[0].Name}, fields[1:]...), " ")
}

func firstWord(input string) string {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Palette is the ':' overlay for typed game commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "start, see cup, dismiss…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty palette and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// Update handles esc, enter and tab; tab completes a unique command name.
func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := ExpandPaletteInput(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "tab":
			if matches := MatchPaletteCommands(p.input.Value()); len(matches) == 1 && !strings.Contains(strings.TrimSpace(p.input.Value()), " ") {
				p.input.SetValue(matches[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matches := MatchPaletteCommands(p.input.Value())
	if len(matches) > maxPaletteMatches {
		matches = matches[:maxPaletteMatches]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matches) == 0 {
		sb.WriteString("\n" + summaryStyle.Render("  no such command") + "\n")
	} else {
		sb.WriteString("\n")
		for _, c := range matches {
			sb.WriteString("  " + usageStyle.Render(c.Usage()) + summaryStyle.Render("  "+c.Summary) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
