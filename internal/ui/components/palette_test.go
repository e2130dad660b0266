package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestExpandPaletteInput(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"":             "",
		"  see cup  ":  "see cup",
		"esc":          "escape",
		"rec":          "recover",
		"hist":         "history",
		"st kitchen 4": "start kitchen 4",
		"di":           "di",
		"re":           "re",
		"bogus x":      "bogus x",
	}
	for in, want := range cases {
		if got := ExpandPaletteInput(in); got != want {
			t.Fatalf("expand(%q) = %q want %q", in, got, want)
		}
	}
}

func TestMatchPaletteCommandsUsesFirstWord(t *testing.T) {
	t.Parallel()
	if got := MatchPaletteCommands(""); len(got) != len(PaletteCommands) {
		t.Fatalf("empty input must list every command, got %d", len(got))
	}
	got := MatchPaletteCommands("DIS phone")
	if len(got) != 2 || got[0].Name != "distract" || got[1].Name != "dismiss" {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestPaletteEnterSubmitsExpandedLine(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("rec")
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() {
		t.Fatalf("palette must close on enter")
	}
	msg, ok := cmd().(PaletteSubmitMsg)
	if !ok || msg.Input != "recover" {
		t.Fatalf("unexpected submit: %#v", msg)
	}
}

func TestPaletteTabCompletesUniqueCommand(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("hi")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := p.input.Value(); got != "history " {
		t.Fatalf("tab completion = %q", got)
	}
	p.input.SetValue("d")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := p.input.Value(); got != "d" {
		t.Fatalf("ambiguous prefix must not complete, got %q", got)
	}
}

func TestPaletteViewListsUsage(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("see")
	if view := p.View(); !strings.Contains(view, "see <label> [label...]") {
		t.Fatalf("view must show usage:\n%s", view)
	}
	p.input.SetValue("zzz")
	if view := p.View(); !strings.Contains(view, "no such command") {
		t.Fatalf("view must report no match:\n%s", view)
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Visible() {
		t.Fatalf("palette must close on esc")
	}
	if _, ok := cmd().(PaletteCancelMsg); !ok {
		t.Fatalf("esc must emit a cancel message")
	}
}
