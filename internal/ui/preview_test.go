package ui

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/mdifdef/internal/directive"
)

const previewDoc = "# Setup\n@if_linux\napt install foo\n@elif_mac\nbrew install foo\n@end\n"

func newTestModel(t *testing.T, flags ...string) previewModel {
	t.Helper()
	p, err := directive.NewProcessor(directive.DefaultSentinel)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return newPreviewModel("setup.md", previewDoc, p, directive.NewFlagSet(flags...))
}

func TestPreviewInitialOutcome(t *testing.T) {
	m := newTestModel(t, "linux")
	if m.outcome.Kind != directive.Kept || m.outcome.Text != "# Setup\napt install foo\n" {
		t.Errorf("unexpected outcome %s %q", m.outcome.Kind, m.outcome.Text)
	}
	if got := m.input.Value(); got != "linux" {
		t.Errorf("expected input prefilled with flags, got %q", got)
	}
}

func TestPreviewTypingReevaluates(t *testing.T) {
	tests := []struct {
		name     string
		typed    string
		expected string
	}{
		{name: "switch to elif", typed: "mac", expected: "# Setup\nbrew install foo\n"},
		{name: "no branch", typed: "windows", expected: "# Setup\n"},
		{name: "first branch wins", typed: "mac, linux", expected: "# Setup\napt install foo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.typed)})
			if cmd == nil {
				t.Fatalf("expected a debounce command after typing")
			}
			m = updated.(previewModel)

			updated, _ = m.Update(evalMsg{query: m.input.Value()})
			m = updated.(previewModel)
			if m.outcome.Kind != directive.Kept || m.outcome.Text != tt.expected {
				t.Errorf("expected %q, got %s %q", tt.expected, m.outcome.Kind, m.outcome.Text)
			}
		})
	}
}

func TestPreviewIgnoresStaleEval(t *testing.T) {
	m := newTestModel(t, "linux")
	m.input.SetValue("mac")

	updated, _ := m.Update(evalMsg{query: "ma"})
	m = updated.(previewModel)
	if m.outcome.Text != "# Setup\napt install foo\n" {
		t.Errorf("stale tick must not re-evaluate, got %q", m.outcome.Text)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(previewModel)
	if m.outcome.Text != "# Setup\nbrew install foo\n" {
		t.Errorf("enter should re-evaluate, got %q", m.outcome.Text)
	}
}

func TestPreviewShowsDropAndError(t *testing.T) {
	p, err := directive.NewProcessor(directive.DefaultSentinel)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	m := newPreviewModel("guarded.md", "@file_beta\ncontent", p, directive.FlagSet{})
	if m.outcome.Kind != directive.Dropped {
		t.Fatalf("expected dropped, got %s", m.outcome.Kind)
	}
	if view := m.View(); !strings.Contains(view, "DROPPED") || !strings.Contains(view, "document dropped") {
		t.Errorf("view should show the drop:\n%s", view)
	}

	m = newPreviewModel("broken.md", "@if_beta\ncontent", p, directive.FlagSet{})
	if m.outcome.Kind != directive.Failed {
		t.Fatalf("expected failure, got %s", m.outcome.Kind)
	}
	if view := m.View(); !strings.Contains(view, "ERROR") || !strings.Contains(view, "unterminated") {
		t.Errorf("view should show the syntax error:\n%s", view)
	}
}

func TestPreviewResizeAndQuit(t *testing.T) {
	m := newTestModel(t, "linux")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(previewModel)
	if m.view.Width != 100 || m.view.Height != 30-chromeLines {
		t.Errorf("unexpected viewport size %dx%d", m.view.Width, m.view.Height)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(previewModel)
	if !m.quitting || cmd == nil {
		t.Fatalf("expected quit on esc")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Errorf("expected empty view after quitting")
	}
}

func TestIsCharDevice(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	if isCharDevice(f) {
		t.Errorf("regular file reported as terminal")
	}

	f.Close()
	if isCharDevice(f) {
		t.Errorf("closed file reported as terminal")
	}
}
