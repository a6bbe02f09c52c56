package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/mdifdef/internal/directive"
)

// Evaluator resolves a document against a flag set
type Evaluator interface {
	Evaluate(doc string, flags directive.FlagSet) directive.Outcome
}

// chromeLines is the number of lines around the viewport: header, input,
// two dividers and the help line.
const chromeLines = 5

// ============================================================================
// Debounce
// ============================================================================

// evalMsg re-evaluates the document once typing pauses
type evalMsg struct {
	query string
}

// debounceEval returns a command that triggers evaluation after a delay
func debounceEval(query string) tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return evalMsg{query: query}
	})
}

// ============================================================================
// Preview Model
// ============================================================================

// previewModel shows one document resolved against an editable flag set
type previewModel struct {
	width    int
	height   int
	input    textinput.Model
	view     viewport.Model
	quitting bool

	file    string
	doc     string
	eval    Evaluator
	flags   directive.FlagSet
	outcome directive.Outcome
}

func newPreviewModel(file, doc string, eval Evaluator, flags directive.FlagSet) previewModel {
	ti := textinput.New()
	ti.Prompt = "flags> "
	ti.Placeholder = "comma or space separated"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50
	ti.SetValue(strings.Join(flags.Sorted(), ", "))

	m := previewModel{
		input: ti,
		view:  viewport.New(80, 24-chromeLines),
		file:  file,
		doc:   doc,
		eval:  eval,
	}
	m.refresh()
	return m
}

// refresh parses the input into a flag set and re-evaluates the document
func (m *previewModel) refresh() {
	m.flags = directive.NewFlagSet(directive.SplitFlags(m.input.Value())...)
	m.outcome = m.eval.Evaluate(m.doc, m.flags)
	m.view.SetContent(renderOutcome(m.outcome))
}

// Init implements tea.Model
func (m previewModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(msg.Width-lipgloss.Width(m.input.Prompt)-2, 10)
		m.view.Width = msg.Width
		m.view.Height = maxInt(msg.Height-chromeLines, 1)
		return m, nil

	case evalMsg:
		// Stale ticks from earlier keystrokes are ignored.
		if msg.query == m.input.Value() {
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.refresh()
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			return m, tea.Batch(cmd, debounceEval(m.input.Value()))
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m previewModel) View() string {
	if m.quitting {
		return ""
	}
	width := maxInt(m.width, 40)
	divider := styles.Divider.Render(strings.Repeat("─", width))

	var b strings.Builder
	b.WriteString(styles.Title.Render(m.file))
	b.WriteString("  ")
	b.WriteString(renderStatus(m.outcome.Kind))
	b.WriteString("  ")
	b.WriteString(styles.Flags.Render(m.flags.String()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %3.f%% • ↑/↓ scroll • Enter evaluate • ESC exit", m.view.ScrollPercent()*100)))
	return b.String()
}

func renderStatus(kind directive.Kind) string {
	switch kind {
	case directive.Kept:
		return styles.Kept.Render("KEPT")
	case directive.Dropped:
		return styles.Dropped.Render("DROPPED")
	default:
		return styles.Error.Render("ERROR")
	}
}

// renderOutcome is the viewport content for an outcome
func renderOutcome(out directive.Outcome) string {
	switch out.Kind {
	case directive.Kept:
		return out.Text
	case directive.Dropped:
		return styles.Border.Render(styles.Dropped.Render("document dropped") + "\n" + out.Reason)
	default:
		return styles.Border.Render(styles.Error.Render("syntax error") + "\n" + out.Err.Error())
	}
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty so the final flag list can still be captured from stdout
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if !isCharDevice(os.Stdout) {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// isCharDevice reports whether f is a terminal. A file that cannot be
// stat'ed counts as redirected.
func isCharDevice(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil || fileInfo == nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}

// RunPreview opens the preview for one document. When the user leaves, the
// final flag list is printed to stdout in flags-file format.
func RunPreview(file, doc string, eval Evaluator, flags directive.FlagSet) error {
	m := newPreviewModel(file, doc, eval, flags)

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // Refresh after getTTY sets up the renderer
	m.refresh()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()

	if err != nil {
		return err
	}

	result := finalModel.(previewModel)
	fmt.Println(strings.Join(result.flags.Sorted(), ","))
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
