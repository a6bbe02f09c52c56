package manual

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/mdifdef/internal/directive"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// File Reader Interface
// ============================================================================

// FileReader defines the interface for loading documents
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// osReader implements FileReader on the local filesystem
type osReader struct{}

func (osReader) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Evaluator resolves one document against a flag set
type Evaluator interface {
	Evaluate(doc string, flags directive.FlagSet) directive.Outcome
}

// ============================================================================
// Runner
// ============================================================================

// Report is the outcome for one file
type Report struct {
	File   string `json:"file" yaml:"file"`
	Status string `json:"status" yaml:"status"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Runner evaluates files independently and reports their outcomes
type Runner struct {
	eval   Evaluator
	flags  directive.FlagSet
	reader FileReader
	limit  int
}

// NewRunner creates a runner evaluating against flags
func NewRunner(eval Evaluator, flags directive.FlagSet) *Runner {
	return &Runner{
		eval:   eval,
		flags:  flags,
		reader: osReader{},
		limit:  runtime.NumCPU(),
	}
}

// WithReader sets a custom file reader (useful for testing)
func (r *Runner) WithReader(reader FileReader) *Runner {
	r.reader = reader
	return r
}

// WithLimit caps the number of files evaluated at once
func (r *Runner) WithLimit(n int) *Runner {
	if n > 0 {
		r.limit = n
	}
	return r
}

// Flags returns the flag set files are evaluated against
func (r *Runner) Flags() directive.FlagSet {
	return r.flags
}

// Run evaluates every path. Reports come back in argument order. A file
// that cannot be read stops the run; a syntax error is only reported.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := r.reader.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			reports[i] = newReport(path, r.eval.Evaluate(string(data), r.flags))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newReport(path string, out directive.Outcome) Report {
	rep := Report{File: path, Status: out.Kind.String()}
	switch out.Kind {
	case directive.Kept:
		rep.Output = out.Text
	case directive.Dropped:
		rep.Reason = out.Reason
	case directive.Failed:
		rep.Error = out.Err.Error()
	}
	return rep
}

// AnyFailed reports whether a file had malformed directives
func AnyFailed(reports []Report) bool {
	for _, rep := range reports {
		if rep.Status == directive.Failed.String() {
			return true
		}
	}
	return false
}

// ============================================================================
// Output Handling
// ============================================================================

// OutputFormat represents how reports are written
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", s)
}

var (
	fileStyle    = lipgloss.NewStyle().Bold(true)
	keptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	droppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Write prints reports in the given format
func Write(w io.Writer, reports []Report, flags directive.FlagSet, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default: // text
		return writeText(w, reports, flags)
	}
}

func writeText(w io.Writer, reports []Report, flags directive.FlagSet) error {
	if _, err := fmt.Fprintln(w, dimStyle.Render("Using flags "+flags.String())); err != nil {
		return err
	}
	for _, rep := range reports {
		var status string
		switch rep.Status {
		case directive.Kept.String():
			status = keptStyle.Render(rep.Status)
		case directive.Dropped.String():
			status = droppedStyle.Render(rep.Status + ": " + rep.Reason)
		default:
			status = errorStyle.Render(rep.Status + ": " + rep.Error)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", fileStyle.Render(rep.File), status); err != nil {
			return err
		}
		if rep.Output != "" {
			if _, err := fmt.Fprintln(w, rep.Output); err != nil {
				return err
			}
		}
	}
	return nil
}
