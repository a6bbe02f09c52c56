package book

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gubarz/mdifdef/internal/directive"
)

// Evaluator resolves one chapter's content.
type Evaluator interface {
	Evaluate(doc string, flags directive.FlagSet) directive.Outcome
}

// Walker applies an Evaluator to every chapter of a book.
type Walker struct {
	eval   Evaluator
	flags  directive.FlagSet
	logger *slog.Logger
}

// NewWalker creates a walker resolving chapters against flags
func NewWalker(eval Evaluator, flags directive.FlagSet) *Walker {
	return &Walker{
		eval:   eval,
		flags:  flags,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used to report dropped chapters
func (w *Walker) WithLogger(l *slog.Logger) *Walker {
	w.logger = l
	return w
}

// Run rewrites the book in place. Dropped chapters disappear together with
// their sub-chapters; a malformed chapter aborts the run.
func (w *Walker) Run(b *Book) error {
	items, err := w.walk(b.Sections)
	if err != nil {
		return err
	}
	b.Sections = items
	return nil
}

func (w *Walker) walk(items []Item) ([]Item, error) {
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Chapter == nil {
			kept = append(kept, it)
			continue
		}
		ok, err := w.chapter(it.Chapter)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, it)
		}
	}
	return kept, nil
}

func (w *Walker) chapter(ch *Chapter) (bool, error) {
	out := w.eval.Evaluate(ch.Content, w.flags)
	switch out.Kind {
	case directive.Failed:
		return false, fmt.Errorf("chapter %q (%s): %w", ch.Name, ch.Path(), out.Err)
	case directive.Dropped:
		w.logger.Info("dropping chapter", "chapter", ch.Name, "path", ch.Path(), "reason", out.Reason)
		return false, nil
	}

	ch.Content = out.Text
	sub, err := w.walk(ch.SubItems)
	if err != nil {
		return false, err
	}
	ch.SubItems = sub
	return true, nil
}
