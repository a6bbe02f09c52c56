package directive

import (
	"fmt"
	"strings"
)

// DefaultSentinel marks the start of a directive.
const DefaultSentinel byte = '@'

// ============================================================================
// Outcome
// ============================================================================

// Kind is the tag of an Outcome.
type Kind int

const (
	// Kept means the document survives with Outcome.Text as its content.
	Kept Kind = iota
	// Dropped means the whole document must be omitted.
	Dropped
	// Failed means the directive structure is malformed; see Outcome.Err.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Kept:
		return "kept"
	case Dropped:
		return "dropped"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Outcome is the result of evaluating one document.
type Outcome struct {
	Kind   Kind
	Text   string // resolved document, set when Kept
	Reason string // why the document was dropped
	Err    error  // *SyntaxError, set when Failed
}

// ============================================================================
// Processor
// ============================================================================

// Processor parses and evaluates documents. It is immutable once built and
// safe for concurrent use.
type Processor struct {
	sentinel byte
	misuse   *misuseScanner
}

// NewProcessor creates a processor for the given sentinel with the misuse
// scan enabled.
func NewProcessor(sentinel byte) (*Processor, error) {
	if !validSentinel(sentinel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSentinel, sentinel)
	}
	return &Processor{
		sentinel: sentinel,
		misuse:   newMisuseScanner(sentinel),
	}, nil
}

// WithMisuseCheck returns a copy of the processor with the misuse scan
// switched on or off.
func (p *Processor) WithMisuseCheck(enabled bool) *Processor {
	cp := *p
	cp.misuse = nil
	if enabled {
		cp.misuse = newMisuseScanner(p.sentinel)
	}
	return &cp
}

// Sentinel returns the directive marker.
func (p *Processor) Sentinel() byte {
	return p.sentinel
}

// Parse builds the node tree of doc.
func (p *Processor) Parse(doc string) ([]Node, error) {
	return parse(doc, p.sentinel)
}

// Evaluate parses doc and resolves it against flags.
func (p *Processor) Evaluate(doc string, flags FlagSet) Outcome {
	tree, err := p.Parse(doc)
	if err != nil {
		return Outcome{Kind: Failed, Err: err}
	}
	return p.EvaluateTree(tree, flags)
}

// EvaluateTree resolves an already parsed tree against flags.
func (p *Processor) EvaluateTree(tree []Node, flags FlagSet) Outcome {
	e := &evaluator{flags: flags, misuse: p.misuse}
	if e.evalNodes(tree) == verdictDrop {
		return Outcome{Kind: Dropped, Reason: e.reason}
	}
	return Outcome{Kind: Kept, Text: e.out.String()}
}

var defaultProcessor = mustProcessor(DefaultSentinel)

func mustProcessor(sentinel byte) *Processor {
	p, err := NewProcessor(sentinel)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses doc with the default sentinel.
func Parse(doc string) ([]Node, error) {
	return defaultProcessor.Parse(doc)
}

// Evaluate resolves doc with the default sentinel and the misuse scan on.
func Evaluate(doc string, flags FlagSet) Outcome {
	return defaultProcessor.Evaluate(doc, flags)
}

func validSentinel(c byte) bool {
	if c <= ' ' || c >= 0x7f {
		return false
	}
	return !isWordByte(c) && c != '`' && c != '~'
}

// ============================================================================
// Evaluation
// ============================================================================

type verdict int

const (
	verdictKeep verdict = iota
	verdictDrop
)

type evaluator struct {
	flags  FlagSet
	misuse *misuseScanner // nil disables the scan
	out    strings.Builder
	reason string
}

func (e *evaluator) evalNodes(nodes []Node) verdict {
	for _, n := range nodes {
		if e.evalNode(n) == verdictDrop {
			return verdictDrop
		}
	}
	return verdictKeep
}

func (e *evaluator) evalNode(n Node) verdict {
	switch n := n.(type) {
	case *Text:
		if e.misuse != nil {
			if hit, ok := e.misuse.find(n.Content); ok {
				e.reason = fmt.Sprintf("unescaped directive-like text %q", hit)
				return verdictDrop
			}
		}
		e.out.WriteString(n.Content)
	case *CodeFence:
		e.out.WriteString(n.Content)
	case *CodeSnippet:
		e.out.WriteString(n.Content)
	case *FileGuard:
		if !e.flags.Has(n.Flag) {
			e.reason = fmt.Sprintf("file guard %q at %s is not active", n.Flag, n.Pos)
			return verdictDrop
		}
	case *Conditional:
		return e.evalConditional(n)
	}
	return verdictKeep
}

// evalConditional scans the guards in order and evaluates only the first
// live body. With no live branch the block produces nothing.
func (e *evaluator) evalConditional(c *Conditional) verdict {
	for _, b := range c.Branches {
		if b.Guard.Holds(e.flags) {
			return e.evalNodes(b.Body)
		}
	}
	return verdictKeep
}
