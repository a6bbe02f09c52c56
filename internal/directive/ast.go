// Package directive parses and resolves the conditional-inclusion directives
// embedded in markdown chapters (@if_x, @elif_x, @else, @end, @file_x).
package directive

// Node is any element of a parsed document.
type Node interface {
	node()
}

// Text is literal prose between directives.
type Text struct {
	Content string
}

func (*Text) node() {}

// CodeFence is a fenced code block, delimiters included.
type CodeFence struct {
	Content string
}

func (*CodeFence) node() {}

// CodeSnippet is an inline code span, delimiters included.
type CodeSnippet struct {
	Content string
}

func (*CodeSnippet) node() {}

// FileGuard keeps the whole document only when Flag is active.
type FileGuard struct {
	Flag string
	Pos  Position
}

func (*FileGuard) node() {}

// Conditional is an if/elif/else/end block. The first branch is always an
// if, an else branch is always last.
type Conditional struct {
	Branches []Branch
}

func (*Conditional) node() {}

// Branch is one guarded body of a Conditional.
type Branch struct {
	Guard Guard
	Body  []Node
}

// GuardKind tells the head of a branch apart.
type GuardKind int

const (
	GuardIf GuardKind = iota
	GuardElif
	GuardElse
)

func (k GuardKind) String() string {
	switch k {
	case GuardIf:
		return "if"
	case GuardElif:
		return "elif"
	case GuardElse:
		return "else"
	}
	return "unknown"
}

// Guard is the condition heading a branch. Flag is empty for else.
type Guard struct {
	Kind GuardKind
	Flag string
}

// Holds reports whether the branch is live under flags.
func (g Guard) Holds(flags FlagSet) bool {
	if g.Kind == GuardElse {
		return true
	}
	return flags.Has(g.Flag)
}
