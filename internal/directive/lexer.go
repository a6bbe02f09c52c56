package directive

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The lexer splits a document into plain text, opaque code regions and
// directive tokens. Code regions are recognized before directives, so a
// directive written inside backticks is never seen as one.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokText
	tokFence   // ``` ... ``` or ~~~ ... ~~~
	tokSnippet // ` ... ` or `` ... ``
	tokIf
	tokElif
	tokElse
	tokEnd
	tokFile
)

const fenceMin = 3

type token struct {
	kind tokenKind
	val  string // raw source of the token; for directives, without trailing whitespace
	flag string // identifier of if/elif/file
	pos  int    // byte offset in source
	end  int    // offset just past the token and any whitespace it consumed
}

var keywords = []struct {
	name      string
	kind      tokenKind
	takesFlag bool
}{
	{"elif", tokElif, true},
	{"else", tokElse, false},
	{"end", tokEnd, false},
	{"file", tokFile, true},
	{"if", tokIf, true},
}

type wordClass int

const (
	wordDirective wordClass = iota
	wordKeywordLike
	wordUnknown
)

type lexer struct {
	src      string
	pos      int
	sentinel byte
}

func newLexer(src string, sentinel byte) *lexer {
	return &lexer{src: src, sentinel: sentinel}
}

// next returns the next token. Text is emitted up to, not including, the
// next code region or directive.
func (l *lexer) next() (token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		tok, width, err := l.scanAt(l.pos)
		if err != nil {
			return token{}, err
		}
		if tok == nil {
			l.pos += width
			continue
		}
		if l.pos > start {
			return token{kind: tokText, val: l.src[start:l.pos], pos: start, end: l.pos}, nil
		}
		l.pos = tok.end
		return *tok, nil
	}
	if l.pos > start {
		return token{kind: tokText, val: l.src[start:l.pos], pos: start, end: l.pos}, nil
	}
	return token{kind: tokEOF, pos: l.pos, end: l.pos}, nil
}

// scanAt inspects the source at i. It returns a token when one starts there,
// otherwise the number of bytes that belong to plain text.
func (l *lexer) scanAt(i int) (*token, int, error) {
	c := l.src[i]
	switch {
	case c == '`' || c == '~':
		n := l.runLength(i, c)
		if n >= fenceMin {
			end := l.closeFence(i+n, c, n)
			return &token{kind: tokFence, val: l.src[i:end], pos: i, end: end}, 0, nil
		}
		if c == '`' {
			if end, ok := l.closeSnippet(i+n, n); ok {
				return &token{kind: tokSnippet, val: l.src[i:end], pos: i, end: end}, 0, nil
			}
		}
		return nil, n, nil
	case c == l.sentinel:
		return l.scanDirective(i)
	}
	return nil, 1, nil
}

func (l *lexer) scanDirective(i int) (*token, int, error) {
	j := i + 1
	for j < len(l.src) && isWordByte(l.src[j]) {
		j++
	}
	word := l.src[i+1 : j]
	if word == "" {
		return nil, 1, nil
	}

	kind, flag, class := classifyWord(word)
	switch class {
	case wordDirective:
		return &token{kind: kind, val: l.src[i:j], flag: flag, pos: i, end: skipSpace(l.src, j)}, 0, nil
	case wordKeywordLike:
		// Left in the text for the misuse scan.
		return nil, j - i, nil
	}
	// Mid-word sentinels, as in e-mail addresses, are prose.
	if i > 0 && isWordByte(l.src[i-1]) {
		return nil, 1, nil
	}
	return nil, 0, l.errorf(i, "unknown directive %q", l.src[i:j])
}

// classifyWord matches the keyword case-insensitively and keeps the
// identifier exactly as written.
func classifyWord(word string) (tokenKind, string, wordClass) {
	lower := strings.ToLower(word)
	like := false
	for _, kw := range keywords {
		if !strings.HasPrefix(lower, kw.name) {
			continue
		}
		like = true
		rest := word[len(kw.name):]
		if !kw.takesFlag {
			if rest == "" {
				return kw.kind, "", wordDirective
			}
			continue
		}
		if len(rest) > 1 && rest[0] == '_' {
			return kw.kind, rest[1:], wordDirective
		}
	}
	if like {
		return tokEOF, "", wordKeywordLike
	}
	return tokEOF, "", wordUnknown
}

func (l *lexer) runLength(i int, c byte) int {
	n := 0
	for i+n < len(l.src) && l.src[i+n] == c {
		n++
	}
	return n
}

// closeFence returns the end of a fence opened by n times c. An unclosed
// fence runs to the end of the document.
func (l *lexer) closeFence(from int, c byte, n int) int {
	for j := from; j < len(l.src); {
		if l.src[j] != c {
			j++
			continue
		}
		run := l.runLength(j, c)
		if run >= n {
			return j + run
		}
		j += run
	}
	return len(l.src)
}

// closeSnippet finds a backtick run of exactly length n.
func (l *lexer) closeSnippet(from int, n int) (int, bool) {
	for j := from; j < len(l.src); {
		if l.src[j] != '`' {
			j++
			continue
		}
		run := l.runLength(j, '`')
		if run == n {
			return j + run, true
		}
		j += run
	}
	return 0, false
}

func (l *lexer) position(offset int) Position {
	before := l.src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return Position{Line: line, Column: col}
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Pos: l.position(offset), Msg: fmt.Sprintf(format, args...)}
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
