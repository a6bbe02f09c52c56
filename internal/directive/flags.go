package directive

import (
	"sort"
	"strings"
	"unicode"
)

// FlagSet is an immutable set of active flags. The zero value is empty.
type FlagSet struct {
	m map[string]struct{}
}

// NewFlagSet builds a set from flags, skipping empty names.
func NewFlagSet(flags ...string) FlagSet {
	m := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		if f != "" {
			m[f] = struct{}{}
		}
	}
	return FlagSet{m: m}
}

// Has reports whether flag is active. Matching is case-sensitive.
func (s FlagSet) Has(flag string) bool {
	_, ok := s.m[flag]
	return ok
}

// Len returns the number of active flags.
func (s FlagSet) Len() int {
	return len(s.m)
}

// Union returns a new set holding the flags of both sets.
func (s FlagSet) Union(other FlagSet) FlagSet {
	m := make(map[string]struct{}, len(s.m)+len(other.m))
	for f := range s.m {
		m[f] = struct{}{}
	}
	for f := range other.m {
		m[f] = struct{}{}
	}
	return FlagSet{m: m}
}

// Sorted returns the flags in lexical order.
func (s FlagSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for f := range s.m {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (s FlagSet) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

// SplitFlags splits a flag list separated by whitespace and/or commas, the
// format of flags files and of the -e option.
func SplitFlags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
