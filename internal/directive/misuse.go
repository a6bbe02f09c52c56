package directive

import (
	"regexp"
)

// misuseScanner looks for sentinel+keyword sequences left in plain text,
// such as "@if" without an identifier or "name@endpoint". Authors who mean
// them literally put them in a code span.
type misuseScanner struct {
	re *regexp.Regexp
}

func newMisuseScanner(sentinel byte) *misuseScanner {
	pattern := `(?i)` + regexp.QuoteMeta(string(sentinel)) + `(?:elif|else|end|file|if)\w*`
	return &misuseScanner{re: regexp.MustCompile(pattern)}
}

// find returns the first suspicious word in text.
func (s *misuseScanner) find(text string) (string, bool) {
	loc := s.re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}
