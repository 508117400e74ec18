package pipelog

import (
	"regexp"
	"strings"
)

// Filter decides whether a message passes through the pipeline. A message is
// delivered to the handlers only if every filter matches it.
type Filter interface {
	Match(text string) bool
}

// SubstringFilter matches messages containing a fixed substring.
type SubstringFilter struct {
	pattern string
}

func NewSubstringFilter(pattern string) *SubstringFilter {
	return &SubstringFilter{pattern: pattern}
}

func (f *SubstringFilter) Match(text string) bool {
	return strings.Contains(text, f.pattern)
}

// RegexpFilter matches messages against a regular expression.
type RegexpFilter struct {
	re *regexp.Regexp
}

// NewRegexpFilter compiles the pattern. An invalid pattern is a construction
// error, not a silent never-matching filter.
func NewRegexpFilter(pattern string) (*RegexpFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexpFilter{re: re}, nil
}

func (f *RegexpFilter) Match(text string) bool {
	return f.re.MatchString(text)
}
