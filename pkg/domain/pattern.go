package domain

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern evaluation so a pathological
// expression rejects instead of stalling the pipeline.
const DefaultMatchTimeout = time.Second

// Pattern is a regular expression evaluated with prefix-match semantics.
// A match must start at the first character of the input but does not have to
// consume all of it: "foo" matches "foobar", "^foo$" does not.
//
// The syntax is the Perl/Python flavour supported by regexp2, which is what
// exercise authors usually write (lookarounds, backreferences, and so on).
type Pattern struct {
	source string
	re     *regexp2.Regexp
}

// CompilePattern parses source into a Pattern.
func CompilePattern(source string) (*Pattern, error) {
	// Validate the raw expression first: a source like "a)|(b" would otherwise
	// compile once wrapped and silently change meaning.
	if _, err := regexp2.Compile(source, regexp2.None); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", source, err)
	}
	re, err := regexp2.Compile(`\A(?:`+source+`)`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", source, err)
	}
	re.MatchTimeout = DefaultMatchTimeout
	return &Pattern{source: source, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
// Intended for tests and static definitions.
func MustCompilePattern(source string) *Pattern {
	p, err := CompilePattern(source)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchPrefix reports whether the pattern matches at the start of s.
// A match that exceeds the timeout counts as no match.
func (p *Pattern) MatchPrefix(s string) bool {
	if p == nil || p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// String returns the source expression.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// MarshalText implements encoding.TextMarshaler.
func (p *Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	compiled, err := CompilePattern(string(text))
	if err != nil {
		return err
	}
	*p = *compiled
	return nil
}
