package schemes

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// ErrEmptyPattern is reported for pattern lines that compile to a regexp
// matching every target.
var ErrEmptyPattern = errors.New("pattern matches every target")

// Verdict is the outcome of checking a link or image target.
type Verdict int

const (
	// Admitted targets are rendered as live references.
	Admitted Verdict = iota
	// Stripped targets use a scheme outside the allow-list; the reference is
	// rendered without a destination.
	Stripped
	// Malformed targets are empty or contain characters that could break out
	// of an attribute; the destination collapses to an empty value.
	Malformed
)

func (v Verdict) String() string {
	switch v {
	case Admitted:
		return "admitted"
	case Stripped:
		return "stripped"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Policy is a compiled scheme allow-list.
type Policy struct {
	raw      string
	patterns []*regexp.Regexp
	err      error
}

// Compile parses a newline-separated list of regular expressions. Blank
// lines are ignored. Lines that fail to compile are skipped and reported in
// the returned error; the returned Policy is always usable.
func Compile(patterns string) (*Policy, error) {
	p := &Policy{raw: patterns}

	var errs []error
	for lineNo, line := range strings.Split(patterns, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: invalid scheme pattern %q: %w", lineNo+1, line, err))
			continue
		}
		if re.MatchString("") {
			errs = append(errs, fmt.Errorf("line %d: scheme pattern %q: %w", lineNo+1, line, ErrEmptyPattern))
			continue
		}
		p.patterns = append(p.patterns, re)
	}

	p.err = errors.Join(errs...)
	return p, p.err
}

// Err returns the compilation errors of the policy, if any.
func (p *Policy) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

// Len returns the number of usable patterns.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.patterns)
}

// Matches reports whether target matches one of the allow-list patterns.
func (p *Policy) Matches(target string) bool {
	if p == nil {
		return false
	}
	for _, re := range p.patterns {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// Check classifies a link or image target. http and https URLs and
// scheme-less relative references are always admitted; any other scheme must
// match an allow-list pattern.
func (p *Policy) Check(target string) Verdict {
	if target == "" || hasUnsafeRune(target) {
		return Malformed
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return Malformed
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return Admitted
	case "":
		if strings.HasPrefix(target, "//") || strings.HasPrefix(target, `\\`) {
			return Stripped
		}
		return Admitted
	}

	if p.Matches(target) {
		return Admitted
	}
	return Stripped
}

func hasUnsafeRune(target string) bool {
	for _, r := range target {
		switch r {
		case '"', '<', '>', '`', unicode.ReplacementChar:
			return true
		}
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return true
		}
	}
	return false
}

const maxCachedPolicies = 64

var cache = struct {
	sync.Mutex
	entries map[string]*Policy
}{entries: make(map[string]*Policy)}

// Load reads the current pattern list from provider and returns its compiled
// policy. Compiled policies are cached by their source text, so repeated
// loads of an unchanged list are cheap while a changed list takes effect
// immediately. A nil provider yields an empty policy.
func Load(provider Provider) *Policy {
	if provider == nil {
		return &Policy{}
	}
	raw := provider.Get()

	cache.Lock()
	defer cache.Unlock()

	if p, ok := cache.entries[raw]; ok {
		return p
	}
	if len(cache.entries) >= maxCachedPolicies {
		clear(cache.entries)
	}
	p, _ := Compile(raw)
	cache.entries[raw] = p
	return p
}
