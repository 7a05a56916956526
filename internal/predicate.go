package internal

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Predicate kinds accepted by ParsePredicate.
const (
	PredicatePathPattern = "path_pattern"
	PredicateMethod      = "method"
	PredicateHost        = "host"
)

// Predicate decides whether a filter applies to a request.
// Implementations must be immutable and safe for concurrent use.
type Predicate interface {
	Matches(r *Request) bool
	Kind() string
	String() string
}

// ParsePredicate builds a predicate from its registration form, e.g.
// ("path_pattern", "/api/hello.*").
func ParsePredicate(kind, value string) (Predicate, error) {
	var (
		pred Predicate
		err  error
	)
	switch kind {
	case PredicatePathPattern:
		pred, err = PathPattern(value)
	case PredicateMethod:
		pred, err = Method(strings.Split(value, ",")...)
	case PredicateHost:
		pred, err = Host(value)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidPredicate, kind)
	}
	if err != nil {
		return nil, err
	}
	return pred, nil
}

// PathPatternPredicate matches when the request path contains a match of the
// regular expression. Use ^ and $ to anchor.
type PathPatternPredicate struct {
	re *regexp.Regexp
}

// PathPattern compiles expr once at registration time.
func PathPattern(expr string) (*PathPatternPredicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPredicate, err)
	}
	return &PathPatternPredicate{re: re}, nil
}

func (p *PathPatternPredicate) Matches(r *Request) bool {
	return p.re.MatchString(r.Path())
}

func (p *PathPatternPredicate) Kind() string   { return PredicatePathPattern }
func (p *PathPatternPredicate) String() string { return p.re.String() }

// MethodPredicate matches any of a fixed set of methods, compared exactly.
type MethodPredicate struct {
	methods []string
}

// Method returns a predicate matching the given methods.
func Method(methods ...string) (*MethodPredicate, error) {
	clean := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if !IsValidMethod(m) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}
		clean = append(clean, m)
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: no methods", ErrInvalidPredicate)
	}
	return &MethodPredicate{methods: clean}, nil
}

func (p *MethodPredicate) Matches(r *Request) bool {
	return slices.Contains(p.methods, r.Method())
}

func (p *MethodPredicate) Kind() string   { return PredicateMethod }
func (p *MethodPredicate) String() string { return strings.Join(p.methods, ",") }

// HostPredicate matches the request host, either exactly ("api.example.com")
// or by wildcard ("*.example.com" matches "foo.example.com" but not
// "example.com"). The port is ignored and comparison is case-insensitive.
type HostPredicate struct {
	pattern  string
	wildcard bool
}

// Host returns a predicate for the given host pattern.
func Host(pattern string) (*HostPredicate, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidPredicate)
	}
	if domain, ok := strings.CutPrefix(pattern, "*."); ok {
		return &HostPredicate{pattern: domain, wildcard: true}, nil
	}
	return &HostPredicate{pattern: pattern}, nil
}

func (p *HostPredicate) Matches(r *Request) bool {
	host := normalizeHost(r.Host())
	if !p.wildcard {
		return host == p.pattern
	}
	_, domain, ok := strings.Cut(host, ".")
	return ok && domain == p.pattern
}

func (p *HostPredicate) Kind() string { return PredicateHost }

func (p *HostPredicate) String() string {
	if p.wildcard {
		return "*." + p.pattern
	}
	return p.pattern
}

// AllPredicate matches when every inner predicate matches.
type AllPredicate struct {
	preds []Predicate
}

// All combines predicates with logical AND.
func All(preds ...Predicate) *AllPredicate {
	return &AllPredicate{preds: slices.Clone(preds)}
}

func (p *AllPredicate) Matches(r *Request) bool {
	for _, pred := range p.preds {
		if !pred.Matches(r) {
			return false
		}
	}
	return true
}

func (p *AllPredicate) Kind() string { return "all" }

func (p *AllPredicate) String() string {
	parts := make([]string, len(p.preds))
	for i, pred := range p.preds {
		parts[i] = pred.Kind() + "=" + pred.String()
	}
	return strings.Join(parts, " && ")
}

// normalizeHost strips the port and lowercases the host.
func normalizeHost(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		// Skip IPv6 literals without a port, e.g. "[::1]".
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	return strings.ToLower(host)
}
