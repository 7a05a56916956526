package pathpattern

import "strings"

const (
	// Separator delimits path segments.
	Separator = "/"

	// ParamMarker prefixes a parameter segment.
	ParamMarker = ":"
)

// Pattern is an immutable compiled path template.
// Two patterns are equal when their raw templates are equal; use String as
// the key when patterns need to be hashed.
type Pattern struct {
	raw      string
	segments []segment
}

type segment struct {
	value string
	param bool
}

// Compile splits the template into segments.
// Compile never fails: any string is a valid template.
func Compile(template string) Pattern {
	parts := strings.Split(template, Separator)
	segments := make([]segment, len(parts))
	for i, part := range parts {
		if name, ok := strings.CutPrefix(part, ParamMarker); ok {
			segments[i] = segment{value: name, param: true}
			continue
		}
		segments[i] = segment{value: part}
	}
	return Pattern{raw: template, segments: segments}
}

// String returns the raw template.
func (p Pattern) String() string {
	return p.raw
}

// Equal reports whether both patterns were compiled from the same template.
func (p Pattern) Equal(other Pattern) bool {
	return p.raw == other.raw
}

// Params returns the parameter names in template order.
func (p Pattern) Params() []string {
	var names []string
	for _, s := range p.segments {
		if s.param {
			names = append(names, s.value)
		}
	}
	return names
}

// Match reports whether path matches the pattern and returns the bound
// parameters. The returned map is non-nil on a match, even when the pattern
// has no parameters. A miss returns (nil, false); it is not an error.
func (p Pattern) Match(path string) (map[string]string, bool) {
	params := make(map[string]string)
	rest := path
	for i, seg := range p.segments {
		if i > 0 {
			var found bool
			// Every template segment after the first needs a separator in the
			// candidate, otherwise the candidate ran out of segments.
			if _, rest, found = strings.Cut(rest, Separator); !found {
				return nil, false
			}
		}
		value, _, _ := strings.Cut(rest, Separator)
		if seg.param {
			params[seg.value] = value
		} else if seg.value != value {
			return nil, false
		}
	}
	// Candidate has more segments than the template.
	if _, _, more := strings.Cut(rest, Separator); more {
		return nil, false
	}
	return params, true
}

// Matches reports whether path matches without allocating the parameter map
// for callers that only need the yes/no answer.
func (p Pattern) Matches(path string) bool {
	rest := path
	for i, seg := range p.segments {
		if i > 0 {
			var found bool
			if _, rest, found = strings.Cut(rest, Separator); !found {
				return false
			}
		}
		value, _, _ := strings.Cut(rest, Separator)
		if !seg.param && seg.value != value {
			return false
		}
	}
	_, _, more := strings.Cut(rest, Separator)
	return !more
}
