package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// Mode is a route's rendering mode. It applies to success and error outcomes.
type Mode int

const (
	ModeJSON Mode = iota + 1
	ModeText
	ModeHTML
)

// Content types set by each mode.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// ParseMode parses "json", "text" or "html".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return ModeJSON, nil
	case "text":
		return ModeText, nil
	case "html":
		return ModeHTML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModeText:
		return "text"
	case ModeHTML:
		return "html"
	default:
		return "unknown"
	}
}

// ContentType returns the media type written for the mode.
func (m Mode) ContentType() string {
	switch m {
	case ModeJSON:
		return ContentTypeJSON
	case ModeHTML:
		return ContentTypeHTML
	default:
		return ContentTypeText
	}
}

func (m Mode) valid() bool {
	return m >= ModeJSON && m <= ModeHTML
}

// Formatter turns handler outcomes into wire responses.
// It is stateless after construction and safe for concurrent use.
type Formatter struct {
	htmlPolicy *bluemonday.Policy
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithHTMLSanitizer sanitizes display strings rendered in html mode with the
// given bluemonday policy. templ components are written as-is.
func WithHTMLSanitizer(p *bluemonday.Policy) FormatterOption {
	return func(f *Formatter) {
		f.htmlPolicy = p
	}
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Success renders a successful handler value with status 200.
func (f *Formatter) Success(ctx context.Context, mode Mode, value any) (*Response, error) {
	body, err := f.render(ctx, mode, value)
	if err != nil {
		return nil, err
	}
	resp := newResponse(http.StatusOK)
	resp.Header.Set("Content-Type", mode.ContentType())
	resp.Body = body
	return resp, nil
}

// Failure renders a typed error. Headers declared on the error are copied
// first, then the mode's content type is set.
func (f *Formatter) Failure(ctx context.Context, mode Mode, te TypedError) (*Response, error) {
	body, err := f.render(ctx, mode, te.ResponseBody())
	if err != nil {
		return nil, err
	}
	resp := newResponse(te.StatusCode())
	for key, values := range te.ResponseHeaders() {
		for _, v := range values {
			resp.Header.Add(key, v)
		}
	}
	resp.Header.Set("Content-Type", mode.ContentType())
	resp.Body = body
	return resp, nil
}

func (f *Formatter) render(ctx context.Context, mode Mode, v any) ([]byte, error) {
	switch mode {
	case ModeJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		return b, nil
	case ModeHTML:
		if c, ok := v.(templ.Component); ok {
			var buf bytes.Buffer
			if err := c.Render(ctx, &buf); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
			}
			return buf.Bytes(), nil
		}
		s := display(v)
		if f.htmlPolicy != nil {
			s = f.htmlPolicy.Sanitize(s)
		}
		return []byte(s), nil
	case ModeText:
		return []byte(display(v)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
}

// display returns the human-readable form of v used by text and html modes.
func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(v)
	}
}
