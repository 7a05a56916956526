package filters

import (
	"context"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/argos/internal"
)

// LocaleAttribute is the request attribute holding the negotiated locale.
const LocaleAttribute = "locale"

type localeKey struct{}

// Locale negotiates the request language from Accept-Language against the
// supported tags. The first supported tag is the fallback. The result is
// stored as LocaleAttribute (BCP 47 string) and in the request context.
func Locale(supported ...language.Tag) internal.FilterHandler {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(supported)

	return func(r *internal.Request) internal.Decision {
		tag := supported[0]
		if header := r.HeaderValue("Accept-Language"); header != "" {
			if prefs, _, err := language.ParseAcceptLanguage(header); err == nil && len(prefs) > 0 {
				_, idx, conf := matcher.Match(prefs...)
				if conf != language.No {
					tag = supported[idx]
				}
			}
		}

		r.SetAttribute(LocaleAttribute, tag.String())
		r.WithContext(context.WithValue(r.Context(), localeKey{}, tag))
		return internal.Continue(r)
	}
}

// LocaleFromContext returns the negotiated locale and whether Locale ran.
func LocaleFromContext(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	return tag, ok
}
