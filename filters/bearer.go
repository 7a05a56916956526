package filters

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/argos/internal"
)

// SubjectAttribute is the request attribute holding the authenticated subject.
const SubjectAttribute = "auth.subject"

// ErrMissingToken is passed to the rejection when no bearer token is present.
var ErrMissingToken = errors.New("filters: missing bearer token")

// TokenValidator checks a bearer token and returns the subject it
// authenticates.
type TokenValidator func(ctx context.Context, token string) (subject string, err error)

// BearerToken rejects requests without a valid "Authorization: Bearer"
// token with 401 and a WWW-Authenticate challenge. On success the subject
// is stored as SubjectAttribute.
func BearerToken(validate TokenValidator) internal.FilterHandler {
	return func(r *internal.Request) internal.Decision {
		token, ok := bearerToken(r.HeaderValue("Authorization"))
		if !ok {
			return internal.Reject(unauthorized(ErrMissingToken))
		}
		subject, err := validate(r.Context(), token)
		if err != nil {
			return internal.Reject(unauthorized(err))
		}
		r.SetAttribute(SubjectAttribute, subject)
		return internal.Continue(r)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(cause error) *internal.Error[string] {
	return internal.ErrUnauthorized(http.StatusText(http.StatusUnauthorized)).
		WithHeader("WWW-Authenticate", `Bearer realm="argos"`).
		WithCause(cause)
}
