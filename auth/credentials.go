// Package auth implements the authentication pipeline: Basic credential
// extraction, credential verification against the store, token issuance
// and validation, and the middleware that guards the login and API route
// scopes.
package auth

import (
	"encoding/base64"
	"strings"

	"github.com/user/ticx-go/apperror"
)

// AuthorizationHeader is the header all credentials and tokens arrive in.
const AuthorizationHeader = "Authorization"

// Credentials is a transient username/password pair parsed from a Basic
// Authorization header. It lives for one request and is discarded after
// verification; the password is never persisted and never logged.
type Credentials struct {
	username string
	password string
}

// Username returns the supplied username.
func (c Credentials) Username() string { return c.username }

// Password returns the supplied plaintext password.
func (c Credentials) Password() string { return c.password }

// String renders the credentials with the password redacted, so an
// accidental fmt of the value cannot leak the secret.
func (c Credentials) String() string {
	return c.username + ":[redacted]"
}

// ParseBasicCredentials parses an Authorization header value of the form
// "Basic base64(user:pass)". Parse failures report the header name and a
// reason, but never echo the supplied value back to the caller.
func ParseBasicCredentials(headerValue string) (Credentials, error) {
	scheme, encoded, found := strings.Cut(headerValue, " ")
	if !found {
		return Credentials{}, apperror.NewInvalidHeader(AuthorizationHeader,
			"expected '<scheme> <credentials>'", nil)
	}
	if !strings.EqualFold(scheme, "Basic") {
		return Credentials{}, apperror.NewInvalidHeader(AuthorizationHeader,
			"authentication scheme is not Basic", nil)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Credentials{}, apperror.NewInvalidHeader(AuthorizationHeader,
			"credentials are not valid base64", err)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return Credentials{}, apperror.NewInvalidHeader(AuthorizationHeader,
			"decoded credentials are missing the ':' separator", nil)
	}
	if username == "" {
		return Credentials{}, apperror.NewInvalidHeader(AuthorizationHeader,
			"username is empty", nil)
	}

	return Credentials{username: username, password: password}, nil
}
