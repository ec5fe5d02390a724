package carbonapi

import (
	"os"
	"strings"
)

// CredentialSource supplies the current bearer token. The token is owned outside this
// package; Token is called once per request and must be safe for concurrent use.
type CredentialSource interface {
	Token() (string, bool)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() (string, bool)

// Token implements CredentialSource.
func (f CredentialFunc) Token() (string, bool) { return f() }

// StaticToken always returns the same token. An empty token reports absence.
type StaticToken string

// Token implements CredentialSource.
func (s StaticToken) Token() (string, bool) {
	tok := strings.TrimSpace(string(s))
	return tok, tok != ""
}

// EnvToken reads the named environment variable on every call.
type EnvToken string

// Token implements CredentialSource.
func (e EnvToken) Token() (string, bool) {
	tok := strings.TrimSpace(os.Getenv(string(e)))
	return tok, tok != ""
}

// NoCredential never yields a token.
var NoCredential CredentialSource = StaticToken("")
