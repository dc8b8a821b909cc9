package githubapi

import (
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const redacted = "[redacted]"

// ErrNoToken is returned when no credential could be found.
var ErrNoToken = errors.New("GitHub token not configured")

// Token is a bearer credential. Its printable forms are redacted so it can be
// passed through loggers and error messages without leaking.
type Token string

func (t Token) String() string {
	if t == "" {
		return ""
	}
	return redacted
}

func (t Token) GoString() string {
	return t.String()
}

func (t Token) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t Token) IsEmpty() bool {
	return strings.TrimSpace(string(t)) == ""
}

func (t Token) authorization() string {
	return "Bearer " + string(t)
}

// ReadTokenFile loads a token from path, expanding a leading ~.
func ReadTokenFile(path string) (Token, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot expand token file path %s", path)
	}
	contents, err := os.ReadFile(expanded)
	if err != nil {
		return "", errors.Wrap(err, "cannot read token file")
	}
	token := Token(strings.TrimSpace(string(contents)))
	if token.IsEmpty() {
		return "", ErrNoToken
	}
	return token, nil
}
