package oauth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// BearerChallenge is a parsed RFC 6750 WWW-Authenticate challenge returned
// by a protected API.
type BearerChallenge struct {
	Scheme           string
	Realm            string
	Scope            string
	Error            string
	ErrorDescription string
}

// InvalidToken reports whether the API rejected the presented token, as
// opposed to asking for one.
func (c *BearerChallenge) InvalidToken() bool {
	return c != nil && c.Error == "invalid_token"
}

var authParamRegex = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"`)

// ParseWWWAuthenticate parses a WWW-Authenticate header value such as
//
//	Bearer realm="datacore", error="invalid_token", error_description="The access token expired"
func ParseWWWAuthenticate(header string) (*BearerChallenge, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.New("empty WWW-Authenticate header")
	}

	scheme, rest, _ := strings.Cut(header, " ")
	challenge := &BearerChallenge{Scheme: scheme}

	for _, match := range authParamRegex.FindAllStringSubmatch(rest, -1) {
		value := match[2]
		switch strings.ToLower(match[1]) {
		case "realm":
			challenge.Realm = value
		case "scope":
			challenge.Scope = value
		case "error":
			challenge.Error = value
		case "error_description":
			challenge.ErrorDescription = value
		}
	}

	return challenge, nil
}

// ChallengeFromResponse extracts the challenge of a 401 response.
// Returns nil if the response is not a 401 or carries no usable header.
func ChallengeFromResponse(resp *http.Response) *BearerChallenge {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return nil
	}

	challenge, err := ParseWWWAuthenticate(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return nil
	}
	return challenge
}
