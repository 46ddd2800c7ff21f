package form

import (
	"net/url"
	"strings"
)

// Linker builds hosted form links for the chat
type Linker struct {
	tokens    TokenIssuer
	publicURL string
}

// NewLinker creates a linker. An empty publicURL disables the form.
func NewLinker(tokens TokenIssuer, publicURL string) *Linker {
	return &Linker{
		tokens:    tokens,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// FormURL issues a fresh token and returns the form link, empty when the form is disabled
func (l *Linker) FormURL(userID, chatID int64) string {
	if l.publicURL == "" {
		return ""
	}
	token := l.tokens.Issue(userID, chatID)
	return l.publicURL + FormPath + "?" + url.Values{tokenParam: {token}}.Encode()
}
