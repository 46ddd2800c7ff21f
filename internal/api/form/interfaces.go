package form

import (
	"context"

	"github.com/futig/lab-assistant/internal/repository"
)

// TokenStore resolves single-use form tokens
type TokenStore interface {
	Peek(token string) (repository.FormTicket, error)
	Consume(token string) (repository.FormTicket, error)
	Restore(token string, ticket repository.FormTicket)
}

// TokenIssuer issues form tokens
type TokenIssuer interface {
	Issue(userID, chatID int64) string
}

// Submitter delivers a form payload into the user's conversation
type Submitter interface {
	SubmitForm(ctx context.Context, userID, chatID int64, payload []byte) error
}
