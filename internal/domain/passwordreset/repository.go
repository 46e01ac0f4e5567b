package passwordreset

import "context"

type Repository interface {
	Create(ctx context.Context, t Token) (Token, error)
	GetByToken(ctx context.Context, token string) (Token, bool, error)
	// Redeem marks the token used and stores the new password hash in one
	// transaction. It returns ErrTokenUsed if the token was consumed
	// concurrently.
	Redeem(ctx context.Context, tokenID, userID int64, passwordHash string) error
}
