package firebase

import (
	"context"
	"errors"
	"strings"

	"firebase.google.com/go/v4/auth"
)

var (
	ErrEmailInUse   = errors.New("email already in use")
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("weak password")
)

// Accounts creates identity-provider accounts during registration.
type Accounts struct {
	client *auth.Client
}

// NewAccounts constructs an Accounts service.
func NewAccounts(client *auth.Client) *Accounts {
	return &Accounts{client: client}
}

// CreateAccount registers a new email/password account and returns
// its UID. Known provider failures map to sentinel errors so the API
// layer can answer with fixed user-facing messages.
func (a *Accounts) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", ErrWeakPassword
	}

	user, err := a.client.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", err
	}
	return user.UID, nil
}
