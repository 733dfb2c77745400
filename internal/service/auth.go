package service

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type account struct {
	user         models.User
	passwordHash string
	token        string
}

type credential struct {
	user     models.User
	password string
}

var fixedAccounts = []credential{
	{
		user:     models.User{ID: "admin_1", Name: "Admin User", Email: "admin@lumina.com", Role: models.RoleAdmin},
		password: "admin123",
	},
	{
		user:     models.User{ID: "user_1", Name: "John Doe", Email: "user@lumina.com", Role: models.RoleCustomer},
		password: "user123",
	},
}

// hashed once per process
var accountHashes = sync.OnceValue(func() []string {
	out := make([]string, len(fixedAccounts))
	for i, c := range fixedAccounts {
		out[i] = hash.MustHash(c.password)
	}
	return out
})

func provision(secret []byte) ([]account, error) {
	hashes := accountHashes()
	out := make([]account, 0, len(fixedAccounts))
	for i, c := range fixedAccounts {
		tok, err := tokens.Sign(secret, c.user.ID, string(c.user.Role))
		if err != nil {
			return nil, err
		}
		out = append(out, account{user: c.user, passwordHash: hashes[i], token: tok})
	}
	return out, nil
}

// Login checks the credentials against the fixed accounts. Each account
// always receives the same token.
func (b *Backend) Login(ctx context.Context, email, password string) (*models.Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	for _, a := range b.accounts {
		if a.user.Email != email {
			continue
		}
		if !hash.CheckPassword(a.passwordHash, password) {
			break
		}
		l.Info("login_ok", "user_id", a.user.ID, "role", a.user.Role)
		return &models.Session{User: a.user, Token: a.token}, nil
	}

	l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
	return nil, ErrInvalidCredentials
}
