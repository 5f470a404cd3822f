package auth

import (
	"context"
	"crypto/subtle"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordSource returns the stored admin password (normally a bcrypt hash),
// empty when none was stored
type PasswordSource interface {
	PasswordHash(ctx context.Context) (string, error)
}

// Gate checks the shared admin passphrase. The stored password wins over the
// passphrase from the environment.
type Gate struct {
	Source     PasswordSource
	Passphrase string
}

func (g *Gate) Check(ctx context.Context, passphrase string) bool {
	if passphrase == "" {
		return false
	}
	if g.Source != nil {
		stored, err := g.Source.PasswordHash(ctx)
		if err != nil {
			log.Printf("Admin password lookup failed, using ADMIN_PASSWORD: %v", err)
		} else if stored != "" {
			return matches(stored, passphrase)
		}
	}
	if g.Passphrase == "" {
		log.Printf("Admin login refused: no admin password configured")
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.Passphrase), []byte(passphrase)) == 1
}

// matches accepts bcrypt hashes and plain text values of older rows
func matches(stored, passphrase string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(passphrase)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(passphrase)) == 1
}
