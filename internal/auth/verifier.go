package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/Chrezm/TsuserverDR/internal/core"
)

// Secrets holds the configured password of each login role. A value may be
// plaintext or a bcrypt hash; an empty value disables the role.
type Secrets struct {
	Moderator        string
	CommunityManager string
	GameMaster       string
}

// Verifier checks role passwords against the configured secrets.
type Verifier struct {
	secrets Secrets
}

// NewVerifier creates a verifier for the given secrets.
func NewVerifier(secrets Secrets) *Verifier {
	return &Verifier{secrets: secrets}
}

// Verify implements core.Verifier.
func (v *Verifier) Verify(role core.Role, password string) bool {
	secret := v.secret(role)
	if secret == "" || password == "" {
		return false
	}
	if IsHash(secret) {
		return ComparePassword(secret, password) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

func (v *Verifier) secret(role core.Role) string {
	switch role {
	case core.RoleModerator:
		return v.secrets.Moderator
	case core.RoleCommunityManager:
		return v.secrets.CommunityManager
	case core.RoleGameMaster:
		return v.secrets.GameMaster
	default:
		return ""
	}
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
