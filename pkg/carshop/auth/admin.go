package auth

import (
	"errors"
	"strings"
)

var (
	ErrAdminDisabled = errors.New("admin access is not configured")
	ErrAdminPassword = errors.New("admin password mismatch")
)

// AdminGate checks the admin password against an argon2id hash. It keeps
// the admin panel out of casual reach and nothing more.
type AdminGate struct {
	hash string
}

// NewAdminGate builds a gate from an encoded argon2id hash. An empty hash
// yields a gate that refuses everyone.
func NewAdminGate(hash string) (*AdminGate, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &AdminGate{}, nil
	}
	if _, _, _, err := decodeHash(hash); err != nil {
		return nil, err
	}
	return &AdminGate{hash: hash}, nil
}

// Enabled reports whether a hash is configured.
func (g *AdminGate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Check compares password with the configured hash.
func (g *AdminGate) Check(password string) error {
	if !g.Enabled() {
		return ErrAdminDisabled
	}
	ok, err := VerifyPassword(password, g.hash)
	if err != nil || !ok {
		return ErrAdminPassword
	}
	return nil
}
