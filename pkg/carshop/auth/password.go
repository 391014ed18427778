package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash signals a malformed argon2id hash string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// HashParams are the argon2id parameters embedded in each hash string.
type HashParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultHashParams is used by `carshop hash-password`.
var DefaultHashParams = HashParams{Memory: 64 * 1024, Time: 1, Parallelism: 2, SaltLen: 16, KeyLen: 32}

// HashPassword returns an encoded argon2id hash of password.
func HashPassword(password string, params HashParams) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword reports whether password matches the encoded hash.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrInvalidHash
	}

	var params HashParams
	for _, token := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return HashParams{}, nil, nil, ErrInvalidHash
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return HashParams{}, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.Memory = uint32(v)
		case "t":
			params.Time = uint32(v)
		case "p":
			params.Parallelism = uint8(v)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return HashParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHash
	}
	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))

	return params, salt, hash, nil
}
