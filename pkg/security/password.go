package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrHashMismatch is returned when a password does not match its hash.
var ErrHashMismatch = errors.New("security: password does not match hash")

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// NewHasher returns the hasher configured by the options.
func NewHasher(opts Options) (PasswordHasher, error) {
	switch opts.Algorithm {
	case AlgorithmBcrypt:
		cost := opts.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		return &BcryptHasher{cost: cost}, nil
	case AlgorithmArgon2id:
		params := opts.Argon2
		if params == (Argon2Params{}) {
			params = DefaultArgon2Params()
		}
		return &Argon2idHasher{params: params}, nil
	default:
		return nil, fmt.Errorf("security: unknown algorithm %q", opts.Algorithm)
	}
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// Hash returns the bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether the password matches the bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrHashMismatch
	}
	return nil
}

// Argon2idHasher hashes passwords with argon2id in PHC string format.
type Argon2idHasher struct {
	params Argon2Params
}

// Hash returns the argon2id hash of the password as a PHC string.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether the password matches the PHC-encoded hash.
// Parameters are taken from the hash, so hashes created with older
// settings keep verifying after the configuration changes.
func (h *Argon2idHasher) Verify(password, hash string) error {
	params, salt, key, err := decodeArgon2id(hash)
	if err != nil {
		return err
	}

	other := argon2.IDKey([]byte(password), salt,
		params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))

	if subtle.ConstantTimeCompare(key, other) != 1 {
		return ErrHashMismatch
	}
	return nil
}

func decodeArgon2id(hash string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, errors.New("security: malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Argon2Params{}, nil, nil, errors.New("security: malformed argon2id hash")
	}
	if version != argon2.Version {
		return Argon2Params{}, nil, nil, fmt.Errorf("security: unsupported argon2 version %d", version)
	}

	var params Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Argon2Params{}, nil, nil, errors.New("security: malformed argon2id hash")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, errors.New("security: malformed argon2id hash")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, errors.New("security: malformed argon2id hash")
	}
	return params, salt, key, nil
}
