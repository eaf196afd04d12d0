package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for newly hashed passwords. 64 MiB with three
// passes over two lanes keeps a login verification well under the
// login rate-limit window on the small instances this service runs on.
const (
	argonMemoryKiB = 64 * 1024
	argonPasses    = 3
	argonLanes     = 2
	argonSaltLen   = 16
	argonKeyLen    = 32
)

// HashPassword derives an argon2id hash of plaintext and encodes it as
// a PHC string with its parameters embedded, so stored hashes stay
// verifiable if the constants above ever change.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, argonPasses, argonMemoryKiB, argonLanes, argonKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemoryKiB, argonPasses, argonLanes,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether plaintext matches the stored argon2id
// hash, re-deriving with the parameters recorded in the hash itself.
// The comparison is constant-time over the derived keys.
func VerifyPassword(hash, plaintext string) (bool, error) {
	h, err := parsePHC(hash)
	if err != nil {
		return false, err
	}

	derived := argon2.IDKey([]byte(plaintext), h.salt, h.passes, h.memoryKiB, h.lanes, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(h.key, derived) == 1, nil
}

type phcHash struct {
	memoryKiB uint32
	passes    uint32
	lanes     uint8
	salt      []byte
	key       []byte
}

// parsePHC decodes a "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
// Only hashes this service wrote are expected, so the parameter block
// is required in exactly that order.
func parsePHC(s string) (phcHash, error) {
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return phcHash{}, errors.New("password hash: not an argon2id PHC string")
	}
	if fields[2] != "v=19" {
		return phcHash{}, fmt.Errorf("password hash: unsupported argon2 version %q", fields[2])
	}

	var h phcHash
	if n, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.memoryKiB, &h.passes, &h.lanes); err != nil || n != 3 {
		return phcHash{}, fmt.Errorf("password hash: bad parameter block %q", fields[3])
	}
	if h.memoryKiB == 0 || h.passes == 0 || h.lanes == 0 {
		return phcHash{}, fmt.Errorf("password hash: zero parameter in %q", fields[3])
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(h.salt) == 0 {
		return phcHash{}, errors.New("password hash: bad salt")
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return phcHash{}, errors.New("password hash: bad key")
	}
	return h, nil
}
