package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes      = 16
	hashIterations = 10000
	hashKeyLength  = 32
)

// GenerateSalt returns a fresh random salt, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives a one-way hash from the password and salt.
// Only the hash and salt are ever persisted, never the plaintext.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword recomputes the hash with the stored salt and compares.
func VerifyPassword(password, salt, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return HashPassword(password, salt) == storedHash
}
