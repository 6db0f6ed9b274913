package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes. IDs are the prefix followed by a lowercase ULID,
// 31 characters total.
const (
	// SessionIDPrefix is the prefix for pairwise session IDs.
	SessionIDPrefix = "qmss-"

	// LocalKeyIDPrefix is the prefix for local pool key IDs.
	LocalKeyIDPrefix = "qmlk-"
)

const ulidLen = 26

// GenerateSessionID generates a new session ID.
func GenerateSessionID() (string, error) {
	return generateID(SessionIDPrefix)
}

// GenerateLocalKeyID generates a new local key ID.
func GenerateLocalKeyID() (string, error) {
	return generateID(LocalKeyIDPrefix)
}

// IsValidSessionID checks whether id is a well-formed session ID.
func IsValidSessionID(id string) bool {
	return validID(SessionIDPrefix, id)
}

// IsValidLocalKeyID checks whether id is a well-formed local key ID.
func IsValidLocalKeyID(id string) bool {
	return validID(LocalKeyIDPrefix, id)
}

func generateID(prefix string) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return prefix + strings.ToLower(id.String()), nil
}

func validID(prefix, id string) bool {
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, prefix) || len(id) != len(prefix)+ulidLen {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[len(prefix):]))
	return err == nil
}
