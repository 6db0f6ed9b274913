package keywrap

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo domain-separates keys derived by this package.
const hkdfInfo = "qumail-keywrap-v1"

// MinMaterialBytes is the smallest chunk accepted for key derivation.
const MinMaterialBytes = 16

var (
	// ErrMaterialTooShort indicates the chunk is too small to derive a
	// key from.
	ErrMaterialTooShort = errors.New("keywrap: material shorter than 16 bytes")

	// ErrCiphertextInvalid indicates the envelope failed authentication.
	// Wrong material, wrong coordinates and tampering all land here.
	ErrCiphertextInvalid = errors.New("keywrap: ciphertext authentication failed")
)

// Ref locates the material an envelope was sealed with. For session
// traffic it names a chunk of the shared buffer; when a message falls
// back to the local pool, KeyID names the pool key instead and the
// chunk coordinates stay zero.
type Ref struct {
	SessionID string `json:"session_id,omitempty"`
	KeyID     string `json:"key_id,omitempty"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
}

// aad renders the coordinates in a canonical form for authentication.
func (r Ref) aad() []byte {
	return []byte(fmt.Sprintf("%s|%s|%d|%d", r.SessionID, r.KeyID, r.Offset, r.Length))
}

// Envelope is a sealed payload plus the coordinates needed to open it.
// It marshals to JSON for embedding in a mail header or body part.
type Envelope struct {
	Ref        Ref    `json:"ref"`
	Ciphertext []byte `json:"ciphertext"`
}

// deriveKey stretches raw chunk material into a cipher key.
func deriveKey(material []byte) ([]byte, error) {
	if len(material) < MinMaterialBytes {
		return nil, ErrMaterialTooShort
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, material, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext under the given chunk material, binding the
// chunk coordinates into the ciphertext.
func Seal(material []byte, ref Ref, plaintext []byte) (*Envelope, error) {
	key, err := deriveKey(material)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Nonce is prepended to the ciphertext.
	ciphertext := aead.Seal(nonce, nonce, plaintext, ref.aad())
	return &Envelope{Ref: ref, Ciphertext: ciphertext}, nil
}

// Open decrypts an envelope with the material read back at its
// coordinates. Any mismatch between material, coordinates and
// ciphertext yields ErrCiphertextInvalid.
func Open(material []byte, env *Envelope) ([]byte, error) {
	key, err := deriveKey(material)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	if len(env.Ciphertext) < aead.NonceSize() {
		return nil, ErrCiphertextInvalid
	}

	nonce := env.Ciphertext[:aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, env.Ciphertext[aead.NonceSize():], env.Ref.aad())
	if err != nil {
		return nil, ErrCiphertextInvalid
	}
	return plaintext, nil
}
