// Package keywrap seals message payloads with key material drawn from
// a shared buffer.
//
// A chunk of raw material never encrypts anything directly. It is
// stretched through HKDF-SHA256 into a ChaCha20-Poly1305 key, and the
// chunk coordinates are bound into the ciphertext as additional data
// so an envelope opened against the wrong range fails authentication
// instead of decrypting garbage.
package keywrap
