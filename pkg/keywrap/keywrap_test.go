package keywrap

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

// material returns a deterministic chunk of n bytes.
func material(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i * 7 % 251)
	}
	return buf
}

func testRef() Ref {
	return Ref{SessionID: "qmss-01je9x2v7q8rssphm3kfyw4t2a", Offset: 128, Length: 32}
}

func TestSealOpenRoundTrip(t *testing.T) {
	chunk := material(32)
	plaintext := []byte("the quick brown fox")

	env, err := Seal(chunk, testRef(), plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Contains(env.Ciphertext, plaintext) {
		t.Fatal("ciphertext contains the plaintext")
	}

	got, err := Open(chunk, env)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open() = %q, want %q", got, plaintext)
	}
}

func TestOpenWithWrongMaterialFails(t *testing.T) {
	env, err := Seal(material(32), testRef(), []byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	wrong := material(32)
	wrong[0] ^= 0xff
	if _, err := Open(wrong, env); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open() with wrong material error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestOpenWithWrongCoordinatesFails(t *testing.T) {
	chunk := material(32)
	env, err := Seal(chunk, testRef(), []byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	// Same material, shifted coordinates.
	env.Ref.Offset += 32
	if _, err := Open(chunk, env); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open() with shifted offset error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestSealOpenPoolKeyRef(t *testing.T) {
	key := material(64)
	ref := Ref{KeyID: "qmlk-01je9x2v7q8rssphm3kfyw4t2a"}

	env, err := Seal(key, ref, []byte("pool fallback"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	got, err := Open(key, env)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(got) != "pool fallback" {
		t.Errorf("Open() = %q", got)
	}

	// A pool envelope does not open as session traffic.
	env.Ref = Ref{SessionID: env.Ref.KeyID}
	if _, err := Open(key, env); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open() with swapped ref kind error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestOpenTamperedCiphertextFails(t *testing.T) {
	chunk := material(32)
	env, err := Seal(chunk, testRef(), []byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	env.Ciphertext[len(env.Ciphertext)-1] ^= 0x01
	if _, err := Open(chunk, env); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open() of tampered envelope error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestSealRejectsShortMaterial(t *testing.T) {
	if _, err := Seal(material(8), testRef(), []byte("x")); !errors.Is(err, ErrMaterialTooShort) {
		t.Errorf("Seal() with 8 bytes error = %v, want ErrMaterialTooShort", err)
	}
}

func TestOpenTruncatedEnvelopeFails(t *testing.T) {
	env := &Envelope{Ref: testRef(), Ciphertext: []byte{1, 2, 3}}
	if _, err := Open(material(32), env); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open() of truncated envelope error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestSealUniqueNonces(t *testing.T) {
	chunk := material(32)
	plaintext := []byte("same message")

	a, err := Seal(chunk, testRef(), plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	b, err := Seal(chunk, testRef(), plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Error("two seals of the same message produced identical ciphertext")
	}
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	chunk := material(32)
	env, err := Seal(chunk, testRef(), []byte("over the wire"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got, err := Open(chunk, &decoded)
	if err != nil {
		t.Fatalf("Open() after JSON round trip error = %v", err)
	}
	if string(got) != "over the wire" {
		t.Errorf("Open() = %q", got)
	}
}
