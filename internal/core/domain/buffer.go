package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// KeyBuffer is an append-only arena of shared key material owned by a
// single Session. A cursor splits it into a reserved region (offsets
// below Reserved, already claimed by senders) and an available region.
//
// Invariants:
//   - 0 <= Reserved <= Len at all times.
//   - The arena only grows; bytes at a given offset never change, so a
//     (offset, length) coordinate pair identifies the same material
//     forever and reserved ranges are never re-issued.
//
// Reserve is the single correctness-critical primitive: the buffer's lock
// serializes it so two reservations can never return overlapping ranges,
// regardless of how many callers race. Reads are serialized against
// Grow/Reserve through the same RWMutex, but proceed concurrently with
// each other.
type KeyBuffer struct {
	mu       sync.RWMutex
	data     []byte
	reserved int

	// consumed counts bytes returned by successful Consume calls. It is
	// advisory telemetry for the UI: re-reading a range advances it
	// again, and nothing gates on it.
	consumed atomic.Uint64
}

// NewKeyBuffer creates a buffer seeded with the given material.
func NewKeyBuffer(material []byte) *KeyBuffer {
	b := &KeyBuffer{data: make([]byte, len(material))}
	copy(b.data, material)
	return b
}

// Grow appends material to the arena and returns the new length.
func (b *KeyBuffer) Grow(material []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, material...)
	return len(b.data)
}

// GrowCapped appends at most enough of material to keep the arena within
// max bytes, returning how many bytes were actually appended. The cap
// check and the append happen under one lock so concurrent refills cannot
// overshoot the cap between check and write.
func (b *KeyBuffer) GrowCapped(material []byte, max int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := max - len(b.data)
	if room <= 0 {
		return 0
	}
	if room > len(material) {
		room = len(material)
	}
	b.data = append(b.data, material[:room]...)
	return room
}

// Reserve atomically claims length bytes and returns the start offset of
// the claimed range. Fails with ErrInsufficientBuffer when fewer than
// length unreserved bytes remain; the buffer is left unchanged on failure.
func (b *KeyBuffer) Reserve(length int) (int, error) {
	if length <= 0 {
		return 0, ErrInvalidArgument.WithDetails("length must be positive")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Written as a subtraction so a huge length cannot wrap the sum.
	if length > len(b.data)-b.reserved {
		return 0, ErrInsufficientBuffer.WithDetails(
			fmt.Sprintf("requested %d bytes, %d available", length, len(b.data)-b.reserved))
	}
	offset := b.reserved
	b.reserved += length
	return offset, nil
}

// Consume returns a copy of the material at [offset, offset+length). Only
// already-reserved material may be read: reading ahead of the reservation
// frontier fails with ErrOutOfRange. Reads may happen in any order
// relative to issuance; decryption only needs the coordinates the sender
// recorded.
func (b *KeyBuffer) Consume(offset, length int) ([]byte, error) {
	if offset < 0 {
		return nil, ErrInvalidArgument.WithDetails("offset must be non-negative")
	}
	if length <= 0 {
		return nil, ErrInvalidArgument.WithDetails("length must be positive")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	// Written as a subtraction so a huge offset cannot wrap the sum.
	if offset > b.reserved-length {
		return nil, ErrOutOfRange.WithDetails(
			fmt.Sprintf("range of %d at %d exceeds reserved frontier %d", length, offset, b.reserved))
	}

	chunk := make([]byte, length)
	copy(chunk, b.data[offset:offset+length])
	b.consumed.Add(uint64(length))
	return chunk, nil
}

// Len returns the total arena length.
func (b *KeyBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Reserved returns the reservation frontier.
func (b *KeyBuffer) Reserved() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.reserved
}

// Available returns the number of unreserved bytes.
func (b *KeyBuffer) Available() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data) - b.reserved
}

// Consumed returns the advisory consumed-bytes counter.
func (b *KeyBuffer) Consumed() uint64 {
	return b.consumed.Load()
}
