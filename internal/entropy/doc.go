// Package entropy supplies random key material for sessions and local
// key pools.
//
// The preferred source is an external quantum random number service
// reached over HTTP. When it fails for any reason the Adapter regenerates
// the entire request from the local CSPRNG instead; a single block of
// material never mixes bytes from both sources, so its provenance tag is
// always truthful.
package entropy
