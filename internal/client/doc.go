// Package client provides a typed HTTP client for the QuMail key
// service API.
//
// Requests are never retried. Chunk reservation advances the buffer
// frontier on the server, so a retried request that already succeeded
// would burn a second chunk.
package client
