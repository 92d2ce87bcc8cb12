// Package entity defines the records the URL shortener persists and the
// errors shared between its layers.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when the durable store already holds a URL with the same short code.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when no URL with the specified short code is stored.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLReference is returned when a visit references a URL record that does not exist.
	ErrURLReference = errors.New("visit references unknown url")
	// ErrStoreUnavailable wraps failures of the durable store.
	ErrStoreUnavailable = errors.New("durable store unavailable")
	// ErrCacheUnavailable wraps failures of the fast cache.
	ErrCacheUnavailable = errors.New("fast cache unavailable")
)

// URL represents a shortened URL. Records are never modified once stored.
type URL struct {
	ID          int64      // ID is the identifier assigned by the durable store.
	ShortCode   string     // ShortCode is the generated code that resolves to OriginalURL.
	OriginalURL string     // OriginalURL is the full URL the short code redirects to.
	CreatedAt   time.Time  // CreatedAt is the timestamp when the URL was stored.
	ExpireAt    *time.Time // ExpireAt is kept for the record only; nothing enforces it.
}
