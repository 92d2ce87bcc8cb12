// Package shortcode derives short codes from a counter kept in the fast cache.
//
// Every code is the URL-safe base64 form of the counter value written as eight
// big-endian bytes, with the trailing padding removed. Two distinct counter
// values always produce two distinct codes, so uniqueness depends only on the
// atomicity of the increment.
package shortcode

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// CounterKey is the cache key holding the last issued counter value.
const CounterKey = "url_counter"

// Encode returns the short code for n.
func Encode(n uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)

	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf[:]), "=")
}

type counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Generator issues short codes backed by an atomic counter.
type Generator struct {
	counter counter
}

func NewGenerator(counter counter) *Generator {
	return &Generator{counter: counter}
}

// Generate advances the counter and encodes the new value. There is no
// fallback when the counter cannot be incremented.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	const op = "shortcode.Generator.Generate"

	n, err := g.counter.Incr(ctx, CounterKey)
	if err != nil {
		return "", fmt.Errorf("%s: failed to increment counter: %w", op, err)
	}

	return Encode(uint64(n)), nil
}
