// Package codegen produces certificate codes.
//
// Codes are fixed-length strings over a 32-symbol alphabet without the
// easily confused 0/O and 1/I. Each symbol takes the low five bits of one
// random byte, so every symbol is equally likely. Uniqueness is the store's
// job; a generator only has to make collisions rare.
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"

	dErrors "academy/pkg/domain-errors"
)

const (
	Alphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	DefaultLength = 10
	MinLength     = 6
	MaxLength     = 32
)

// Generator draws codes from a random source.
type Generator struct {
	length int
	random io.Reader
}

type Option func(*Generator)

// WithRandom replaces crypto/rand, e.g. with a fixed byte stream in tests.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

func New(length int, opts ...Option) (*Generator, error) {
	if length < MinLength || length > MaxLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("code length must be between %d and %d", MinLength, MaxLength))
	}
	g := &Generator{length: length, random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Next returns a fresh candidate code.
func (g *Generator) Next() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("could not generate certificate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[b&31]
	}
	return string(buf), nil
}

// Valid reports whether s could have been produced by a generator of any
// supported length. The admin code lookup reports it; verification never
// rejects input with it.
func Valid(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isSymbol(s[i]) {
			return false
		}
	}
	return true
}

func isSymbol(c byte) bool {
	for i := 0; i < len(Alphabet); i++ {
		if Alphabet[i] == c {
			return true
		}
	}
	return false
}
