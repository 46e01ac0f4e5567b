package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generator creates opaque identifiers for invite codes and reset tokens.
type Generator interface {
	// NewToken returns a random UUID string.
	NewToken() (string, error)
	// NewInviteCode returns the first 8 hex characters of a UUID.
	NewInviteCode() (string, error)
	// NewJoinCode returns n characters drawn from [a-z0-9].
	NewJoinCode(n int) (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewToken() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

func (g *RandomGenerator) NewInviteCode() (string, error) {
	token, err := g.NewToken()
	if err != nil {
		return "", err
	}
	return token[:8], nil
}

func (g *RandomGenerator) NewJoinCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("join code length must be positive, got %d", n)
	}

	limit := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random index: %w", err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
